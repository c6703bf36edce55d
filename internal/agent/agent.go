// Package agent models the background delivery agent that receives push
// messages on each subscriber device and turns them into system
// notifications. The decision logic is a pure event-to-effects transition;
// a Runtime adapter executes the effects and owns the keep-alive contract.
package agent

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-push-relay/internal/domain"
)

// ClickActionView is the named notification action treated like the default
// click surface: both open or focus the payload's target URL.
const ClickActionView = "view"

// Event is one runtime event delivered to the agent. The agent keeps no
// state between events; the runtime may evict it at any idle moment.
type Event interface{ isEvent() }

// InstallEvent fires when a new agent version is installed.
type InstallEvent struct{}

// ActivateEvent fires when this agent version takes over the origin.
type ActivateEvent struct{}

// PushEvent carries the decrypted push message, or nil when the message had
// no payload.
type PushEvent struct {
	Data []byte
}

// Window is one open application window as enumerated by the runtime.
type Window struct {
	ID  string
	URL string
}

// ClickEvent fires when the user interacts with a displayed notification.
// The runtime enumerates the open windows before handing the event over so
// the focus-or-open decision stays pure.
type ClickEvent struct {
	Action  string // empty for the default click surface
	Payload domain.Payload
	Windows []Window
}

// FetchEvent is a network request from a window controlled by this agent.
type FetchEvent struct {
	URL string
}

func (InstallEvent) isEvent()  {}
func (ActivateEvent) isEvent() {}
func (PushEvent) isEvent()     {}
func (ClickEvent) isEvent()    {}
func (FetchEvent) isEvent()    {}

// Agent holds the fixed display configuration for one origin.
type Agent struct {
	namespace  string
	icon       string
	badge      string
	defaultURL string
	now        func() time.Time
}

// Option tweaks an Agent. Used by tests to pin the clock.
type Option func(*Agent)

// WithClock replaces the tag clock.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

func New(namespace, icon, badge, defaultURL string, opts ...Option) *Agent {
	if defaultURL == "" {
		defaultURL = domain.DefaultURL
	}
	a := &Agent{
		namespace:  namespace,
		icon:       icon,
		badge:      badge,
		defaultURL: defaultURL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handle maps one event to the effects the runtime must execute before the
// event counts as handled. Dropping any of them silently loses the user's
// notification, so the runtime must keep the agent alive until Dispatch
// returns.
func (a *Agent) Handle(ev Event) []Effect {
	switch e := ev.(type) {
	case InstallEvent:
		// Supersede immediately: delivering the newest logic beats a
		// graceful handoff to the previous version.
		return []Effect{SkipWaiting{}}

	case ActivateEvent:
		// Old cached bundles are worse than no cache at all.
		return []Effect{ClearCaches{}, ClaimWindows{}}

	case PushEvent:
		return []Effect{a.showNotification(e.Data)}

	case ClickEvent:
		return a.routeClick(e)

	case FetchEvent:
		return []Effect{PassthroughFetch{URL: e.URL}}
	}
	return nil
}

func (a *Agent) showNotification(data []byte) Effect {
	p := a.NormalizePayload(data)
	return ShowNotification{
		Title: p.Title,
		Body:  p.Body,
		Icon:  a.icon,
		Badge: a.badge,
		// Time-derived tag so rapid successive notifications never coalesce.
		Tag:                fmt.Sprintf("%s-%d", a.namespace, a.now().UnixMilli()),
		RequireInteraction: true,
		Renotify:           true,
		TargetURL:          p.URL,
	}
}

func (a *Agent) routeClick(e ClickEvent) []Effect {
	effects := []Effect{DismissNotification{}}
	if e.Action != "" && e.Action != ClickActionView {
		return effects
	}

	target := e.Payload.URL
	if target == "" {
		target = a.defaultURL
	}
	for _, w := range e.Windows {
		if sameLocation(w.URL, target) {
			return append(effects, FocusWindow{ID: w.ID})
		}
	}
	return append(effects, OpenWindow{URL: target})
}

// sameLocation reports whether an open window's location already shows the
// target. Absolute and path-only forms of the same route match.
func sameLocation(windowURL, target string) bool {
	if windowURL == target {
		return true
	}
	wu, err := url.Parse(windowURL)
	if err != nil {
		return false
	}
	tu, err := url.Parse(target)
	if err != nil {
		return false
	}
	if tu.Host != "" && tu.Host != wu.Host {
		return false
	}
	return wu.Path == tu.Path
}

// NormalizePayload parses a push message into a Payload, accepting either
// the flat {title, body, url} shape or the nested
// {notification: {title, body}, data: {url}} variant. Anything unparseable
// resolves to domain.DefaultPayload — a generic notification still beats a
// dropped one.
func (a *Agent) NormalizePayload(data []byte) domain.Payload {
	fallback := domain.DefaultPayload()
	fallback.URL = a.defaultURL
	if len(data) == 0 {
		return fallback
	}

	var wire struct {
		Title        string `json:"title"`
		Body         string `json:"body"`
		URL          string `json:"url"`
		Notification *struct {
			Title string `json:"title"`
			Body  string `json:"body"`
		} `json:"notification"`
		Data *struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fallback
	}

	p := domain.Payload{Title: wire.Title, Body: wire.Body, URL: wire.URL}
	if wire.Notification != nil {
		p.Title = wire.Notification.Title
		p.Body = wire.Notification.Body
	}
	if wire.Data != nil {
		p.URL = wire.Data.URL
	}

	if p.Title == "" {
		return fallback
	}
	if p.Body == "" {
		p.Body = fallback.Body
	}
	if p.URL == "" {
		p.URL = a.defaultURL
	}
	return p
}
