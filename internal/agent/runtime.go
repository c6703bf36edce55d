package agent

import (
	"context"
	"fmt"
)

// Effect is one runtime action an event handler demands. The set is closed;
// Dispatch knows how to execute every variant.
type Effect interface{ isEffect() }

// SkipWaiting signals readiness to activate without waiting for an older
// agent instance to finish.
type SkipWaiting struct{}

// ClearCaches deletes every cache left behind by previous agent versions.
type ClearCaches struct{}

// ClaimWindows puts all open windows under this agent's control without a reload.
type ClaimWindows struct{}

// ShowNotification renders one system notification.
type ShowNotification struct {
	Title              string
	Body               string
	Icon               string
	Badge              string
	Tag                string
	RequireInteraction bool
	Renotify           bool
	TargetURL          string
}

// DismissNotification closes the clicked notification.
type DismissNotification struct{}

// FocusWindow brings an existing window to the foreground.
type FocusWindow struct {
	ID string
}

// OpenWindow opens a new window at the given URL.
type OpenWindow struct {
	URL string
}

// PassthroughFetch forwards a request to the network unmodified.
type PassthroughFetch struct {
	URL string
}

// FallbackCache serves a previously cached response after the network failed.
type FallbackCache struct {
	URL string
}

func (SkipWaiting) isEffect()         {}
func (ClearCaches) isEffect()         {}
func (ClaimWindows) isEffect()        {}
func (ShowNotification) isEffect()    {}
func (DismissNotification) isEffect() {}
func (FocusWindow) isEffect()         {}
func (OpenWindow) isEffect()          {}
func (PassthroughFetch) isEffect()    {}
func (FallbackCache) isEffect()       {}

// Runtime is the platform surface that executes effects. The production
// implementation is the browser bridge; tests use a recorder.
type Runtime interface {
	SkipWaiting(ctx context.Context) error
	ClearCaches(ctx context.Context) error
	ClaimWindows(ctx context.Context) error
	ShowNotification(ctx context.Context, n ShowNotification) error
	DismissNotification(ctx context.Context) error
	FocusWindow(ctx context.Context, id string) error
	OpenWindow(ctx context.Context, url string) error
	// Fetch forwards the request to the network.
	Fetch(ctx context.Context, url string) error
	// FetchFromCache serves the cached response, if one exists.
	FetchFromCache(ctx context.Context, url string) error
}

// Dispatch executes effects in order and returns only once every one has
// completed; callers must hold the agent alive for the whole call. This is
// the keep-alive contract: returning early lets the runtime suspend the
// agent mid-operation and silently drop the action.
//
// A failed effect aborts the remainder and drops the event; there is no
// retry and no dead-letter, by the delivery model's design.
func Dispatch(ctx context.Context, rt Runtime, effects []Effect) error {
	for _, effect := range effects {
		if err := execute(ctx, rt, effect); err != nil {
			return err
		}
	}
	return nil
}

func execute(ctx context.Context, rt Runtime, effect Effect) error {
	switch e := effect.(type) {
	case SkipWaiting:
		return rt.SkipWaiting(ctx)
	case ClearCaches:
		return rt.ClearCaches(ctx)
	case ClaimWindows:
		return rt.ClaimWindows(ctx)
	case ShowNotification:
		return rt.ShowNotification(ctx, e)
	case DismissNotification:
		return rt.DismissNotification(ctx)
	case FocusWindow:
		return rt.FocusWindow(ctx, e.ID)
	case OpenWindow:
		return rt.OpenWindow(ctx, e.URL)
	case PassthroughFetch:
		if err := rt.Fetch(ctx, e.URL); err != nil {
			// Network-first with an opportunistic cache fallback. Activation
			// cleared all caches, so this usually has nothing to serve and
			// the original error stands.
			if cerr := rt.FetchFromCache(ctx, e.URL); cerr != nil {
				return err
			}
		}
		return nil
	case FallbackCache:
		return rt.FetchFromCache(ctx, e.URL)
	}
	return fmt.Errorf("unknown effect %T", effect)
}
