package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrUnsupported means the runtime cannot display notifications.
	ErrUnsupported = errors.New("notifications unsupported")
	// ErrAgentUnsupported means the runtime cannot host a background agent.
	ErrAgentUnsupported = errors.New("background agent unsupported")
	// ErrPermissionDenied means the user declined the notification prompt.
	ErrPermissionDenied = errors.New("notification permission denied")
	// ErrNotAuthenticated means no user identity was available to persist
	// a subscription under.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrMissingCredentials means the VAPID key pair is absent. Fatal at
	// startup, never a per-recipient failure.
	ErrMissingCredentials = errors.New("missing push credentials")
	// ErrSubscriptionGone means the push service reported the endpoint as
	// permanently gone (404/410); the stored descriptor should be pruned.
	ErrSubscriptionGone = errors.New("subscription gone")
)
