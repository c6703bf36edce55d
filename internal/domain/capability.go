package domain

import "context"

// Permission is the user's answer to a notification permission prompt.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default" // prompt dismissed without an answer
)

// PushCapability abstracts the platform runtime's notification and
// background-agent surface so the subscription manager can be driven by a
// real browser bridge in production and a fake in tests.
type PushCapability interface {
	// NotificationsSupported reports whether the runtime can display
	// notifications at all.
	NotificationsSupported() bool
	// AgentSupported reports whether the runtime can host a background
	// delivery agent.
	AgentSupported() bool
	// RegisterAgent installs the background delivery agent for this origin
	// and returns once it is active. Idempotent.
	RegisterAgent(ctx context.Context) error
	// RequestPermission shows the permission prompt. Must only be called
	// from a user gesture; a denial is terminal until the user changes it
	// out-of-band.
	RequestPermission(ctx context.Context) (Permission, error)
	// Subscribe creates a platform-level push subscription for this origin
	// using the application's public VAPID key.
	Subscribe(ctx context.Context, vapidPublicKey string) (*PushSubscription, error)
	// ActiveSubscription returns the current platform-level subscription,
	// or nil if none exists.
	ActiveSubscription(ctx context.Context) (*PushSubscription, error)
	// Unsubscribe cancels the platform-level subscription, if any.
	Unsubscribe(ctx context.Context) error
}
