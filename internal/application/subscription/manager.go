package subscription

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-push-relay/internal/domain"
)

// Manager drives the client-side subscription lifecycle: permission prompt,
// background agent registration, platform-level subscribe/unsubscribe, and
// persistence in the subscription store. All platform interaction goes
// through the injected PushCapability so the flow is testable with fakes.
//
// Calls are user-gesture-bound and short-lived; callers are expected to
// serialize Subscribe/Unsubscribe per user session.
type Manager interface {
	RegisterAgent(ctx context.Context) error
	RequestPermission(ctx context.Context) (domain.Permission, error)
	Subscribe(ctx context.Context, userID string) (*domain.PushSubscription, error)
	Unsubscribe(ctx context.Context, userID string) error
	IsSubscribed(ctx context.Context) bool
}

type managerStore interface {
	Upsert(ctx context.Context, s *domain.PushSubscription) error
	Delete(ctx context.Context, userID string) error
}

type manager struct {
	capability domain.PushCapability
	store      managerStore
	publicKey  string // application VAPID public key, embedded client-side
}

func NewManager(capability domain.PushCapability, store managerStore, vapidPublicKey string) Manager {
	return &manager{capability: capability, store: store, publicKey: vapidPublicKey}
}

// RegisterAgent installs the background delivery agent. Idempotent, safe on
// every page load.
func (m *manager) RegisterAgent(ctx context.Context) error {
	if !m.capability.AgentSupported() {
		return fmt.Errorf("register agent: %w", domain.ErrAgentUnsupported)
	}
	return m.capability.RegisterAgent(ctx)
}

// RequestPermission prompts once. A denial is terminal until the user flips
// it out-of-band; it is never retried here.
func (m *manager) RequestPermission(ctx context.Context) (domain.Permission, error) {
	return m.capability.RequestPermission(ctx)
}

func (m *manager) Subscribe(ctx context.Context, userID string) (*domain.PushSubscription, error) {
	if !m.capability.NotificationsSupported() {
		return nil, fmt.Errorf("subscribe: %w", domain.ErrUnsupported)
	}

	perm, err := m.RequestPermission(ctx)
	if err != nil {
		return nil, fmt.Errorf("request permission: %w", err)
	}
	if perm != domain.PermissionGranted {
		return nil, fmt.Errorf("subscribe: %w", domain.ErrPermissionDenied)
	}

	if err := m.RegisterAgent(ctx); err != nil {
		return nil, err
	}

	sub, err := m.capability.Subscribe(ctx, m.publicKey)
	if err != nil {
		return nil, fmt.Errorf("platform subscribe: %w", err)
	}

	// The platform subscription exists at this point either way: losing the
	// user's subscribe gesture is worse than an orphaned local subscription.
	if userID == "" {
		return nil, fmt.Errorf("subscribe: %w", domain.ErrNotAuthenticated)
	}

	sub.UserID = userID
	if err := m.store.Upsert(ctx, sub); err != nil {
		// Roll the platform subscription back so the user is never left
		// locally subscribed but unreachable; the next Subscribe recreates
		// everything cleanly.
		if uerr := m.capability.Unsubscribe(ctx); uerr != nil {
			slog.Warn("rollback platform subscription", "err", uerr)
		}
		return nil, fmt.Errorf("persist subscription: %w", err)
	}
	return sub, nil
}

func (m *manager) Unsubscribe(ctx context.Context, userID string) error {
	active, err := m.capability.ActiveSubscription(ctx)
	if err != nil {
		return fmt.Errorf("look up subscription: %w", err)
	}
	if active == nil {
		// Nothing to cancel; not an error.
		return nil
	}
	if err := m.capability.Unsubscribe(ctx); err != nil {
		return fmt.Errorf("platform unsubscribe: %w", err)
	}
	if userID == "" {
		return nil
	}
	return m.store.Delete(ctx, userID)
}

// IsSubscribed is a pure UI-state query: any failure to reach the agent or
// the platform subscription reads as "not subscribed".
func (m *manager) IsSubscribed(ctx context.Context) bool {
	if !m.capability.NotificationsSupported() || !m.capability.AgentSupported() {
		return false
	}
	active, err := m.capability.ActiveSubscription(ctx)
	return err == nil && active != nil
}
