package subscription

import (
	"context"
	"fmt"

	"github.com/go-push-relay/internal/domain"
	"github.com/go-push-relay/internal/pkg/validate"
)

// Registry is the server-side half of the subscription lifecycle: it
// persists descriptors that browsers created against the push service and
// answers subscription-state queries for the UI.
type Registry interface {
	// Save upserts the caller's descriptor. One descriptor per user; a
	// re-subscribe replaces the previous one.
	Save(ctx context.Context, userID string, req domain.SaveSubscriptionRequest) (*domain.PushSubscription, error)
	// Remove deletes the caller's descriptor; absent descriptors are a no-op.
	Remove(ctx context.Context, userID string) error
	// IsSubscribed reports whether a descriptor is stored for the user.
	// It never errors; store failures read as "not subscribed".
	IsSubscribed(ctx context.Context, userID string) bool
	// PublicKey returns the application VAPID public key clients subscribe with.
	PublicKey() string
}

type registryStore interface {
	Upsert(ctx context.Context, s *domain.PushSubscription) error
	Get(ctx context.Context, userID string) (*domain.PushSubscription, error)
	Delete(ctx context.Context, userID string) error
}

type registry struct {
	store     registryStore
	publicKey string
}

func NewRegistry(store registryStore, vapidPublicKey string) Registry {
	return &registry{store: store, publicKey: vapidPublicKey}
}

func (r *registry) Save(ctx context.Context, userID string, req domain.SaveSubscriptionRequest) (*domain.PushSubscription, error) {
	if userID == "" {
		return nil, fmt.Errorf("save subscription: %w", domain.ErrNotAuthenticated)
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid subscription (%v): %w", err, domain.ErrBadRequest)
	}
	sub := &domain.PushSubscription{
		UserID:   userID,
		Endpoint: req.Endpoint,
		Keys:     req.Keys,
	}
	if err := r.store.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("persist subscription: %w", err)
	}
	return sub, nil
}

func (r *registry) Remove(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("remove subscription: %w", domain.ErrNotAuthenticated)
	}
	return r.store.Delete(ctx, userID)
}

func (r *registry) IsSubscribed(ctx context.Context, userID string) bool {
	sub, err := r.store.Get(ctx, userID)
	return err == nil && sub != nil
}

func (r *registry) PublicKey() string {
	return r.publicKey
}
