package http

import (
	"context"

	"github.com/go-push-relay/internal/domain"
	jwtinfra "github.com/go-push-relay/internal/infrastructure/jwt"
	"github.com/go-push-relay/internal/infrastructure/webpush"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	SubscriptionRepo SubscriptionRepository
	BroadcastRepo    BroadcastRepository
	Sender           webpush.Sender
	JWTProvider      *jwtinfra.Provider
}

// SubscriptionRepository is the minimal interface the router requires from
// the subscription store.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, s *domain.PushSubscription) error
	Get(ctx context.Context, userID string) (*domain.PushSubscription, error)
	Delete(ctx context.Context, userID string) error
	ListAll(ctx context.Context) ([]domain.PushSubscription, error)
	ListByUsers(ctx context.Context, userIDs []string) ([]domain.PushSubscription, error)
}

// BroadcastRepository is the minimal interface the router requires from the
// broadcast audit store.
type BroadcastRepository interface {
	Put(ctx context.Context, b *domain.BroadcastRecord) error
	List(ctx context.Context, limit int32) ([]domain.BroadcastRecord, error)
}
