package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-push-relay/internal/domain"
	"github.com/go-push-relay/internal/infrastructure/webpush"
	"github.com/go-push-relay/internal/pkg/id"
	"github.com/go-push-relay/internal/pkg/validate"
)

type Service interface {
	// Broadcast fans req.Payload out to every matching subscription.
	// It errors only on the authorization precondition, payload validation,
	// or a store read failure; per-recipient delivery failures are counted,
	// never raised.
	Broadcast(ctx context.Context, actor domain.Actor, req domain.BroadcastRequest) (domain.DeliveryReport, error)
	// ListRecent returns recent audit records, newest first.
	ListRecent(ctx context.Context, limit int32) ([]domain.BroadcastRecord, error)
}

type subscriptionStore interface {
	ListAll(ctx context.Context) ([]domain.PushSubscription, error)
	ListByUsers(ctx context.Context, userIDs []string) ([]domain.PushSubscription, error)
	Delete(ctx context.Context, userID string) error
}

type auditStore interface {
	Put(ctx context.Context, b *domain.BroadcastRecord) error
	List(ctx context.Context, limit int32) ([]domain.BroadcastRecord, error)
}

type service struct {
	subs           subscriptionStore
	audit          auditStore
	sender         webpush.Sender
	workers        int
	attemptTimeout time.Duration
}

func NewService(subs subscriptionStore, audit auditStore, sender webpush.Sender, workers int, attemptTimeout time.Duration) Service {
	if workers < 1 {
		workers = 1
	}
	return &service{
		subs:           subs,
		audit:          audit,
		sender:         sender,
		workers:        workers,
		attemptTimeout: attemptTimeout,
	}
}

func (s *service) Broadcast(ctx context.Context, actor domain.Actor, req domain.BroadcastRequest) (domain.DeliveryReport, error) {
	var report domain.DeliveryReport

	// Preconditions come before any store access.
	if actor.UserID == "" {
		return report, fmt.Errorf("missing caller identity: %w", domain.ErrUnauthorized)
	}
	if !actor.IsAdmin() {
		return report, fmt.Errorf("broadcast requires the %s role: %w", domain.RoleAdmin, domain.ErrForbidden)
	}
	if err := validate.Struct(req.Payload); err != nil {
		return report, fmt.Errorf("invalid payload (%v): %w", err, domain.ErrBadRequest)
	}

	subs, err := s.loadTargets(ctx, req.UserIDs)
	if err != nil {
		return report, fmt.Errorf("load subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return report, nil
	}

	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return report, fmt.Errorf("marshal payload: %w", err)
	}

	report, gone := s.fanOut(ctx, subs, payload)
	s.prune(ctx, gone)

	record := &domain.BroadcastRecord{
		BroadcastID: id.New(),
		Title:       req.Payload.Title,
		Body:        req.Payload.Body,
		URL:         req.Payload.URL,
		Sent:        report.Sent,
		Failed:      report.Failed,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.audit.Put(ctx, record); err != nil {
		// The fan-out already happened; a missing audit row must not turn
		// a delivered broadcast into an error.
		slog.Error("write broadcast record", "broadcast_id", record.BroadcastID, "err", err)
	}
	return report, nil
}

func (s *service) ListRecent(ctx context.Context, limit int32) ([]domain.BroadcastRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.audit.List(ctx, limit)
}

func (s *service) loadTargets(ctx context.Context, userIDs []string) ([]domain.PushSubscription, error) {
	if len(userIDs) == 0 {
		return s.subs.ListAll(ctx)
	}
	return s.subs.ListByUsers(ctx, userIDs)
}

// fanOut delivers payload to every subscription through a bounded worker
// pool. Attempts are independent: one endpoint failing is counted and logged
// without delaying or aborting the rest. Returns the aggregate report plus
// the user ids whose endpoints are terminally gone.
func (s *service) fanOut(ctx context.Context, subs []domain.PushSubscription, payload []byte) (domain.DeliveryReport, []string) {
	jobs := make(chan domain.PushSubscription)

	var mu sync.Mutex
	var report domain.DeliveryReport
	var gone []string

	workers := s.workers
	if workers > len(subs) {
		workers = len(subs)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				err := s.attempt(ctx, sub, payload)

				mu.Lock()
				if err != nil {
					report.Failed++
					if errors.Is(err, domain.ErrSubscriptionGone) {
						gone = append(gone, sub.UserID)
					}
				} else {
					report.Sent++
				}
				mu.Unlock()

				if err != nil {
					slog.Warn("delivery failed", "user_id", sub.UserID, "err", err)
				}
			}
		}()
	}

	for _, sub := range subs {
		jobs <- sub
	}
	close(jobs)
	wg.Wait()

	return report, gone
}

func (s *service) attempt(ctx context.Context, sub domain.PushSubscription, payload []byte) error {
	if s.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.attemptTimeout)
		defer cancel()
	}
	return s.sender.Send(ctx, sub, payload)
}

// prune removes descriptors whose endpoints the push service reported gone.
// A transient failure never lands here; only 404/410 answers do, so users
// are not silently unregistered by a flaky network.
func (s *service) prune(ctx context.Context, userIDs []string) {
	for _, userID := range userIDs {
		if err := s.subs.Delete(ctx, userID); err != nil {
			slog.Warn("prune dead subscription", "user_id", userID, "err", err)
			continue
		}
		slog.Info("pruned dead subscription", "user_id", userID)
	}
}
