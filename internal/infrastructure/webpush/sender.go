package webpush

import (
	"context"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/go-push-relay/internal/config"
	"github.com/go-push-relay/internal/domain"
)

// Sender encrypts a payload to one subscription's keys and submits it to the
// platform push service with VAPID authorization.
type Sender interface {
	Send(ctx context.Context, sub domain.PushSubscription, payload []byte) error
}

type sender struct {
	opts webpush.Options
}

// NewSender builds a Sender from the configured VAPID key pair. An absent
// key pair is a configuration error, not something to degrade around: a
// dispatcher that cannot sign cannot deliver to anyone.
func NewSender(cfg *config.Config) (Sender, error) {
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil, fmt.Errorf("VAPID key pair not configured: %w", domain.ErrMissingCredentials)
	}
	return &sender{
		opts: webpush.Options{
			Subscriber:      cfg.VAPIDSubscriber,
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			TTL:             cfg.DeliveryTTL,
		},
	}, nil
}

func (s *sender) Send(ctx context.Context, sub domain.PushSubscription, payload []byte) error {
	opts := s.opts
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &opts)
	if err != nil {
		return fmt.Errorf("send to %s: %w", sub.Endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// The endpoint is terminally dead; the caller should prune it.
		return fmt.Errorf("push service returned %d: %w", resp.StatusCode, domain.ErrSubscriptionGone)
	case resp.StatusCode >= http.StatusBadRequest:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push service returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
