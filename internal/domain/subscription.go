package domain

import "time"

// SubscriptionKeys is the cryptographic material the push service requires
// to encrypt payloads addressed to one endpoint.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" dynamodbav:"p256dh" validate:"required"`
	Auth   string `json:"auth" dynamodbav:"auth" validate:"required"`
}

// PushSubscription is one device's delivery descriptor: the opaque endpoint
// assigned by the platform push service plus its encryption keys, keyed by
// the owning user. One active descriptor per user; re-subscribe overwrites.
type PushSubscription struct {
	UserID    string           `json:"user_id" dynamodbav:"user_id"`
	Endpoint  string           `json:"endpoint" dynamodbav:"endpoint"`
	Keys      SubscriptionKeys `json:"keys" dynamodbav:"keys"`
	UpdatedAt time.Time        `json:"updated" dynamodbav:"updated_at"`
}

// SaveSubscriptionRequest is the body of POST /v1/subscriptions: the
// descriptor the browser obtained from its push service.
type SaveSubscriptionRequest struct {
	Endpoint string           `json:"endpoint" validate:"required,url"`
	Keys     SubscriptionKeys `json:"keys" validate:"required"`
}
