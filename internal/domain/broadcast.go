package domain

import "time"

// BroadcastRequest asks for one payload to be delivered to some or all
// subscribers. An empty UserIDs list means every stored subscription.
type BroadcastRequest struct {
	UserIDs []string `json:"user_ids,omitempty"`
	Payload Payload  `json:"payload" validate:"required"`
}

// DeliveryReport is the aggregate outcome of one fan-out pass. Per-recipient
// errors are logged server-side, never broken out to the caller.
type DeliveryReport struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// BroadcastRecord is the audit entry persisted after each fan-out so
// administrators can review (or re-send) past notifications.
type BroadcastRecord struct {
	BroadcastID string    `json:"id" dynamodbav:"broadcast_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Body        string    `json:"body" dynamodbav:"body"`
	URL         string    `json:"url,omitempty" dynamodbav:"url"`
	Sent        int       `json:"sent" dynamodbav:"sent"`
	Failed      int       `json:"failed" dynamodbav:"failed"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
}
