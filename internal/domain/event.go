package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Outbox event types emitted on booking/payment lifecycle transitions.
// Downstream notification and audit consumers subscribe to these.
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCheckedIn = "booking.checked_in"
	EventBookingCompleted = "booking.completed"
	EventBookingCanceled  = "booking.canceled"
	EventBookingNoShow    = "booking.no_show"
	EventBookingFailed    = "booking.failed"
	EventPaymentAuthorized = "payment.authorized"
	EventPaymentCaptured   = "payment.captured"
	EventPaymentRefunded   = "payment.refunded"
	EventPaymentFailed     = "payment.failed"
	EventHoldCreated       = "hold.created"
	EventHoldExpired       = "hold.expired"
)

// OutboxEvent is a durable event record appended in the same transaction as
// the state transition it describes, then delivered by the relay worker.
// The engine never blocks on downstream delivery.
type OutboxEvent struct {
	ID            uuid.UUID
	TenantID      string
	EventType     string
	AggregateType string // "booking" | "payment" | "hold"
	AggregateID   uuid.UUID
	Payload       json.RawMessage

	CreatedAt   time.Time
	PublishedAt *time.Time
}
