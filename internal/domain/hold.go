package domain

import (
	"time"

	"github.com/google/uuid"
)

// HoldStatus represents the status of a reservation hold
type HoldStatus string

const (
	HoldStatusActive   HoldStatus = "active"
	HoldStatusConsumed HoldStatus = "consumed"
	HoldStatusExpired  HoldStatus = "expired"
)

// Hold is a short-lived exclusive reservation of a resource interval, issued
// so a checkout flow can complete payment without losing the slot to a race.
// A hold past ExpiresAt is treated as inactive everywhere, regardless of
// whether the background sweep has already marked it expired.
type Hold struct {
	ID         uuid.UUID
	TenantID   string
	ResourceID uuid.UUID

	StartAt time.Time // UTC
	EndAt   time.Time // UTC

	OwnerToken string // токен сессии checkout, владеющей холдом
	Status     HoldStatus
	BookingID  *uuid.UUID // проставляется при consume, слабая ссылка

	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsActiveAt returns true if the hold blocks the interval at the given instant.
// Expiry is enforced by wall clock here, never only by the sweep.
func (h *Hold) IsActiveAt(now time.Time) bool {
	return h.Status == HoldStatusActive && now.Before(h.ExpiresAt)
}

// Interval returns the held interval as a value.
func (h *Hold) Interval() Interval {
	return Interval{Start: h.StartAt, End: h.EndAt}
}
