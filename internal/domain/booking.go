package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCheckedIn BookingStatus = "checked_in"
	StatusCompleted BookingStatus = "completed"
	StatusCanceled  BookingStatus = "canceled"
	StatusNoShow    BookingStatus = "no_show"
	StatusFailed    BookingStatus = "failed"
)

// Booking represents a committed reservation of a resource interval.
// Service data is snapshotted at creation time so later catalog changes
// never affect the booked price or duration.
type Booking struct {
	ID         uuid.UUID
	TenantID   string
	ResourceID uuid.UUID
	CustomerID string
	ServiceID  uuid.UUID

	// Denormalized catalog data, frozen at booking time
	ServiceName     string
	ServicePrice    int64 // в минимальных единицах валюты (центы)
	DurationMinutes int

	StartAt  time.Time // UTC
	EndAt    time.Time // UTC
	Timezone string    // IANA зона для отображения клиенту

	Status BookingStatus

	// Клиентский idempotency-токен (уникален в рамках tenant) и отпечаток
	// полезной нагрузки запроса для детекта повтора с изменённым телом
	IdempotencyKey     string
	RequestFingerprint string

	HoldID             *uuid.UUID
	CancellationReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlockingStatuses статусы, при которых бронирование занимает интервал ресурса
// Используется exclusion constraint в БД и всеми вычислениями доступности
var BlockingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCheckedIn,
}

// IsBlocking returns true if the booking occupies its interval.
func (b *Booking) IsBlocking() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed || b.Status == StatusCheckedIn
}

// IsTerminal returns true if no further status transition is permitted.
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case StatusCompleted, StatusCanceled, StatusNoShow, StatusFailed:
		return true
	}
	return false
}

// CanConfirm returns true if the booking may transition to confirmed.
func (b *Booking) CanConfirm() bool {
	return b.Status == StatusPending
}

// CanCheckIn returns true if the booking may transition to checked_in.
func (b *Booking) CanCheckIn() bool {
	return b.Status == StatusConfirmed
}

// CanSettle returns true if complete/cancel/no-show actions are permitted.
func (b *Booking) CanSettle() bool {
	return b.Status == StatusConfirmed || b.Status == StatusCheckedIn
}

// CanRefund returns true if a refund action is permitted.
// The captured-payment check is done separately against the payment ledger.
func (b *Booking) CanRefund() bool {
	return b.Status == StatusCompleted
}

// Interval returns the booked interval as a value.
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartAt, End: b.EndAt}
}
