package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
)

// BookingResponse представление бронирования для внешнего слоя
type BookingResponse struct {
	ID         uuid.UUID  `json:"id"`
	ResourceID uuid.UUID  `json:"resource_id"`
	CustomerID string     `json:"customer_id"`
	ServiceID  uuid.UUID  `json:"service_id"`
	HoldID     *uuid.UUID `json:"hold_id,omitempty"`

	ServiceName     string `json:"service_name"`
	ServicePrice    int64  `json:"service_price"`
	DurationMinutes int    `json:"duration_minutes"`

	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
	Timezone string    `json:"timezone"`

	Status             string  `json:"status"`
	CancellationReason *string `json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingListResponse список бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// FromDomainBooking конвертирует доменную модель в ответ
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:                 b.ID,
		ResourceID:         b.ResourceID,
		CustomerID:         b.CustomerID,
		ServiceID:          b.ServiceID,
		HoldID:             b.HoldID,
		ServiceName:        b.ServiceName,
		ServicePrice:       b.ServicePrice,
		DurationMinutes:    b.DurationMinutes,
		StartAt:            b.StartAt,
		EndAt:              b.EndAt,
		Timezone:           b.Timezone,
		Status:             string(b.Status),
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список доменных моделей в ответ
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	result := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, *FromDomainBooking(b))
	}
	return &BookingListResponse{Bookings: result, Total: len(result)}
}

// ToDomainBookingStatus конвертирует строку статуса в доменный тип
func ToDomainBookingStatus(status string) (domain.BookingStatus, bool) {
	switch domain.BookingStatus(status) {
	case domain.StatusPending, domain.StatusConfirmed, domain.StatusCheckedIn,
		domain.StatusCompleted, domain.StatusCanceled, domain.StatusNoShow, domain.StatusFailed:
		return domain.BookingStatus(status), true
	}
	return "", false
}
