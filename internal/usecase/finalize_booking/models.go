package finalize_booking

import (
	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
)

// Action финализирующее действие над бронированием
type Action string

const (
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
	ActionNoShow   Action = "no_show"
)

// IsValid возвращает true для известного действия
func (a Action) IsValid() bool {
	return a == ActionComplete || a == ActionCancel || a == ActionNoShow
}

// targetStatus статус бронирования после успешного действия
func (a Action) targetStatus() domain.BookingStatus {
	switch a {
	case ActionComplete:
		return domain.StatusCompleted
	case ActionCancel:
		return domain.StatusCanceled
	case ActionNoShow:
		return domain.StatusNoShow
	}
	return ""
}

// eventType тип события жизненного цикла для действия
func (a Action) eventType() string {
	switch a {
	case ActionComplete:
		return domain.EventBookingCompleted
	case ActionCancel:
		return domain.EventBookingCanceled
	case ActionNoShow:
		return domain.EventBookingNoShow
	}
	return ""
}

// feePurpose назначение записи леджера для действия с комиссией
func (a Action) feePurpose() domain.PaymentPurpose {
	switch a {
	case ActionCancel:
		return domain.PurposeCancellationFee
	case ActionNoShow:
		return domain.PurposeNoShowFee
	}
	return ""
}

// Request входные данные финализирующего действия
type Request struct {
	TenantID  string
	BookingID uuid.UUID
	Action    Action

	// Reason причина отмены, только для ActionCancel
	Reason string

	// IdempotencyKey клиентский токен; он же уходит в процессинг
	IdempotencyKey string
}

// Response результат финализирующего действия
type Response struct {
	Booking *domain.Booking
	// Payment запись леджера действия: capture для Complete, комиссия для
	// Cancel/NoShow; nil, если комиссия не настроена
	Payment *domain.Payment
	// Replayed true, если вернулся результат ранее выполненного действия
	Replayed bool
}
