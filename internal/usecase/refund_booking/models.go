package refund_booking

import (
	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
)

// Request входные данные возврата
type Request struct {
	TenantID  string
	BookingID uuid.UUID

	// Amount сумма возврата в центах; 0 - вернуть весь захваченный остаток
	Amount int64

	// IdempotencyKey клиентский токен; он же уходит в процессинг
	IdempotencyKey string
}

// Response результат возврата. Бронирование остаётся completed
type Response struct {
	Refund *domain.Refund
	// RemainingCaptured эффективный захваченный остаток после возврата
	RemainingCaptured int64
	// Replayed true, если вернулся результат ранее выполненного возврата
	Replayed bool
}
