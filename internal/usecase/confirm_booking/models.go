package confirm_booking

import (
	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
)

// Request входные данные подтверждения бронирования
type Request struct {
	TenantID  string
	BookingID uuid.UUID

	// IdempotencyKey клиентский токен; он же уходит в процессинг,
	// повтор с тем же токеном не создаёт вторую авторизацию
	IdempotencyKey string
}

// Response результат подтверждения
type Response struct {
	Booking *domain.Booking
	Payment *domain.Payment
	// Replayed true, если вернулся результат ранее выполненного подтверждения
	Replayed bool
}
