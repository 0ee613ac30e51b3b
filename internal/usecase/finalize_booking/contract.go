package finalize_booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	"github.com/anshddoshi27/Tithi-sub002/internal/integrations/paymentprocessor"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// GetByID получает бронирование по ID (FOR UPDATE внутри транзакции)
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Booking, error)
	// UpdateStatus обновляет статус бронирования
	UpdateStatus(ctx context.Context, tenantID string, id uuid.UUID, status domain.BookingStatus) error
	// UpdateStatusWithReason обновляет статус с причиной отмены
	UpdateStatusWithReason(ctx context.Context, tenantID string, id uuid.UUID, status domain.BookingStatus, reason string) error
}

// PaymentRepository интерфейс репозитория платёжного леджера
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	GetByIdempotencyKey(ctx context.Context, tenantID string, key string) (*domain.Payment, error)
	GetByBookingAndPurpose(ctx context.Context, tenantID string, bookingID uuid.UUID, purpose domain.PaymentPurpose) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, tenantID string, id uuid.UUID, status domain.PaymentStatus, providerRef string) error
}

// OutboxRepository интерфейс репозитория transactional outbox
type OutboxRepository interface {
	Append(ctx context.Context, event *domain.OutboxEvent) error
}

// ProcessorClient интерфейс клиента карточного процессинга
type ProcessorClient interface {
	Capture(ctx context.Context, tenantID string, authRef string, amount, applicationFee int64, idempotencyKey string) (*paymentprocessor.ChargeResult, error)
	ChargeFee(ctx context.Context, tenantID string, amount int64, description, idempotencyKey string) (*paymentprocessor.ChargeResult, error)
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
