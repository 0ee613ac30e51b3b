package refund_booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	"github.com/anshddoshi27/Tithi-sub002/internal/integrations/paymentprocessor"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Booking, error)
}

// PaymentRepository интерфейс репозитория платёжного леджера
type PaymentRepository interface {
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Payment, error)
	GetByBookingAndPurpose(ctx context.Context, tenantID string, bookingID uuid.UUID, purpose domain.PaymentPurpose) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, tenantID string, id uuid.UUID, status domain.PaymentStatus, providerRef string) error
	CreateRefund(ctx context.Context, refund *domain.Refund) (*domain.Refund, error)
	GetRefundByIdempotencyKey(ctx context.Context, tenantID string, key string) (*domain.Refund, error)
	SumRefundsByPaymentID(ctx context.Context, tenantID string, paymentID uuid.UUID) (int64, error)
}

// OutboxRepository интерфейс репозитория transactional outbox
type OutboxRepository interface {
	Append(ctx context.Context, event *domain.OutboxEvent) error
}

// ProcessorClient интерфейс клиента карточного процессинга
type ProcessorClient interface {
	Refund(ctx context.Context, tenantID string, chargeRef string, amount int64, idempotencyKey string) (*paymentprocessor.ChargeResult, error)
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
