package bookings

import (
	"context"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Booking, error)
	ListByCustomer(ctx context.Context, tenantID string, customerID string, status *domain.BookingStatus) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, tenantID string, id uuid.UUID, status domain.BookingStatus) error
}

// OutboxRepository интерфейс репозитория transactional outbox
type OutboxRepository interface {
	Append(ctx context.Context, event *domain.OutboxEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
