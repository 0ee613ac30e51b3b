package create_booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	"github.com/anshddoshi27/Tithi-sub002/internal/integrations/catalogservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// Create вставляет бронирование; пересечение блокирующих интервалов
	// отклоняется exclusion constraint'ом на уровне БД
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	// GetByIdempotencyKey получает бронирование по idempotency-токену тенанта
	GetByIdempotencyKey(ctx context.Context, tenantID string, key string) (*domain.Booking, error)
}

// HoldRepository интерфейс репозитория холдов
type HoldRepository interface {
	// AcquireResourceLock берёт advisory-лок на ресурс до конца транзакции
	AcquireResourceLock(ctx context.Context, resourceID uuid.UUID) error
	// GetByID получает холд по ID (FOR UPDATE внутри транзакции)
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Hold, error)
	// GetActiveByResource получает активные неистёкшие холды ресурса за период
	GetActiveByResource(ctx context.Context, tenantID string, resourceID uuid.UUID, from, to time.Time, now time.Time) ([]*domain.Hold, error)
	// Consume помечает холд использованным и связывает с бронированием
	Consume(ctx context.Context, tenantID string, id uuid.UUID, bookingID uuid.UUID, now time.Time) error
}

// OutboxRepository интерфейс репозитория transactional outbox
type OutboxRepository interface {
	Append(ctx context.Context, event *domain.OutboxEvent) error
}

// CatalogClient интерфейс клиента каталога
type CatalogClient interface {
	GetService(ctx context.Context, tenantID string, serviceID uuid.UUID) (*catalogservice.Service, error)
}

// CustomerClient интерфейс клиента customer service
type CustomerClient interface {
	VerifyCustomerWithGracefulDegradation(ctx context.Context, tenantID, customerID string) error
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
