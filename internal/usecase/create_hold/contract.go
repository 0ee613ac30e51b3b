package create_hold

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	"github.com/anshddoshi27/Tithi-sub002/internal/integrations/catalogservice"
)

// HoldRepository интерфейс репозитория холдов
type HoldRepository interface {
	// AcquireResourceLock берёт advisory-лок на ресурс до конца транзакции
	AcquireResourceLock(ctx context.Context, resourceID uuid.UUID) error
	// Create вставляет новый холд
	Create(ctx context.Context, hold *domain.Hold) (*domain.Hold, error)
	// GetActiveByResource получает активные неистёкшие холды ресурса за период
	GetActiveByResource(ctx context.Context, tenantID string, resourceID uuid.UUID, from, to time.Time, now time.Time) ([]*domain.Hold, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// GetBlockingByResource получает блокирующие бронирования ресурса за период
	GetBlockingByResource(ctx context.Context, tenantID string, resourceID uuid.UUID, from, to time.Time) ([]*domain.Booking, error)
}

// CatalogClient интерфейс клиента каталога
type CatalogClient interface {
	GetResource(ctx context.Context, tenantID string, resourceID uuid.UUID) (*catalogservice.Resource, error)
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
