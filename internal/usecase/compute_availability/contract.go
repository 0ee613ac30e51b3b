package compute_availability

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	"github.com/anshddoshi27/Tithi-sub002/internal/integrations/catalogservice"
)

// RuleRepository интерфейс репозитория правил доступности
type RuleRepository interface {
	// ListActiveByResource получает полный набор активных правил ресурса.
	// Набор не фильтруется по датам: он кэшируется и обслуживает запросы
	// с любыми периодами, применимость к дате проверяет резолвер
	ListActiveByResource(ctx context.Context, tenantID string, resourceID uuid.UUID) ([]*domain.AvailabilityRule, error)
}

// RuleCache read-through кэш правил. Промах всегда деградирует к репозиторию.
type RuleCache interface {
	Get(ctx context.Context, tenantID string, resourceID uuid.UUID) ([]*domain.AvailabilityRule, bool)
	Set(ctx context.Context, tenantID string, resourceID uuid.UUID, rules []*domain.AvailabilityRule)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// GetBlockingByResource получает блокирующие бронирования ресурса за период
	GetBlockingByResource(ctx context.Context, tenantID string, resourceID uuid.UUID, from, to time.Time) ([]*domain.Booking, error)
}

// HoldRepository интерфейс репозитория холдов
type HoldRepository interface {
	// GetActiveByResource получает активные неистёкшие холды ресурса за период
	GetActiveByResource(ctx context.Context, tenantID string, resourceID uuid.UUID, from, to time.Time, now time.Time) ([]*domain.Hold, error)
}

// CatalogClient интерфейс клиента каталога
type CatalogClient interface {
	GetResource(ctx context.Context, tenantID string, resourceID uuid.UUID) (*catalogservice.Resource, error)
	GetService(ctx context.Context, tenantID string, serviceID uuid.UUID) (*catalogservice.Service, error)
}

// Resolver интерфейс timezone/DST резолвера правил
type Resolver interface {
	Resolve(rule *domain.AvailabilityRule, date time.Time) (*domain.ResolvedInterval, error)
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
