package rules

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
)

// RuleRepository интерфейс репозитория правил доступности
type RuleRepository interface {
	Create(ctx context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error)
	CreateBatch(ctx context.Context, batch []*domain.AvailabilityRule) error
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.AvailabilityRule, error)
	GetActiveByResource(ctx context.Context, tenantID string, resourceID uuid.UUID, from, to time.Time) ([]*domain.AvailabilityRule, error)
	ListByResource(ctx context.Context, tenantID string, resourceID uuid.UUID) ([]*domain.AvailabilityRule, error)
	Deactivate(ctx context.Context, tenantID string, id uuid.UUID) error
}

// RuleCache кэш правил; любая мутация обязана сбросить кэш ресурса
type RuleCache interface {
	Invalidate(ctx context.Context, tenantID string, resourceID uuid.UUID) error
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
