package manage_rules

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
)

type RulesService interface {
	Create(ctx context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error)
	ListByResource(ctx context.Context, tenantID string, resourceID uuid.UUID) ([]*domain.AvailabilityRule, error)
	Deactivate(ctx context.Context, tenantID string, id uuid.UUID) error
	CopyWeek(ctx context.Context, tenantID string, resourceID uuid.UUID, sourceWeekStart, targetWeekStart time.Time) ([]*domain.AvailabilityRule, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
