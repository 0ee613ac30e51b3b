package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	ruleRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/rules"
)

// Service сервис управления правилами доступности.
// Любая мутация сбрасывает кэш правил ресурса: устаревшая запись в кэше
// напрямую искажает расчёт доступных слотов.
type Service struct {
	ruleRepo  RuleRepository
	ruleCache RuleCache
	txManager TransactionManager
	logger    Logger
}

// NewService создает новый экземпляр сервиса правил
func NewService(
	ruleRepo RuleRepository,
	ruleCache RuleCache,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		ruleRepo:  ruleRepo,
		ruleCache: ruleCache,
		txManager: txManager,
		logger:    logger,
	}
}

// Create сохраняет новое правило доступности
func (s *Service) Create(ctx context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error) {
	s.logger.Info("CreateRule: tenant=%s, resource=%s, kind=%s", rule.TenantID, rule.ResourceID, rule.Kind)

	if err := rule.Validate(); err != nil {
		s.logger.Warn("CreateRule: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	if rule.Priority == 0 {
		rule.Priority = rule.Kind.DefaultPriority()
	}
	rule.Active = true

	created, err := s.ruleRepo.Create(ctx, rule)
	if err != nil {
		s.logger.Error("CreateRule: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.invalidateCache(ctx, created.TenantID, created.ResourceID)

	s.logger.Info("CreateRule: rule id=%s created", created.ID)
	return created, nil
}

// ListByResource получает все правила ресурса, включая деактивированные
func (s *Service) ListByResource(ctx context.Context, tenantID string, resourceID uuid.UUID) ([]*domain.AvailabilityRule, error) {
	result, err := s.ruleRepo.ListByResource(ctx, tenantID, resourceID)
	if err != nil {
		s.logger.Error("ListRules: repository error for resource=%s: %v", resourceID, err)
		return nil, fmt.Errorf("%w: ListByResource - repository error: %v", ErrInternal, err)
	}
	return result, nil
}

// Deactivate деактивирует правило. Правила никогда не удаляются физически.
func (s *Service) Deactivate(ctx context.Context, tenantID string, id uuid.UUID) error {
	s.logger.Info("DeactivateRule: tenant=%s, rule=%s", tenantID, id)

	rule, err := s.ruleRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, ruleRepo.ErrRuleNotFound) {
			s.logger.Warn("DeactivateRule: rule id=%s not found", id)
			return ErrRuleNotFound
		}
		s.logger.Error("DeactivateRule: repository error for rule id=%s: %v", id, err)
		return fmt.Errorf("%w: Deactivate - repository error: %v", ErrInternal, err)
	}

	if err := s.ruleRepo.Deactivate(ctx, tenantID, id); err != nil {
		if errors.Is(err, ruleRepo.ErrRuleNotFound) {
			return ErrRuleNotFound
		}
		s.logger.Error("DeactivateRule: failed to deactivate rule id=%s: %v", id, err)
		return fmt.Errorf("%w: Deactivate - repository error: %v", ErrInternal, err)
	}

	s.invalidateCache(ctx, tenantID, rule.ResourceID)

	s.logger.Info("DeactivateRule: rule id=%s deactivated", id)
	return nil
}

// CopyWeek материализует расписание исходной недели в one_time правила
// целевой недели. Повторяющиеся гранты становятся разовыми правилами на
// конкретные даты; вычитающие правила копируются со сдвигом своим видом.
// Рантаймового вида copy_week не существует - копия сразу разворачивается
// в обычные правила.
func (s *Service) CopyWeek(ctx context.Context, tenantID string, resourceID uuid.UUID, sourceWeekStart, targetWeekStart time.Time) ([]*domain.AvailabilityRule, error) {
	s.logger.Info("CopyWeek: tenant=%s, resource=%s, source=%s, target=%s",
		tenantID, resourceID, sourceWeekStart.Format(domain.DateFormat), targetWeekStart.Format(domain.DateFormat))

	if sourceWeekStart.IsZero() || targetWeekStart.IsZero() {
		return nil, fmt.Errorf("%w: source and target week starts are required", ErrInvalidWeek)
	}
	if sourceWeekStart.Equal(targetWeekStart) {
		return nil, fmt.Errorf("%w: source and target weeks must differ", ErrInvalidWeek)
	}

	sourceEnd := sourceWeekStart.AddDate(0, 0, 7)
	active, err := s.ruleRepo.GetActiveByResource(ctx, tenantID, resourceID, sourceWeekStart, sourceEnd)
	if err != nil {
		s.logger.Error("CopyWeek: failed to load source rules: %v", err)
		return nil, fmt.Errorf("%w: CopyWeek - repository error: %v", ErrInternal, err)
	}

	batch := materializeWeek(active, sourceWeekStart, targetWeekStart)
	if len(batch) == 0 {
		s.logger.Info("CopyWeek: source week is empty, nothing to copy")
		return []*domain.AvailabilityRule{}, nil
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.ruleRepo.CreateBatch(txCtx, batch); err != nil {
			return fmt.Errorf("%w: CopyWeek - batch insert failed: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("CopyWeek: transaction failed: %v", err)
		return nil, err
	}

	s.invalidateCache(ctx, tenantID, resourceID)

	s.logger.Info("CopyWeek: %d rules materialized for resource=%s", len(batch), resourceID)
	return batch, nil
}

// materializeWeek строит разовые правила целевой недели по занятиям исходной
func materializeWeek(rules []*domain.AvailabilityRule, sourceWeekStart, targetWeekStart time.Time) []*domain.AvailabilityRule {
	batch := make([]*domain.AvailabilityRule, 0)

	for offset := 0; offset < 7; offset++ {
		sourceDate := sourceWeekStart.AddDate(0, 0, offset)
		targetDate := targetWeekStart.AddDate(0, 0, offset)

		for _, rule := range rules {
			if !rule.AppliesOn(sourceDate) {
				continue
			}

			kind := domain.RuleKindOneTime
			if rule.Kind.IsSubtractive() {
				kind = rule.Kind
			}

			date := targetDate
			copied := &domain.AvailabilityRule{
				ID:              uuid.New(),
				TenantID:        rule.TenantID,
				ResourceID:      rule.ResourceID,
				Kind:            kind,
				StartTime:       rule.StartTime,
				EndTime:         rule.EndTime,
				Timezone:        rule.Timezone,
				DateFrom:        &date,
				DateTo:          &date,
				ServiceAllowIDs: rule.ServiceAllowIDs,
				ServiceDenyIDs:  rule.ServiceDenyIDs,
				Priority:        kind.DefaultPriority(),
				Active:          true,
			}
			batch = append(batch, copied)
		}
	}

	return batch
}

// invalidateCache сбрасывает кэш правил ресурса. Ошибка сброса логируется,
// но не валит мутацию: TTL кэша ограничивает окно рассинхронизации.
func (s *Service) invalidateCache(ctx context.Context, tenantID string, resourceID uuid.UUID) {
	if err := s.ruleCache.Invalidate(ctx, tenantID, resourceID); err != nil {
		s.logger.Error("rules: cache invalidation failed for resource=%s: %v", resourceID, err)
	}
}
