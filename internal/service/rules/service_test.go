package rules

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	ruleRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/rules"
	"github.com/anshddoshi27/Tithi-sub002/pkg/types"
)

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

type ruleRepoMock struct {
	active []*domain.AvailabilityRule
	byID   *domain.AvailabilityRule

	created     *domain.AvailabilityRule
	batch       []*domain.AvailabilityRule
	deactivated uuid.UUID
}

func (m *ruleRepoMock) Create(ctx context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error) {
	created := *rule
	created.ID = uuid.New()
	m.created = &created
	return &created, nil
}

func (m *ruleRepoMock) CreateBatch(ctx context.Context, batch []*domain.AvailabilityRule) error {
	m.batch = batch
	return nil
}

func (m *ruleRepoMock) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.AvailabilityRule, error) {
	if m.byID == nil {
		return nil, ruleRepo.ErrRuleNotFound
	}
	return m.byID, nil
}

func (m *ruleRepoMock) GetActiveByResource(ctx context.Context, tenantID string, resourceID uuid.UUID, from, to time.Time) ([]*domain.AvailabilityRule, error) {
	return m.active, nil
}

func (m *ruleRepoMock) ListByResource(ctx context.Context, tenantID string, resourceID uuid.UUID) ([]*domain.AvailabilityRule, error) {
	return m.active, nil
}

func (m *ruleRepoMock) Deactivate(ctx context.Context, tenantID string, id uuid.UUID) error {
	m.deactivated = id
	return nil
}

type ruleCacheMock struct {
	invalidated int
}

func (m *ruleCacheMock) Invalidate(ctx context.Context, tenantID string, resourceID uuid.UUID) error {
	m.invalidated++
	return nil
}

type txManagerMock struct{}

func (txManagerMock) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(repo *ruleRepoMock, cache *ruleCacheMock) *Service {
	return NewService(repo, cache, txManagerMock{}, noopLogger{})
}

func weeklyRule(resourceID uuid.UUID, days ...time.Weekday) *domain.AvailabilityRule {
	return &domain.AvailabilityRule{
		ID:         uuid.New(),
		TenantID:   "tenant-1",
		ResourceID: resourceID,
		Kind:       domain.RuleKindRecurringWeekly,
		StartTime:  types.TimeString("09:00"),
		EndTime:    types.TimeString("17:00"),
		Timezone:   "UTC",
		DaysOfWeek: days,
		Priority:   domain.PriorityRecurringWeekly,
		Active:     true,
	}
}

func TestCreate(t *testing.T) {
	t.Run("default priority is assigned by kind", func(t *testing.T) {
		repo := &ruleRepoMock{}
		cache := &ruleCacheMock{}
		svc := newTestService(repo, cache)

		rule := weeklyRule(uuid.New(), time.Monday)
		rule.Priority = 0

		created, err := svc.Create(context.Background(), rule)
		require.NoError(t, err)
		assert.Equal(t, domain.PriorityRecurringWeekly, created.Priority)
		assert.True(t, created.Active)
		assert.Equal(t, 1, cache.invalidated)
	})

	t.Run("invalid rule is rejected before the repository", func(t *testing.T) {
		repo := &ruleRepoMock{}
		svc := newTestService(repo, &ruleCacheMock{})

		rule := weeklyRule(uuid.New(), time.Monday)
		rule.StartTime = types.TimeString("17:00")
		rule.EndTime = types.TimeString("09:00")

		_, err := svc.Create(context.Background(), rule)
		assert.ErrorIs(t, err, ErrInvalidRule)
		assert.Nil(t, repo.created)
	})

	t.Run("recurring rule without weekdays is rejected", func(t *testing.T) {
		svc := newTestService(&ruleRepoMock{}, &ruleCacheMock{})

		rule := weeklyRule(uuid.New())

		_, err := svc.Create(context.Background(), rule)
		assert.ErrorIs(t, err, ErrInvalidRule)
	})
}

func TestDeactivate(t *testing.T) {
	t.Run("deactivation drops the resource cache", func(t *testing.T) {
		rule := weeklyRule(uuid.New(), time.Monday)
		repo := &ruleRepoMock{byID: rule}
		cache := &ruleCacheMock{}
		svc := newTestService(repo, cache)

		err := svc.Deactivate(context.Background(), "tenant-1", rule.ID)
		require.NoError(t, err)
		assert.Equal(t, rule.ID, repo.deactivated)
		assert.Equal(t, 1, cache.invalidated)
	})

	t.Run("unknown rule", func(t *testing.T) {
		svc := newTestService(&ruleRepoMock{}, &ruleCacheMock{})

		err := svc.Deactivate(context.Background(), "tenant-1", uuid.New())
		assert.ErrorIs(t, err, ErrRuleNotFound)
	})
}

func TestCopyWeek(t *testing.T) {
	resourceID := uuid.New()
	// Понедельники: исходная неделя 2 июня, целевая 9 июня 2025
	source := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	target := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	t.Run("recurring grants become one-time rules on target dates", func(t *testing.T) {
		repo := &ruleRepoMock{active: []*domain.AvailabilityRule{
			weeklyRule(resourceID, time.Monday, time.Wednesday),
		}}
		cache := &ruleCacheMock{}
		svc := newTestService(repo, cache)

		batch, err := svc.CopyWeek(context.Background(), "tenant-1", resourceID, source, target)
		require.NoError(t, err)
		require.Len(t, batch, 2)
		assert.Equal(t, repo.batch, batch)
		assert.Equal(t, 1, cache.invalidated)

		for _, copied := range batch {
			assert.Equal(t, domain.RuleKindOneTime, copied.Kind)
			assert.Equal(t, domain.PriorityOneTime, copied.Priority)
			assert.Empty(t, copied.DaysOfWeek)
			require.NotNil(t, copied.DateFrom)
			assert.Equal(t, *copied.DateFrom, *copied.DateTo)
		}

		// Пн 9 июня и ср 11 июня
		assert.Equal(t, target, *batch[0].DateFrom)
		assert.Equal(t, target.AddDate(0, 0, 2), *batch[1].DateFrom)
	})

	t.Run("subtractive rules keep their kind", func(t *testing.T) {
		day := source.AddDate(0, 0, 3) // чт исходной недели
		lunch := &domain.AvailabilityRule{
			ID:         uuid.New(),
			TenantID:   "tenant-1",
			ResourceID: resourceID,
			Kind:       domain.RuleKindBreak,
			StartTime:  types.TimeString("12:00"),
			EndTime:    types.TimeString("13:00"),
			Timezone:   "UTC",
			DateFrom:   &day,
			DateTo:     &day,
			Priority:   domain.PriorityBreak,
			Active:     true,
		}

		svc := newTestService(&ruleRepoMock{active: []*domain.AvailabilityRule{lunch}}, &ruleCacheMock{})

		batch, err := svc.CopyWeek(context.Background(), "tenant-1", resourceID, source, target)
		require.NoError(t, err)
		require.Len(t, batch, 1)

		copied := batch[0]
		assert.Equal(t, domain.RuleKindBreak, copied.Kind)
		assert.Equal(t, domain.PriorityBreak, copied.Priority)
		assert.Equal(t, target.AddDate(0, 0, 3), *copied.DateFrom)
	})

	t.Run("one-time rule copies with the week shift", func(t *testing.T) {
		day := source.AddDate(0, 0, 1)
		oneOff := &domain.AvailabilityRule{
			ID:         uuid.New(),
			TenantID:   "tenant-1",
			ResourceID: resourceID,
			Kind:       domain.RuleKindOneTime,
			StartTime:  types.TimeString("10:00"),
			EndTime:    types.TimeString("12:00"),
			Timezone:   "UTC",
			DateFrom:   &day,
			DateTo:     &day,
			Priority:   domain.PriorityOneTime,
			Active:     true,
		}

		svc := newTestService(&ruleRepoMock{active: []*domain.AvailabilityRule{oneOff}}, &ruleCacheMock{})

		batch, err := svc.CopyWeek(context.Background(), "tenant-1", resourceID, source, target)
		require.NoError(t, err)
		require.Len(t, batch, 1)
		assert.Equal(t, target.AddDate(0, 0, 1), *batch[0].DateFrom)
	})

	t.Run("empty source week copies nothing", func(t *testing.T) {
		repo := &ruleRepoMock{}
		svc := newTestService(repo, &ruleCacheMock{})

		batch, err := svc.CopyWeek(context.Background(), "tenant-1", resourceID, source, target)
		require.NoError(t, err)
		assert.Empty(t, batch)
		assert.Nil(t, repo.batch)
	})

	t.Run("same source and target week is rejected", func(t *testing.T) {
		svc := newTestService(&ruleRepoMock{}, &ruleCacheMock{})

		_, err := svc.CopyWeek(context.Background(), "tenant-1", resourceID, source, source)
		assert.ErrorIs(t, err, ErrInvalidWeek)
	})
}
