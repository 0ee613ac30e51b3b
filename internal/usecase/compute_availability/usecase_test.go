package compute_availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	"github.com/anshddoshi27/Tithi-sub002/internal/integrations/catalogservice"
	"github.com/anshddoshi27/Tithi-sub002/internal/tzresolver"
	"github.com/anshddoshi27/Tithi-sub002/pkg/types"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type ruleRepoMock struct {
	rules []*domain.AvailabilityRule
	calls int
}

func (m *ruleRepoMock) ListActiveByResource(ctx context.Context, tenantID string, resourceID uuid.UUID) ([]*domain.AvailabilityRule, error) {
	m.calls++
	return m.rules, nil
}

// mapCache поведенчески повторяет rulecache: ключ - только tenant и ресурс
type mapCache struct {
	entries map[string][]*domain.AvailabilityRule
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]*domain.AvailabilityRule)}
}

func (c *mapCache) Get(ctx context.Context, tenantID string, resourceID uuid.UUID) ([]*domain.AvailabilityRule, bool) {
	rules, ok := c.entries[tenantID+":"+resourceID.String()]
	return rules, ok
}

func (c *mapCache) Set(ctx context.Context, tenantID string, resourceID uuid.UUID, rules []*domain.AvailabilityRule) {
	c.entries[tenantID+":"+resourceID.String()] = rules
}

type bookingRepoMock struct {
	blocking []*domain.Booking
}

func (m *bookingRepoMock) GetBlockingByResource(ctx context.Context, tenantID string, resourceID uuid.UUID, from, to time.Time) ([]*domain.Booking, error) {
	return m.blocking, nil
}

type holdRepoMock struct {
	active []*domain.Hold
}

func (m *holdRepoMock) GetActiveByResource(ctx context.Context, tenantID string, resourceID uuid.UUID, from, to time.Time, now time.Time) ([]*domain.Hold, error) {
	return m.active, nil
}

type catalogClientMock struct{}

func (m *catalogClientMock) GetResource(ctx context.Context, tenantID string, resourceID uuid.UUID) (*catalogservice.Resource, error) {
	return &catalogservice.Resource{ID: resourceID, TenantID: tenantID, Active: true}, nil
}

func (m *catalogClientMock) GetService(ctx context.Context, tenantID string, serviceID uuid.UUID) (*catalogservice.Service, error) {
	return &catalogservice.Service{Name: "Haircut", Price: 3000, DurationMinutes: 60, Active: true}, nil
}

func newAvailabilityUseCase(rules *ruleRepoMock, cache *mapCache) *UseCase {
	uc := NewUseCase(rules, cache, &bookingRepoMock{}, &holdRepoMock{},
		&catalogClientMock{}, tzresolver.New(noopLogger{}), noopLogger{})
	uc.timeProvider = fixedTime{now: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	return uc
}

func availabilityRequest(resourceID, serviceID uuid.UUID, from, to time.Time) *Request {
	return &Request{
		TenantID:   "tenant-1",
		ResourceID: resourceID,
		ServiceID:  serviceID,
		RangeStart: from,
		RangeEnd:   to,
		Timezone:   "UTC",
	}
}

func TestExecute_RuleCacheServesAllRanges(t *testing.T) {
	resourceID := uuid.New()
	serviceID := uuid.New()

	// Правило действует только 2 декабря 2030: рабочий день 09:00-17:00
	day := time.Date(2030, 12, 2, 0, 0, 0, 0, time.UTC)
	rules := &ruleRepoMock{rules: []*domain.AvailabilityRule{{
		ID:         uuid.New(),
		TenantID:   "tenant-1",
		ResourceID: resourceID,
		Kind:       domain.RuleKindOneTime,
		StartTime:  types.TimeString("09:00"),
		EndTime:    types.TimeString("17:00"),
		Timezone:   "UTC",
		DateFrom:   &day,
		DateTo:     &day,
		Priority:   domain.PriorityOneTime,
		Active:     true,
	}}}
	cache := newMapCache()
	uc := newAvailabilityUseCase(rules, cache)

	// Прогреваем кэш запросом за июнь: правило на него не приходится
	june, err := uc.Execute(context.Background(), availabilityRequest(resourceID, serviceID,
		time.Date(2030, 6, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Empty(t, june.Slots)
	assert.Equal(t, 1, rules.calls)

	// Декабрьский запрос обслуживается из кэша и обязан видеть правило:
	// кэш хранит полный набор, а не срез под период прогревшего запроса
	december, err := uc.Execute(context.Background(), availabilityRequest(resourceID, serviceID,
		day, day.AddDate(0, 0, 1)))
	require.NoError(t, err)
	assert.Equal(t, 1, rules.calls, "expected the december request to be served from cache")
	require.Len(t, december.Slots, 8)
	assert.Equal(t, time.Date(2030, 12, 2, 9, 0, 0, 0, time.UTC), december.Slots[0].StartAt)
	assert.Equal(t, time.Date(2030, 12, 2, 17, 0, 0, 0, time.UTC), december.Slots[7].EndAt)
}

func TestExecute_ActiveHoldExcludedFromSlots(t *testing.T) {
	resourceID := uuid.New()
	serviceID := uuid.New()

	day := time.Date(2030, 12, 2, 0, 0, 0, 0, time.UTC)
	rules := &ruleRepoMock{rules: []*domain.AvailabilityRule{{
		ID:         uuid.New(),
		TenantID:   "tenant-1",
		ResourceID: resourceID,
		Kind:       domain.RuleKindOneTime,
		StartTime:  types.TimeString("09:00"),
		EndTime:    types.TimeString("12:00"),
		Timezone:   "UTC",
		DateFrom:   &day,
		DateTo:     &day,
		Priority:   domain.PriorityOneTime,
		Active:     true,
	}}}

	uc := NewUseCase(rules, newMapCache(), &bookingRepoMock{}, &holdRepoMock{active: []*domain.Hold{{
		ID:         uuid.New(),
		ResourceID: resourceID,
		StartAt:    day.Add(10 * time.Hour),
		EndAt:      day.Add(11 * time.Hour),
		Status:     domain.HoldStatusActive,
		ExpiresAt:  time.Date(2030, 12, 1, 0, 0, 0, 0, time.UTC).Add(48 * time.Hour),
	}}}, &catalogClientMock{}, tzresolver.New(noopLogger{}), noopLogger{})
	uc.timeProvider = fixedTime{now: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}

	resp, err := uc.Execute(context.Background(), availabilityRequest(resourceID, serviceID, day, day.AddDate(0, 0, 1)))
	require.NoError(t, err)

	// 09-12 минус холд 10-11: остаются 09-10 и 11-12
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, day.Add(9*time.Hour), resp.Slots[0].StartAt)
	assert.Equal(t, day.Add(11*time.Hour), resp.Slots[1].StartAt)
}
