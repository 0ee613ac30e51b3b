package compute_availability

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	"github.com/anshddoshi27/Tithi-sub002/internal/tzresolver"
	"github.com/anshddoshi27/Tithi-sub002/pkg/types"
)

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func utc(day, hour, minute int) time.Time {
	return time.Date(2025, 6, day, hour, minute, 0, 0, time.UTC)
}

func iv(day, startHour, endHour int) domain.Interval {
	return domain.Interval{Start: utc(day, startHour, 0), End: utc(day, endHour, 0)}
}

func rule(kind domain.RuleKind, start, end string, date time.Time) *domain.AvailabilityRule {
	r := &domain.AvailabilityRule{
		ID:        uuid.New(),
		TenantID:  "tenant-1",
		Kind:      kind,
		StartTime: types.TimeString(start),
		EndTime:   types.TimeString(end),
		Timezone:  "UTC",
		DateFrom:  &date,
		DateTo:    &date,
		Priority:  kind.DefaultPriority(),
		Active:    true,
	}
	return r
}

func TestResolveRange(t *testing.T) {
	resolver := tzresolver.New(noopLogger{})
	serviceID := uuid.New()
	day := utc(2, 0, 0)

	t.Run("highest priority level wins the date", func(t *testing.T) {
		weekly := rule(domain.RuleKindRecurringWeekly, "09:00", "17:00", day)
		weekly.DaysOfWeek = []time.Weekday{day.Weekday()}
		override := rule(domain.RuleKindOneTime, "12:00", "14:00", day)

		sets, err := resolveRange(resolver, []*domain.AvailabilityRule{weekly, override},
			utc(2, 0, 0), utc(3, 0, 0), time.UTC, serviceID)
		require.NoError(t, err)

		// one_time (80) перекрывает recurring_weekly (50): остаётся только 12-14
		require.Len(t, sets.granted, 1)
		assert.Equal(t, iv(2, 12, 14), sets.granted[0])
	})

	t.Run("same priority grants are unioned", func(t *testing.T) {
		morning := rule(domain.RuleKindOneTime, "09:00", "12:00", day)
		evening := rule(domain.RuleKindOneTime, "15:00", "18:00", day)

		sets, err := resolveRange(resolver, []*domain.AvailabilityRule{morning, evening},
			utc(2, 0, 0), utc(3, 0, 0), time.UTC, serviceID)
		require.NoError(t, err)
		assert.Len(t, sets.granted, 2)
	})

	t.Run("subtractive rules do not compete by priority", func(t *testing.T) {
		grant := rule(domain.RuleKindOneTime, "09:00", "17:00", day)
		lunch := rule(domain.RuleKindBreak, "12:00", "13:00", day)

		sets, err := resolveRange(resolver, []*domain.AvailabilityRule{grant, lunch},
			utc(2, 0, 0), utc(3, 0, 0), time.UTC, serviceID)
		require.NoError(t, err)

		// break (70) ниже one_time (80), но всё равно уходит в вычитаемые
		require.Len(t, sets.granted, 1)
		require.Len(t, sets.subtractive, 1)
		assert.Equal(t, iv(2, 12, 13), sets.subtractive[0])
	})

	t.Run("zone ahead of display zone is not missed", func(t *testing.T) {
		// Киритимати (UTC+14): окно 00:00-02:00 на 3 июня по зоне правила
		// приходится на 2 июня 10:00-12:00 UTC - внутри периода, хотя
		// дата правила опережает даты периода в зоне отображения
		ruleDay := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
		ahead := rule(domain.RuleKindOneTime, "00:00", "02:00", ruleDay)
		ahead.Timezone = "Pacific/Kiritimati"

		sets, err := resolveRange(resolver, []*domain.AvailabilityRule{ahead},
			utc(2, 0, 0), utc(2, 12, 0), time.UTC, serviceID)
		require.NoError(t, err)

		require.Len(t, sets.granted, 1)
		assert.Equal(t, domain.Interval{Start: utc(2, 10, 0), End: utc(2, 12, 0)}, sets.granted[0])
	})

	t.Run("rule denying the service is ignored", func(t *testing.T) {
		grant := rule(domain.RuleKindOneTime, "09:00", "17:00", day)
		grant.ServiceDenyIDs = []uuid.UUID{serviceID}

		sets, err := resolveRange(resolver, []*domain.AvailabilityRule{grant},
			utc(2, 0, 0), utc(3, 0, 0), time.UTC, serviceID)
		require.NoError(t, err)
		assert.Empty(t, sets.granted)
	})
}

func TestNormalizeIntervals(t *testing.T) {
	t.Run("overlapping and adjacent are coalesced", func(t *testing.T) {
		got := normalizeIntervals([]domain.Interval{
			iv(2, 13, 15),
			iv(2, 9, 11),
			iv(2, 10, 12),
			iv(2, 12, 13),
		})
		assert.Equal(t, []domain.Interval{iv(2, 9, 15)}, got)
	})

	t.Run("disjoint stay separate", func(t *testing.T) {
		got := normalizeIntervals([]domain.Interval{iv(2, 14, 16), iv(2, 9, 11)})
		assert.Equal(t, []domain.Interval{iv(2, 9, 11), iv(2, 14, 16)}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, normalizeIntervals(nil))
	})
}

func TestClipIntervals(t *testing.T) {
	got := clipIntervals([]domain.Interval{
		{Start: utc(1, 22, 0), End: utc(2, 2, 0)}, // начался накануне
		iv(2, 9, 11),
		iv(3, 1, 2), // целиком за границей
	}, utc(2, 0, 0), utc(3, 0, 0))

	assert.Equal(t, []domain.Interval{
		{Start: utc(2, 0, 0), End: utc(2, 2, 0)},
		iv(2, 9, 11),
	}, got)
}

func TestSubtractAll(t *testing.T) {
	free := []domain.Interval{iv(2, 9, 17)}
	busy := []domain.Interval{iv(2, 12, 13), iv(2, 15, 16)}

	got := subtractAll(free, busy)
	assert.Equal(t, []domain.Interval{iv(2, 9, 12), iv(2, 13, 15), iv(2, 16, 17)}, got)
}

func TestGenerateSlots(t *testing.T) {
	free := []domain.Interval{iv(2, 9, 12)}
	hour := time.Hour

	t.Run("slots fill the interval", func(t *testing.T) {
		slots := generateSlots(free, hour, 0, utc(1, 0, 0), nil, 0)
		assert.Equal(t, []domain.Interval{iv(2, 9, 10), iv(2, 10, 11), iv(2, 11, 12)}, slots)
	})

	t.Run("slot not fitting the tail is dropped", func(t *testing.T) {
		slots := generateSlots([]domain.Interval{{Start: utc(2, 9, 0), End: utc(2, 10, 30)}},
			hour, 0, utc(1, 0, 0), nil, 0)
		assert.Equal(t, []domain.Interval{iv(2, 9, 10)}, slots)
	})

	t.Run("past slots are filtered by notBefore", func(t *testing.T) {
		slots := generateSlots(free, hour, 0, utc(2, 10, 0), nil, 0)
		assert.Equal(t, []domain.Interval{iv(2, 10, 11), iv(2, 11, 12)}, slots)
	})

	t.Run("cursor resumes after the given start", func(t *testing.T) {
		cursor := utc(2, 9, 0)
		slots := generateSlots(free, hour, 0, utc(1, 0, 0), &cursor, 0)
		assert.Equal(t, []domain.Interval{iv(2, 10, 11), iv(2, 11, 12)}, slots)
	})

	t.Run("limit caps the page", func(t *testing.T) {
		slots := generateSlots(free, hour, 0, utc(1, 0, 0), nil, 2)
		assert.Equal(t, []domain.Interval{iv(2, 9, 10), iv(2, 10, 11)}, slots)
	})

	t.Run("pagination is deterministic", func(t *testing.T) {
		first := generateSlots(free, hour, 0, utc(1, 0, 0), nil, 2)
		require.Len(t, first, 2)

		cursor := first[len(first)-1].Start
		second := generateSlots(free, hour, 0, utc(1, 0, 0), &cursor, 2)
		assert.Equal(t, []domain.Interval{iv(2, 11, 12)}, second)
	})
}
