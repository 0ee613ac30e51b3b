package compute_availability

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
)

// resolvedSets результат разворачивания правил на период:
// гранты доступности (уже смёрженные по приоритету) и вычитаемые окна
type resolvedSets struct {
	granted     []domain.Interval
	subtractive []domain.Interval
}

// resolveRange разворачивает правила на каждую календарную дату периода.
// Итерация идёт в зоне отображения с захватом одного дня с каждой стороны:
// правило живёт в собственной зоне, и его дата может опережать или отставать
// от даты в зоне отображения, а окно - пересекать границу периода.
//
// Мёрж на дату: среди применимых гранящих правил побеждает самый высокий
// приоритет - его интервалы берутся, остальные уровни игнорируются.
// Вычитающие правила (holiday, exception, break) уровнями не соревнуются:
// их окна всегда пробивают дыры в итоговой доступности.
func resolveRange(
	resolver Resolver,
	rules []*domain.AvailabilityRule,
	rangeStart, rangeEnd time.Time,
	loc *time.Location,
	serviceID uuid.UUID,
) (*resolvedSets, error) {
	sets := &resolvedSets{}

	day := rangeStart.In(loc)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	lastDay := rangeEnd.In(loc).AddDate(0, 0, 1)

	for ; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		var dayGrants []*domain.ResolvedInterval
		maxPriority := 0

		for _, rule := range rules {
			if !rule.AllowsService(serviceID) {
				continue
			}

			resolved, err := resolver.Resolve(rule, day)
			if err != nil {
				return nil, err
			}
			if resolved == nil {
				continue
			}

			if rule.Kind.IsSubtractive() {
				sets.subtractive = append(sets.subtractive, resolved.Interval)
				continue
			}

			dayGrants = append(dayGrants, resolved)
			if resolved.Priority > maxPriority {
				maxPriority = resolved.Priority
			}
		}

		for _, grant := range dayGrants {
			if grant.Priority == maxPriority {
				sets.granted = append(sets.granted, grant.Interval)
			}
		}
	}

	return sets, nil
}

// clipIntervals обрезает интервалы по границам периода и отбрасывает пустые
func clipIntervals(intervals []domain.Interval, rangeStart, rangeEnd time.Time) []domain.Interval {
	result := make([]domain.Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.Start.Before(rangeStart) {
			iv.Start = rangeStart
		}
		if iv.End.After(rangeEnd) {
			iv.End = rangeEnd
		}
		if iv.IsValid() {
			result = append(result, iv)
		}
	}
	return result
}

// normalizeIntervals сортирует интервалы и склеивает пересекающиеся и смежные
func normalizeIntervals(intervals []domain.Interval) []domain.Interval {
	if len(intervals) == 0 {
		return intervals
	}

	sorted := make([]domain.Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	result := []domain.Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &result[len(result)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		result = append(result, iv)
	}

	return result
}

// subtractAll вычитает из свободных интервалов все занятые окна
func subtractAll(free []domain.Interval, busy []domain.Interval) []domain.Interval {
	for _, b := range busy {
		next := make([]domain.Interval, 0, len(free))
		for _, f := range free {
			next = append(next, f.Subtract(b)...)
		}
		free = next
	}
	return free
}

// generateSlots нарезает свободные интервалы на слоты фиксированной длительности.
// Генерация детерминирована входом: повторный вызов с теми же интервалами и
// курсором продолжает выдачу с того же места.
func generateSlots(free []domain.Interval, duration time.Duration, step time.Duration, notBefore time.Time, afterStart *time.Time, limit int) []domain.Interval {
	if step <= 0 {
		step = duration
	}

	slots := make([]domain.Interval, 0)

	for _, iv := range free {
		for start := iv.Start; !start.Add(duration).After(iv.End); start = start.Add(step) {
			if start.Before(notBefore) {
				continue
			}
			if afterStart != nil && !start.After(*afterStart) {
				continue
			}

			slots = append(slots, domain.Interval{Start: start, End: start.Add(duration)})
			if limit > 0 && len(slots) == limit {
				return slots
			}
		}
	}

	return slots
}
