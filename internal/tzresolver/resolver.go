package tzresolver

import (
	"fmt"
	"time"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	"github.com/anshddoshi27/Tithi-sub002/pkg/types"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Resolver разворачивает локальные окна правил в абсолютные UTC-интервалы
// на конкретную календарную дату с учётом переходов на летнее/зимнее время.
//
// Политики, зафиксированные как проектные решения:
//   - Несуществующее локальное время (spring-forward gap): занятие на эту дату
//     пропускается с диагностикой в лог, без ошибки.
//   - Неоднозначное локальное время (fall-back): детерминированно берётся
//     ПЕРВОЕ вхождение (более ранний абсолютный момент, standard-time-first).
type Resolver struct {
	logger Logger
}

// New создает новый resolver
func New(logger Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve возвращает ноль или один ResolvedInterval для правила на дату.
// Возвращает (nil, nil), если правило не применимо к дате или его локальное
// время начала не существует в этот день.
func (r *Resolver) Resolve(rule *domain.AvailabilityRule, date time.Time) (*domain.ResolvedInterval, error) {
	if !rule.StartTime.IsBefore(rule.EndTime) {
		return nil, fmt.Errorf("%w: rule id=%s window %s-%s", domain.ErrInvalidRuleWindow, rule.ID, rule.StartTime, rule.EndTime)
	}

	loc, err := time.LoadLocation(rule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: rule id=%s zone %q", domain.ErrInvalidTimezone, rule.ID, rule.Timezone)
	}

	if !rule.AppliesOn(date) {
		return nil, nil
	}

	year, month, day := date.Date()

	start, exists := resolveLocalTime(year, month, day, rule.StartTime, loc)
	if !exists {
		// Spring-forward: локального времени начала в этот день не существует
		r.logger.Warn("tzresolver: rule id=%s start %s does not exist on %s in %s (DST gap), occurrence skipped",
			rule.ID, rule.StartTime, date.Format(domain.DateFormat), rule.Timezone)
		return nil, nil
	}

	end, exists := resolveLocalTime(year, month, day, rule.EndTime, loc)
	if !exists {
		// Конец окна попал в несуществующий час: окно сжимается до момента
		// перехода, съевшего это локальное время
		end = gapTransition(year, month, day, rule.EndTime, loc)
		r.logger.Warn("tzresolver: rule id=%s end %s does not exist on %s in %s (DST gap), clamped to %s",
			rule.ID, rule.EndTime, date.Format(domain.DateFormat), rule.Timezone, end.Format(time.RFC3339))
	}

	if !end.After(start) {
		r.logger.Warn("tzresolver: rule id=%s resolves to an empty window on %s, occurrence skipped",
			rule.ID, date.Format(domain.DateFormat))
		return nil, nil
	}

	priority := rule.Priority
	if priority == 0 {
		priority = rule.Kind.DefaultPriority()
	}

	return &domain.ResolvedInterval{
		ResourceID: rule.ResourceID,
		RuleID:     rule.ID,
		Kind:       rule.Kind,
		Priority:   priority,
		Interval: domain.Interval{
			Start: start.UTC(),
			End:   end.UTC(),
		},
	}, nil
}

// resolveLocalTime строит абсолютный момент для локального времени суток.
// Возвращает exists=false, если такого локального времени в этот день нет
// (spring-forward gap). При неоднозначности (fall-back) возвращает первое
// вхождение - более ранний абсолютный момент.
func resolveLocalTime(year int, month time.Month, day int, ts types.TimeString, loc *time.Location) (time.Time, bool) {
	hour, minute := ts.Hour(), ts.Minute()

	t := time.Date(year, month, day, hour, minute, 0, 0, loc)

	// time.Date нормализует несуществующее время, сдвигая его вперёд:
	// если стенные часы результата не совпали с запрошенными - время в gap
	if t.Hour() != hour || t.Minute() != minute {
		return time.Time{}, false
	}

	// Fall-back: если тот же стенной момент существует раньше на величину
	// перехода, time.Date вернул второе вхождение - берём первое. Величина
	// выводится из смещений зоны: переходы бывают и не часовыми
	// (Lord Howe сдвигается на 30 минут)
	if delta := transitionDelta(t); delta > 0 {
		earlier := t.Add(-delta)
		ey, em, ed := earlier.Date()
		if ey == year && em == month && ed == day && earlier.Hour() == hour && earlier.Minute() == minute {
			return earlier, true
		}
	}

	return t, true
}

// transitionDelta возвращает величину недавнего перевода часов назад:
// разницу смещений зоны сутками раньше и в момент t. Ноль или
// отрицательное значение - fall-back перехода рядом с t нет.
func transitionDelta(t time.Time) time.Duration {
	_, offNow := t.Zone()
	_, offPast := t.Add(-24 * time.Hour).Zone()
	return time.Duration(offPast-offNow) * time.Second
}

// gapTransition возвращает момент перехода, съевшего локальное время ts
// на эту дату. Направление нормализации несуществующего времени в time.Date
// не специфицировано, поэтому на нормализованный момент полагаться нельзя:
// переход ищется двоичным поиском по смене смещения зоны.
func gapTransition(year int, month time.Month, day int, ts types.TimeString, loc *time.Location) time.Time {
	t := time.Date(year, month, day, ts.Hour(), ts.Minute(), 0, 0, loc)

	// Нормализованный момент лежит в пределах пары часов от перехода,
	// а соседние переходы разнесены на месяцы: в окне ровно один
	lo, hi := t.Add(-48*time.Hour), t.Add(48*time.Hour)
	_, before := lo.Zone()
	for hi.Sub(lo) > time.Minute {
		mid := lo.Add(hi.Sub(lo) / 2)
		if _, off := mid.Zone(); off == before {
			lo = mid
		} else {
			hi = mid
		}
	}

	// Переходы случаются на целой минуте: усечение даёт точный момент
	return hi.Truncate(time.Minute)
}
