package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/pkg/types"
)

var (
	// ErrInvalidRuleWindow возвращается, когда конец окна правила не позже начала
	ErrInvalidRuleWindow = errors.New("domain: rule end time must be strictly after start time")

	// ErrInvalidTimezone возвращается, когда IANA зона правила не резолвится
	ErrInvalidTimezone = errors.New("domain: invalid IANA timezone")

	// ErrEmptyDaysOfWeek возвращается, когда у повторяющегося правила не заданы дни недели
	ErrEmptyDaysOfWeek = errors.New("domain: recurring rule requires a non-empty days-of-week set")
)

// RuleKind is a closed set of availability rule variants.
type RuleKind string

const (
	RuleKindRecurringWeekly RuleKind = "recurring_weekly"
	RuleKindRecurringDaily  RuleKind = "recurring_daily"
	RuleKindOneTime         RuleKind = "one_time"
	RuleKindException       RuleKind = "exception"
	RuleKindHoliday         RuleKind = "holiday"
	RuleKindBreak           RuleKind = "break"
)

// Rule merge priorities: higher wins on the same date.
const (
	PriorityHoliday         = 100
	PriorityException       = 90
	PriorityOneTime         = 80
	PriorityBreak           = 70
	PriorityRecurringWeekly = 50
	PriorityRecurringDaily  = 40
)

// DefaultPriority returns the merge priority for the rule kind.
func (k RuleKind) DefaultPriority() int {
	switch k {
	case RuleKindHoliday:
		return PriorityHoliday
	case RuleKindException:
		return PriorityException
	case RuleKindOneTime:
		return PriorityOneTime
	case RuleKindBreak:
		return PriorityBreak
	case RuleKindRecurringWeekly:
		return PriorityRecurringWeekly
	case RuleKindRecurringDaily:
		return PriorityRecurringDaily
	default:
		return 0
	}
}

// IsValid returns true for a known rule kind.
func (k RuleKind) IsValid() bool {
	switch k {
	case RuleKindRecurringWeekly, RuleKindRecurringDaily, RuleKindOneTime,
		RuleKindException, RuleKindHoliday, RuleKindBreak:
		return true
	}
	return false
}

// IsRecurring returns true for kinds that require a days-of-week set.
func (k RuleKind) IsRecurring() bool {
	return k == RuleKindRecurringWeekly
}

// IsSubtractive returns true for kinds that remove availability
// (holiday, exception, break) rather than grant it.
func (k RuleKind) IsSubtractive() bool {
	return k == RuleKindHoliday || k == RuleKindException || k == RuleKindBreak
}

// AvailabilityRule describes when a resource is (or is not) bookable.
// Rules are defined in local wall-clock time plus an IANA zone and are
// resolved to absolute UTC intervals per calendar date. Rules are never
// physically deleted, only deactivated, to preserve audit history.
type AvailabilityRule struct {
	ID         uuid.UUID
	TenantID   string
	ResourceID uuid.UUID
	Kind       RuleKind

	StartTime types.TimeString // локальное время начала, "HH:MM"
	EndTime   types.TimeString // локальное время конца, "HH:MM"
	Timezone  string           // IANA зона, например "America/New_York"

	DaysOfWeek []time.Weekday // для recurring-правил
	DateFrom   *time.Time     // начало окна действия правила (включительно)
	DateTo     *time.Time     // конец окна действия правила (включительно)

	// Ограничения по услугам: allow-список имеет приоритет над deny-списком
	ServiceAllowIDs []uuid.UUID
	ServiceDenyIDs  []uuid.UUID

	Priority int
	Active   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces the rule invariants: a valid kind, a resolvable zone,
// end strictly after start and, for recurring kinds, a non-empty weekday set.
func (r *AvailabilityRule) Validate() error {
	if !r.Kind.IsValid() {
		return ErrInvalidRuleWindow
	}
	if err := r.StartTime.Validate(); err != nil {
		return ErrInvalidRuleWindow
	}
	if err := r.EndTime.Validate(); err != nil {
		return ErrInvalidRuleWindow
	}
	if !r.StartTime.IsBefore(r.EndTime) {
		return ErrInvalidRuleWindow
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil {
		return ErrInvalidTimezone
	}
	if r.Kind.IsRecurring() && len(r.DaysOfWeek) == 0 {
		return ErrEmptyDaysOfWeek
	}
	if r.DateFrom != nil && r.DateTo != nil && r.DateTo.Before(*r.DateFrom) {
		return ErrInvalidRuleWindow
	}
	return nil
}

// AppliesOn returns true if the rule can produce an occurrence on the given
// calendar date (date is interpreted in the rule's zone by the resolver).
func (r *AvailabilityRule) AppliesOn(date time.Time) bool {
	if !r.Active {
		return false
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if r.DateFrom != nil {
		from := time.Date(r.DateFrom.Year(), r.DateFrom.Month(), r.DateFrom.Day(), 0, 0, 0, 0, time.UTC)
		if day.Before(from) {
			return false
		}
	}
	if r.DateTo != nil {
		to := time.Date(r.DateTo.Year(), r.DateTo.Month(), r.DateTo.Day(), 0, 0, 0, 0, time.UTC)
		if day.After(to) {
			return false
		}
	}

	if r.Kind == RuleKindRecurringWeekly {
		for _, wd := range r.DaysOfWeek {
			if wd == date.Weekday() {
				return true
			}
		}
		return false
	}

	return true
}

// AllowsService returns true if the rule permits booking the given service.
// An allow-list restricts to listed services; otherwise the deny-list excludes.
func (r *AvailabilityRule) AllowsService(serviceID uuid.UUID) bool {
	if len(r.ServiceAllowIDs) > 0 {
		for _, id := range r.ServiceAllowIDs {
			if id == serviceID {
				return true
			}
		}
		return false
	}
	for _, id := range r.ServiceDenyIDs {
		if id == serviceID {
			return false
		}
	}
	return true
}
