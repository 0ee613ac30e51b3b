package domain

import (
	"time"

	"github.com/google/uuid"
)

// Interval is a half-open UTC time interval [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// IsValid returns true if Start is strictly before End.
func (i Interval) IsValid() bool {
	return i.Start.Before(i.End)
}

// Duration returns the interval length.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps returns true if two half-open intervals truly intersect.
// Touching boundaries ([10:00,11:00) and [11:00,12:00)) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains returns true if other lies fully inside i.
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// Subtract returns the parts of i not covered by other (zero, one or two pieces).
func (i Interval) Subtract(other Interval) []Interval {
	if !i.Overlaps(other) {
		return []Interval{i}
	}

	result := make([]Interval, 0, 2)
	if i.Start.Before(other.Start) {
		result = append(result, Interval{Start: i.Start, End: other.Start})
	}
	if other.End.Before(i.End) {
		result = append(result, Interval{Start: other.End, End: i.End})
	}
	return result
}

// ResolvedInterval is a derived, never-persisted value: an availability rule
// resolved to an absolute UTC interval for one calendar date. It is always
// recomputed because DST offsets are date-dependent.
type ResolvedInterval struct {
	ResourceID uuid.UUID
	RuleID     uuid.UUID
	Kind       RuleKind
	Priority   int
	Interval   Interval
}
