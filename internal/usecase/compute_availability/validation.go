package compute_availability

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
)

// validateRequest проверяет входные данные запроса доступности
func validateRequest(req *Request) error {
	if req.TenantID == "" {
		return fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}

	if req.ResourceID == uuid.Nil {
		return fmt.Errorf("%w: resource id is required", ErrInvalidInput)
	}

	if req.ServiceID == uuid.Nil {
		return fmt.Errorf("%w: service id is required", ErrInvalidInput)
	}

	if req.DurationMinutes < 0 || (req.DurationMinutes > 0 && req.DurationMinutes < domain.MinServiceDurationMinutes) {
		return fmt.Errorf("%w: duration must be at least %d minutes", ErrInvalidInput, domain.MinServiceDurationMinutes)
	}

	if req.DurationMinutes > domain.MaxServiceDurationMinutes {
		return fmt.Errorf("%w: duration must not exceed %d minutes", ErrInvalidInput, domain.MaxServiceDurationMinutes)
	}

	if req.RangeStart.IsZero() || req.RangeEnd.IsZero() {
		return fmt.Errorf("%w: range start and end are required", ErrInvalidRange)
	}

	if !req.RangeStart.Before(req.RangeEnd) {
		return fmt.Errorf("%w: range end must be after range start", ErrInvalidRange)
	}

	if req.RangeEnd.Sub(req.RangeStart) > time.Duration(domain.MaxAvailabilityRangeDays)*24*time.Hour {
		return fmt.Errorf("%w: range must not exceed %d days", ErrRangeTooWide, domain.MaxAvailabilityRangeDays)
	}

	if req.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}

	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, req.Timezone)
	}

	return nil
}
