package create_hold

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
)

// validateRequest проверяет входные данные запроса холда
func validateRequest(req *Request) error {
	if req.TenantID == "" {
		return fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}

	if req.ResourceID == uuid.Nil {
		return fmt.Errorf("%w: resource id is required", ErrInvalidInput)
	}

	if req.OwnerToken == "" {
		return fmt.Errorf("%w: owner token is required", ErrInvalidInput)
	}

	if req.StartAt.IsZero() || req.EndAt.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidInterval)
	}

	if !req.StartAt.Before(req.EndAt) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidInterval)
	}

	if req.TTLMinutes < 0 || req.TTLMinutes > domain.MaxHoldTTLMinutes {
		return fmt.Errorf("%w: ttl must be between %d and %d minutes",
			ErrInvalidInput, domain.MinHoldTTLMinutes, domain.MaxHoldTTLMinutes)
	}

	return nil
}
