package create_booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// validateRequest проверяет входные данные запроса бронирования
func validateRequest(req *Request) error {
	if req.TenantID == "" {
		return fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}

	if req.ResourceID == uuid.Nil {
		return fmt.Errorf("%w: resource id is required", ErrInvalidInput)
	}

	if req.CustomerID == "" {
		return fmt.Errorf("%w: customer id is required", ErrInvalidInput)
	}

	if req.ServiceID == uuid.Nil {
		return fmt.Errorf("%w: service id is required", ErrInvalidInput)
	}

	if req.IdempotencyKey == "" {
		return fmt.Errorf("%w: idempotency key is required", ErrInvalidInput)
	}

	if req.HoldID == nil && req.StartAt.IsZero() {
		return fmt.Errorf("%w: either hold id or start time is required", ErrInvalidInterval)
	}

	if req.HoldID != nil && req.OwnerToken == "" {
		return fmt.Errorf("%w: owner token is required when booking from a hold", ErrInvalidInput)
	}

	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return fmt.Errorf("%w: invalid timezone %q", ErrInvalidInput, req.Timezone)
	}

	return nil
}
