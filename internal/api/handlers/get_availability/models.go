package get_availability

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	computeAvailability "github.com/anshddoshi27/Tithi-sub002/internal/usecase/compute_availability"
)

// SlotResponse один слот в HTTP ответе
type SlotResponse struct {
	StartAt    string `json:"startAt"`
	EndAt      string `json:"endAt"`
	LocalStart string `json:"localStart"`
	LocalEnd   string `json:"localEnd"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	ResourceID      string         `json:"resourceId"`
	ServiceID       string         `json:"serviceId"`
	DurationMinutes int            `json:"durationMinutes"`
	Timezone        string         `json:"timezone"`
	Slots           []SlotResponse `json:"slots"`
}

// parseQuery разбирает query-параметры в модель use case
func parseQuery(tenantID string, resourceID uuid.UUID, query url.Values) (*computeAvailability.Request, error) {
	serviceID, err := uuid.Parse(query.Get("serviceId"))
	if err != nil {
		return nil, fmt.Errorf("invalid serviceId: %w", err)
	}

	from, err := time.Parse(time.RFC3339, query.Get("from"))
	if err != nil {
		return nil, fmt.Errorf("invalid from: %w", err)
	}

	to, err := time.Parse(time.RFC3339, query.Get("to"))
	if err != nil {
		return nil, fmt.Errorf("invalid to: %w", err)
	}

	req := &computeAvailability.Request{
		TenantID:   tenantID,
		ResourceID: resourceID,
		ServiceID:  serviceID,
		RangeStart: from.UTC(),
		RangeEnd:   to.UTC(),
		Timezone:   query.Get("tz"),
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}

	if raw := query.Get("durationMinutes"); raw != "" {
		duration, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid durationMinutes: %w", err)
		}
		req.DurationMinutes = duration
	}

	if raw := query.Get("after"); raw != "" {
		after, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid after: %w", err)
		}
		afterUTC := after.UTC()
		req.AfterStart = &afterUTC
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid limit: %w", err)
		}
		req.Limit = limit
	}

	return req, nil
}

// fromUseCaseResponse конвертирует ответ use case в HTTP response
func fromUseCaseResponse(resp *computeAvailability.Response) *AvailabilityResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, slot := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartAt:    slot.StartAt.Format(time.RFC3339),
			EndAt:      slot.EndAt.Format(time.RFC3339),
			LocalStart: slot.LocalStart,
			LocalEnd:   slot.LocalEnd,
		})
	}

	return &AvailabilityResponse{
		ResourceID:      resp.ResourceID.String(),
		ServiceID:       resp.ServiceID.String(),
		DurationMinutes: resp.DurationMinutes,
		Timezone:        resp.Timezone,
		Slots:           slots,
	}
}
