package create_hold

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	createHold "github.com/anshddoshi27/Tithi-sub002/internal/usecase/create_hold"
)

// CreateHoldRequest HTTP request model
type CreateHoldRequest struct {
	ResourceID string `json:"resourceId"`
	StartAt    string `json:"startAt"`
	EndAt      string `json:"endAt"`
	OwnerToken string `json:"ownerToken"`
	TTLMinutes int    `json:"ttlMinutes,omitempty"`
}

// HoldResponse HTTP response model
type HoldResponse struct {
	HoldID    string `json:"holdId"`
	StartAt   string `json:"startAt"`
	EndAt     string `json:"endAt"`
	ExpiresAt string `json:"expiresAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateHoldRequest) ToUseCaseRequest(tenantID string) (*createHold.Request, error) {
	resourceID, err := uuid.Parse(r.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("invalid resourceId: %w", err)
	}

	startAt, err := time.Parse(time.RFC3339, r.StartAt)
	if err != nil {
		return nil, fmt.Errorf("invalid startAt: %w", err)
	}

	endAt, err := time.Parse(time.RFC3339, r.EndAt)
	if err != nil {
		return nil, fmt.Errorf("invalid endAt: %w", err)
	}

	return &createHold.Request{
		TenantID:   tenantID,
		ResourceID: resourceID,
		StartAt:    startAt.UTC(),
		EndAt:      endAt.UTC(),
		OwnerToken: r.OwnerToken,
		TTLMinutes: r.TTLMinutes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createHold.Response) *HoldResponse {
	return &HoldResponse{
		HoldID:    resp.HoldID.String(),
		StartAt:   resp.StartAt.Format(time.RFC3339),
		EndAt:     resp.EndAt.Format(time.RFC3339),
		ExpiresAt: resp.ExpiresAt.Format(time.RFC3339),
	}
}
