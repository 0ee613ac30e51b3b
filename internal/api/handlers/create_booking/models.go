package create_booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/service/bookings/models"
	createBooking "github.com/anshddoshi27/Tithi-sub002/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ResourceID string `json:"resourceId"`
	CustomerID string `json:"customerId"`
	ServiceID  string `json:"serviceId"`

	// HoldID и OwnerToken задаются при бронировании из холда
	HoldID     string `json:"holdId,omitempty"`
	OwnerToken string `json:"ownerToken,omitempty"`

	// StartAt задаётся при прямом бронировании без холда
	StartAt  string `json:"startAt,omitempty"`
	Timezone string `json:"timezone"`
}

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	Booking  *models.BookingResponse `json:"booking"`
	Replayed bool                    `json:"replayed"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(tenantID, idempotencyKey string) (*createBooking.Request, error) {
	resourceID, err := uuid.Parse(r.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("invalid resourceId: %w", err)
	}

	serviceID, err := uuid.Parse(r.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("invalid serviceId: %w", err)
	}

	req := &createBooking.Request{
		TenantID:       tenantID,
		ResourceID:     resourceID,
		CustomerID:     r.CustomerID,
		ServiceID:      serviceID,
		OwnerToken:     r.OwnerToken,
		Timezone:       r.Timezone,
		IdempotencyKey: idempotencyKey,
	}

	if r.HoldID != "" {
		holdID, err := uuid.Parse(r.HoldID)
		if err != nil {
			return nil, fmt.Errorf("invalid holdId: %w", err)
		}
		req.HoldID = &holdID
	}

	if r.StartAt != "" {
		startAt, err := time.Parse(time.RFC3339, r.StartAt)
		if err != nil {
			return nil, fmt.Errorf("invalid startAt: %w", err)
		}
		req.StartAt = startAt.UTC()
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	return &CreateBookingResponse{
		Booking:  models.FromDomainBooking(resp.Booking),
		Replayed: resp.Replayed,
	}
}
