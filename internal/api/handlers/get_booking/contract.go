package get_booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/service/bookings/models"
)

type BookingsService interface {
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.BookingResponse, error)
	ListByCustomer(ctx context.Context, tenantID, customerID string, status *string) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
