package booking_actions

import (
	"context"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/service/bookings/models"
	confirmBooking "github.com/anshddoshi27/Tithi-sub002/internal/usecase/confirm_booking"
	finalizeBooking "github.com/anshddoshi27/Tithi-sub002/internal/usecase/finalize_booking"
	refundBooking "github.com/anshddoshi27/Tithi-sub002/internal/usecase/refund_booking"
)

type ConfirmBookingUseCase interface {
	Execute(ctx context.Context, req *confirmBooking.Request) (*confirmBooking.Response, error)
}

type FinalizeBookingUseCase interface {
	Execute(ctx context.Context, req *finalizeBooking.Request) (*finalizeBooking.Response, error)
}

type RefundBookingUseCase interface {
	Execute(ctx context.Context, req *refundBooking.Request) (*refundBooking.Response, error)
}

type BookingsService interface {
	CheckIn(ctx context.Context, tenantID string, id uuid.UUID) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
