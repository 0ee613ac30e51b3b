package create_booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/anshddoshi27/Tithi-sub002/internal/api/handlers"
	"github.com/anshddoshi27/Tithi-sub002/internal/api/middleware"
	createBooking "github.com/anshddoshi27/Tithi-sub002/internal/usecase/create_booking"
)

const (
	msgInvalidBody         = "некорректное тело запроса"
	msgServiceNotFound     = "услуга не найдена"
	msgCustomerNotFound    = "клиент не найден"
	msgCustomerBlocked     = "клиент заблокирован"
	msgConflict            = "интервал уже занят"
	msgHoldNotActive       = "холд истёк или уже использован"
	msgHoldOwnerMismatch   = "холд принадлежит другой сессии"
	msgIdempotencyConflict = "idempotency-токен уже использован с другим запросом"
	msgInvalidInterval     = "некорректный интервал бронирования"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var httpReq CreateBookingRequest
	if err := handlers.DecodeJSON(r, &httpReq); err != nil {
		h.logger.Warn("POST /bookings - decode failed: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	req, err := httpReq.ToUseCaseRequest(
		middleware.TenantFromContext(r.Context()),
		middleware.IdempotencyKeyFromContext(r.Context()),
	)
	if err != nil {
		h.logger.Warn("POST /bookings - invalid request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)
		case errors.Is(err, createBooking.ErrCustomerNotFound):
			handlers.RespondNotFound(w, msgCustomerNotFound)
		case errors.Is(err, createBooking.ErrCustomerBlocked):
			handlers.RespondUnprocessable(w, msgCustomerBlocked)
		case errors.Is(err, createBooking.ErrConflict):
			handlers.RespondConflict(w, msgConflict,
				req.ResourceID.String(),
				req.StartAt.Format(time.RFC3339), "")
		case errors.Is(err, createBooking.ErrHoldNotActive):
			handlers.RespondConflict(w, msgHoldNotActive, req.ResourceID.String(), "", "")
		case errors.Is(err, createBooking.ErrHoldOwnerMismatch):
			handlers.RespondConflict(w, msgHoldOwnerMismatch, req.ResourceID.String(), "", "")
		case errors.Is(err, createBooking.ErrIdempotencyKeyConflict):
			handlers.RespondConflict(w, msgIdempotencyConflict, "", "", "")
		case errors.Is(err, createBooking.ErrInvalidInterval):
			handlers.RespondBadRequest(w, msgInvalidInterval)
		case errors.Is(err, createBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidBody)
		default:
			h.logger.Error("POST /bookings - failed: resource_id=%s, error=%v", req.ResourceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	h.logger.Info("POST /bookings - done: booking_id=%s, replayed=%t", result.Booking.ID, result.Replayed)
	handlers.RespondJSON(w, status, FromUseCaseResponse(result))
}
