package booking_actions

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/anshddoshi27/Tithi-sub002/internal/api/handlers"
	"github.com/anshddoshi27/Tithi-sub002/internal/api/middleware"
	"github.com/anshddoshi27/Tithi-sub002/internal/service/bookings"
	"github.com/anshddoshi27/Tithi-sub002/internal/service/bookings/models"
	confirmBooking "github.com/anshddoshi27/Tithi-sub002/internal/usecase/confirm_booking"
	finalizeBooking "github.com/anshddoshi27/Tithi-sub002/internal/usecase/finalize_booking"
	refundBooking "github.com/anshddoshi27/Tithi-sub002/internal/usecase/refund_booking"
)

const (
	msgInvalidBookingID     = "некорректный идентификатор бронирования"
	msgInvalidBody          = "некорректное тело запроса"
	msgBookingNotFound      = "бронирование не найдено"
	msgInvalidTransition    = "действие недопустимо из текущего статуса бронирования"
	msgPaymentFailed        = "платёж отклонён процессингом"
	msgProcessorUnavailable = "процессинг временно недоступен, повторите запрос"
	msgIdempotencyConflict  = "idempotency-токен уже использован с другим запросом"
	msgNoAuthorizedPayment  = "у бронирования нет авторизованного платежа"
	msgNoCapturedPayment    = "у бронирования нет захваченного платежа"
	msgRefundExceeds        = "сумма возврата превышает захваченный остаток"
)

// Handler обслуживает действия жизненного цикла бронирования:
// confirm, check-in, complete, cancel, no-show, refund
type Handler struct {
	confirmUseCase  ConfirmBookingUseCase
	finalizeUseCase FinalizeBookingUseCase
	refundUseCase   RefundBookingUseCase
	bookingsService BookingsService
	logger          Logger
}

func NewHandler(
	confirmUseCase ConfirmBookingUseCase,
	finalizeUseCase FinalizeBookingUseCase,
	refundUseCase RefundBookingUseCase,
	bookingsService BookingsService,
	logger Logger,
) *Handler {
	return &Handler{
		confirmUseCase:  confirmUseCase,
		finalizeUseCase: finalizeUseCase,
		refundUseCase:   refundUseCase,
		bookingsService: bookingsService,
		logger:          logger,
	}
}

func bookingIDFromRequest(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["bookingId"])
}

// HandleConfirm POST /api/v1/bookings/{bookingId}/confirm
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	bookingID, err := bookingIDFromRequest(r)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	req := &confirmBooking.Request{
		TenantID:       middleware.TenantFromContext(r.Context()),
		BookingID:      bookingID,
		IdempotencyKey: middleware.IdempotencyKeyFromContext(r.Context()),
	}

	result, err := h.confirmUseCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, confirmBooking.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgBookingNotFound)
		case errors.Is(err, confirmBooking.ErrInvalidStateTransition):
			handlers.RespondUnprocessable(w, msgInvalidTransition)
		case errors.Is(err, confirmBooking.ErrPaymentFailed):
			handlers.RespondError(w, http.StatusPaymentRequired, msgPaymentFailed)
		case errors.Is(err, confirmBooking.ErrIdempotencyKeyConflict):
			handlers.RespondConflict(w, msgIdempotencyConflict, "", "", "")
		case errors.Is(err, confirmBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidBody)
		default:
			h.logger.Error("POST /bookings/{id}/confirm - failed: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/confirm - done: booking_id=%s, status=%s", bookingID, result.Booking.Status)
	handlers.RespondJSON(w, http.StatusOK, &ActionResponse{
		Booking:  models.FromDomainBooking(result.Booking),
		Payment:  fromDomainPayment(result.Payment),
		Replayed: result.Replayed,
	})
}

// HandleCheckIn POST /api/v1/bookings/{bookingId}/check-in
func (h *Handler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	bookingID, err := bookingIDFromRequest(r)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	booking, err := h.bookingsService.CheckIn(r.Context(), middleware.TenantFromContext(r.Context()), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgBookingNotFound)
		case errors.Is(err, bookings.ErrInvalidStateTransition):
			handlers.RespondUnprocessable(w, msgInvalidTransition)
		default:
			h.logger.Error("POST /bookings/{id}/check-in - failed: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, &ActionResponse{Booking: booking})
}

// HandleComplete POST /api/v1/bookings/{bookingId}/complete
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.handleFinalize(w, r, finalizeBooking.ActionComplete, "")
}

// HandleCancel POST /api/v1/bookings/{bookingId}/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	var body CancelRequest
	if err := handlers.DecodeJSON(r, &body); err != nil && !errors.Is(err, io.EOF) {
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}
	h.handleFinalize(w, r, finalizeBooking.ActionCancel, body.Reason)
}

// HandleNoShow POST /api/v1/bookings/{bookingId}/no-show
func (h *Handler) HandleNoShow(w http.ResponseWriter, r *http.Request) {
	h.handleFinalize(w, r, finalizeBooking.ActionNoShow, "")
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request, action finalizeBooking.Action, reason string) {
	bookingID, err := bookingIDFromRequest(r)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	req := &finalizeBooking.Request{
		TenantID:       middleware.TenantFromContext(r.Context()),
		BookingID:      bookingID,
		Action:         action,
		Reason:         reason,
		IdempotencyKey: middleware.IdempotencyKeyFromContext(r.Context()),
	}

	result, err := h.finalizeUseCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, finalizeBooking.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgBookingNotFound)
		case errors.Is(err, finalizeBooking.ErrInvalidStateTransition):
			handlers.RespondUnprocessable(w, msgInvalidTransition)
		case errors.Is(err, finalizeBooking.ErrNoAuthorizedPayment):
			handlers.RespondUnprocessable(w, msgNoAuthorizedPayment)
		case errors.Is(err, finalizeBooking.ErrPaymentFailed):
			handlers.RespondError(w, http.StatusPaymentRequired, msgPaymentFailed)
		case errors.Is(err, finalizeBooking.ErrPaymentProcessor):
			handlers.RespondError(w, http.StatusServiceUnavailable, msgProcessorUnavailable)
		case errors.Is(err, finalizeBooking.ErrIdempotencyKeyConflict):
			handlers.RespondConflict(w, msgIdempotencyConflict, "", "", "")
		case errors.Is(err, finalizeBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidBody)
		default:
			h.logger.Error("POST /bookings/{id}/%s - failed: booking_id=%s, error=%v", action, bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/%s - done: booking_id=%s, status=%s", action, bookingID, result.Booking.Status)
	handlers.RespondJSON(w, http.StatusOK, &ActionResponse{
		Booking:  models.FromDomainBooking(result.Booking),
		Payment:  fromDomainPayment(result.Payment),
		Replayed: result.Replayed,
	})
}

// HandleRefund POST /api/v1/bookings/{bookingId}/refund
func (h *Handler) HandleRefund(w http.ResponseWriter, r *http.Request) {
	bookingID, err := bookingIDFromRequest(r)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var body RefundRequest
	if err := handlers.DecodeJSON(r, &body); err != nil && !errors.Is(err, io.EOF) {
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	req := &refundBooking.Request{
		TenantID:       middleware.TenantFromContext(r.Context()),
		BookingID:      bookingID,
		Amount:         body.Amount,
		IdempotencyKey: middleware.IdempotencyKeyFromContext(r.Context()),
	}

	result, err := h.refundUseCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, refundBooking.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgBookingNotFound)
		case errors.Is(err, refundBooking.ErrInvalidStateTransition):
			handlers.RespondUnprocessable(w, msgInvalidTransition)
		case errors.Is(err, refundBooking.ErrNoCapturedPayment):
			handlers.RespondUnprocessable(w, msgNoCapturedPayment)
		case errors.Is(err, refundBooking.ErrRefundExceedsCaptured):
			handlers.RespondUnprocessable(w, msgRefundExceeds)
		case errors.Is(err, refundBooking.ErrPaymentFailed):
			handlers.RespondError(w, http.StatusPaymentRequired, msgPaymentFailed)
		case errors.Is(err, refundBooking.ErrPaymentProcessor):
			handlers.RespondError(w, http.StatusServiceUnavailable, msgProcessorUnavailable)
		case errors.Is(err, refundBooking.ErrIdempotencyKeyConflict):
			handlers.RespondConflict(w, msgIdempotencyConflict, "", "", "")
		case errors.Is(err, refundBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidBody)
		default:
			h.logger.Error("POST /bookings/{id}/refund - failed: booking_id=%s, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/refund - done: booking_id=%s, refund_id=%s", bookingID, result.Refund.ID)
	handlers.RespondJSON(w, http.StatusOK, &RefundResponse{
		RefundID:          result.Refund.ID.String(),
		PaymentID:         result.Refund.PaymentID.String(),
		Amount:            result.Refund.Amount,
		RemainingCaptured: result.RemainingCaptured,
		Replayed:          result.Replayed,
	})
}
