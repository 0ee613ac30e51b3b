package finalize_booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	bookingsRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/bookings"
	paymentsRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/payments"
	processorClient "github.com/anshddoshi27/Tithi-sub002/internal/integrations/paymentprocessor"
)

// UseCase use case финализирующих действий над бронированием:
// Complete (списание полной суммы с комиссией платформы), Cancel и NoShow
// (настраиваемая комиссия). Недопустимый переход отклоняется без побочных
// эффектов; повтор с тем же ключом после успеха возвращает прежний результат.
type UseCase struct {
	bookingRepo BookingRepository
	paymentRepo PaymentRepository
	outboxRepo  OutboxRepository
	processor   ProcessorClient
	txManager   TxManager
	feePolicy   domain.FeePolicy
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	outboxRepo OutboxRepository,
	processor ProcessorClient,
	txManager TxManager,
	feePolicy domain.FeePolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		processor:   processor,
		txManager:   txManager,
		feePolicy:   feePolicy,
		logger:      logger,
	}
}

// Execute выполняет финализирующее действие
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("FinalizeBooking: tenant=%s, booking=%s, action=%s, key=%s",
		req.TenantID, req.BookingID, req.Action, req.IdempotencyKey)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("FinalizeBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверка idempotency-токена
	prior, err := uc.paymentRepo.GetByIdempotencyKey(ctx, req.TenantID, req.IdempotencyKey)
	if err != nil && !errors.Is(err, paymentsRepo.ErrPaymentNotFound) {
		uc.logger.Error("FinalizeBooking: idempotency lookup failed: %v", err)
		return nil, fmt.Errorf("%w: idempotency lookup failed: %v", ErrInternal, err)
	}
	if prior != nil {
		if prior.BookingID != req.BookingID {
			return nil, ErrIdempotencyKeyConflict
		}
		// Успешную попытку реплеим, провалившуюся переигрываем с тем же ключом
		if prior.Status != domain.PaymentStatusFailed {
			booking, err := uc.getBooking(ctx, req)
			if err != nil {
				return nil, err
			}
			// Деньги списаны, но процесс упал до перевода статуса: повтор
			// обязан довести переход, иначе бронирование застрянет навсегда
			if prior.Status == domain.PaymentStatusCaptured && booking.Status != req.Action.targetStatus() {
				if !booking.CanSettle() {
					return nil, ErrInvalidStateTransition
				}
				if err := uc.finalizeStatus(ctx, req, booking, prior); err != nil {
					uc.logger.Error("FinalizeBooking: transaction failed: %v", err)
					return nil, err
				}
				uc.logger.Info("FinalizeBooking: recovered interrupted %s for booking id=%s", req.Action, booking.ID)
				return &Response{Booking: booking, Payment: prior, Replayed: true}, nil
			}
			uc.logger.Info("FinalizeBooking: replay of key=%s, payment id=%s", req.IdempotencyKey, prior.ID)
			return &Response{Booking: booking, Payment: prior, Replayed: true}, nil
		}
	}

	// 3. Загружаем бронирование и проверяем допустимость перехода
	booking, err := uc.getBooking(ctx, req)
	if err != nil {
		return nil, err
	}

	// Повтор действия, уже переведшего бронирование в целевой статус
	// и не оставившего записи в леджере (комиссия не настроена)
	if booking.Status == req.Action.targetStatus() {
		uc.logger.Info("FinalizeBooking: booking id=%s already %s", booking.ID, booking.Status)
		return &Response{Booking: booking, Replayed: true}, nil
	}

	if !booking.CanSettle() {
		uc.logger.Warn("FinalizeBooking: booking id=%s has status %s, %s not allowed",
			booking.ID, booking.Status, req.Action)
		return nil, ErrInvalidStateTransition
	}

	// 4. Выполняем списание согласно действию
	var payment *domain.Payment
	switch req.Action {
	case ActionComplete:
		payment, err = uc.capture(ctx, req, booking, prior)
	case ActionCancel, ActionNoShow:
		payment, err = uc.chargeFee(ctx, req, booking, prior)
	}
	if err != nil {
		return nil, err
	}

	// 5. Переводим бронирование и пишем события одной транзакцией
	if err := uc.finalizeStatus(ctx, req, booking, payment); err != nil {
		uc.logger.Error("FinalizeBooking: transaction failed: %v", err)
		return nil, err
	}

	uc.logger.Info("FinalizeBooking: booking id=%s finalized as %s", booking.ID, booking.Status)

	return &Response{Booking: booking, Payment: payment}, nil
}

// finalizeStatus переводит бронирование в целевой статус действия и пишет
// события жизненного цикла одной транзакцией
func (uc *UseCase) finalizeStatus(ctx context.Context, req *Request, booking *domain.Booking, payment *domain.Payment) error {
	return uc.txManager.Do(ctx, func(txCtx context.Context) error {
		target := req.Action.targetStatus()

		if req.Action == ActionCancel && req.Reason != "" {
			if err := uc.bookingRepo.UpdateStatusWithReason(txCtx, req.TenantID, booking.ID, target, req.Reason); err != nil {
				return fmt.Errorf("%w: failed to update booking status: %v", ErrInternal, err)
			}
			booking.CancellationReason = &req.Reason
		} else {
			if err := uc.bookingRepo.UpdateStatus(txCtx, req.TenantID, booking.ID, target); err != nil {
				return fmt.Errorf("%w: failed to update booking status: %v", ErrInternal, err)
			}
		}
		booking.Status = target

		if err := uc.appendBookingEvent(txCtx, booking, req.Action.eventType()); err != nil {
			return err
		}
		if payment != nil && req.Action == ActionComplete {
			if err := uc.appendPaymentEvent(txCtx, payment, domain.EventPaymentCaptured); err != nil {
				return err
			}
		}

		return nil
	})
}

func (uc *UseCase) getBooking(ctx context.Context, req *Request) (*domain.Booking, error) {
	booking, err := uc.bookingRepo.GetByID(ctx, req.TenantID, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingsRepo.ErrBookingNotFound) {
			uc.logger.Warn("FinalizeBooking: booking id=%s not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("FinalizeBooking: failed to get booking id=%s: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}
	return booking, nil
}

// capture списывает полную авторизованную сумму с комиссией платформы
func (uc *UseCase) capture(ctx context.Context, req *Request, booking *domain.Booking, prior *domain.Payment) (*domain.Payment, error) {
	auth, err := uc.paymentRepo.GetByBookingAndPurpose(ctx, req.TenantID, booking.ID, domain.PurposeAuthorization)
	if err != nil {
		if errors.Is(err, paymentsRepo.ErrPaymentNotFound) {
			return nil, ErrNoAuthorizedPayment
		}
		return nil, fmt.Errorf("%w: failed to get authorization: %v", ErrInternal, err)
	}
	if auth.Status != domain.PaymentStatusAuthorized {
		return nil, ErrNoAuthorizedPayment
	}

	fee := uc.feePolicy.PlatformFee(booking.ServicePrice)

	result, err := uc.processor.Capture(ctx, req.TenantID, auth.ProviderRef, booking.ServicePrice, fee, req.IdempotencyKey)
	if err != nil {
		return nil, uc.recordChargeFailure(ctx, req, booking, prior, domain.PurposeCapture, booking.ServicePrice, fee, err)
	}

	payment := &domain.Payment{
		TenantID:       req.TenantID,
		BookingID:      booking.ID,
		Purpose:        domain.PurposeCapture,
		Status:         domain.PaymentStatusCaptured,
		Amount:         booking.ServicePrice,
		ApplicationFee: fee,
		IdempotencyKey: req.IdempotencyKey,
		ProviderRef:    result.ProviderRef,
	}

	return uc.upsertPayment(ctx, req.TenantID, prior, payment)
}

// chargeFee списывает настроенную комиссию за отмену или неявку.
// Нулевая комиссия - действие без записи в леджере
func (uc *UseCase) chargeFee(ctx context.Context, req *Request, booking *domain.Booking, prior *domain.Payment) (*domain.Payment, error) {
	var fee int64
	var description string
	if req.Action == ActionNoShow {
		fee = uc.feePolicy.NoShowFee(booking.ServicePrice)
		description = "no-show fee"
	} else {
		fee = uc.feePolicy.CancellationFee(booking.ServicePrice)
		description = "cancellation fee"
	}

	if fee <= 0 {
		return nil, nil
	}

	result, err := uc.processor.ChargeFee(ctx, req.TenantID, fee, description, req.IdempotencyKey)
	if err != nil {
		return nil, uc.recordChargeFailure(ctx, req, booking, prior, req.Action.feePurpose(), fee, 0, err)
	}

	payment := &domain.Payment{
		TenantID:       req.TenantID,
		BookingID:      booking.ID,
		Purpose:        req.Action.feePurpose(),
		Status:         domain.PaymentStatusCaptured,
		Amount:         fee,
		IdempotencyKey: req.IdempotencyKey,
		ProviderRef:    result.ProviderRef,
	}

	return uc.upsertPayment(ctx, req.TenantID, prior, payment)
}

// recordChargeFailure фиксирует неудачную попытку списания в леджере.
// Статус бронирования не меняется: повтор с тем же ключом переиграет
// списание тем же ключом процессинга
func (uc *UseCase) recordChargeFailure(ctx context.Context, req *Request, booking *domain.Booking, prior *domain.Payment, purpose domain.PaymentPurpose, amount, fee int64, procErr error) error {
	if errors.Is(procErr, processorClient.ErrProcessorUnavailable) {
		uc.logger.Warn("FinalizeBooking: processor unavailable for booking id=%s: %v", booking.ID, procErr)
		return fmt.Errorf("%w: %v", ErrPaymentProcessor, procErr)
	}
	if !errors.Is(procErr, processorClient.ErrPaymentDeclined) {
		uc.logger.Error("FinalizeBooking: processor call failed: %v", procErr)
		return fmt.Errorf("%w: processor call failed: %v", ErrInternal, procErr)
	}

	uc.logger.Warn("FinalizeBooking: charge declined for booking id=%s: %v", booking.ID, procErr)

	failed := &domain.Payment{
		TenantID:       req.TenantID,
		BookingID:      booking.ID,
		Purpose:        purpose,
		Status:         domain.PaymentStatusFailed,
		Amount:         amount,
		ApplicationFee: fee,
		IdempotencyKey: req.IdempotencyKey,
	}

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		payment, err := uc.upsertPayment(txCtx, req.TenantID, prior, failed)
		if err != nil {
			return err
		}
		return uc.appendPaymentEvent(txCtx, payment, domain.EventPaymentFailed)
	})
	if err != nil {
		uc.logger.Error("FinalizeBooking: failed to record charge failure: %v", err)
		return err
	}

	return ErrPaymentFailed
}

// upsertPayment вставляет запись леджера либо обновляет провалившуюся
// попытку с тем же idempotency-токеном
func (uc *UseCase) upsertPayment(ctx context.Context, tenantID string, prior, payment *domain.Payment) (*domain.Payment, error) {
	if prior != nil {
		if err := uc.paymentRepo.UpdateStatus(ctx, tenantID, prior.ID, payment.Status, payment.ProviderRef); err != nil {
			return nil, fmt.Errorf("%w: failed to update payment: %v", ErrInternal, err)
		}
		prior.Status = payment.Status
		if payment.ProviderRef != "" {
			prior.ProviderRef = payment.ProviderRef
		}
		return prior, nil
	}

	created, err := uc.paymentRepo.Create(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create payment: %v", ErrInternal, err)
	}
	return created, nil
}

func (uc *UseCase) appendBookingEvent(ctx context.Context, booking *domain.Booking, eventType string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"booking_id": booking.ID,
		"status":     booking.Status,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event payload: %v", ErrInternal, err)
	}

	event := &domain.OutboxEvent{
		TenantID:      booking.TenantID,
		EventType:     eventType,
		AggregateType: "booking",
		AggregateID:   booking.ID,
		Payload:       payload,
	}

	if err := uc.outboxRepo.Append(ctx, event); err != nil {
		return fmt.Errorf("%w: failed to append outbox event: %v", ErrInternal, err)
	}
	return nil
}

func (uc *UseCase) appendPaymentEvent(ctx context.Context, payment *domain.Payment, eventType string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"payment_id": payment.ID,
		"booking_id": payment.BookingID,
		"purpose":    payment.Purpose,
		"status":     payment.Status,
		"amount":     payment.Amount,
		"fee":        payment.ApplicationFee,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event payload: %v", ErrInternal, err)
	}

	event := &domain.OutboxEvent{
		TenantID:      payment.TenantID,
		EventType:     eventType,
		AggregateType: "payment",
		AggregateID:   payment.ID,
		Payload:       payload,
	}

	if err := uc.outboxRepo.Append(ctx, event); err != nil {
		return fmt.Errorf("%w: failed to append outbox event: %v", ErrInternal, err)
	}
	return nil
}
