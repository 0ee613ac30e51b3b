package refund_booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	bookingsRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/bookings"
	paymentsRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/payments"
	processorClient "github.com/anshddoshi27/Tithi-sub002/internal/integrations/paymentprocessor"
)

// UseCase use case возврата по завершённому бронированию.
// Возврат ссылается на захваченный платёж и уменьшает его эффективный
// остаток; статус бронирования не меняется никогда.
type UseCase struct {
	bookingRepo BookingRepository
	paymentRepo PaymentRepository
	outboxRepo  OutboxRepository
	processor   ProcessorClient
	txManager   TxManager
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	outboxRepo OutboxRepository,
	processor ProcessorClient,
	txManager TxManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		processor:   processor,
		txManager:   txManager,
		logger:      logger,
	}
}

// Execute выполняет use case возврата
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RefundBooking: tenant=%s, booking=%s, amount=%d, key=%s",
		req.TenantID, req.BookingID, req.Amount, req.IdempotencyKey)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RefundBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверка idempotency-токена: повтор возвращает прежний возврат
	priorRefund, err := uc.paymentRepo.GetRefundByIdempotencyKey(ctx, req.TenantID, req.IdempotencyKey)
	if err != nil && !errors.Is(err, paymentsRepo.ErrRefundNotFound) {
		uc.logger.Error("RefundBooking: idempotency lookup failed: %v", err)
		return nil, fmt.Errorf("%w: idempotency lookup failed: %v", ErrInternal, err)
	}
	if priorRefund != nil {
		if priorRefund.BookingID != req.BookingID {
			return nil, ErrIdempotencyKeyConflict
		}
		remaining, err := uc.remainingCaptured(ctx, req.TenantID, priorRefund.PaymentID)
		if err != nil {
			return nil, err
		}
		uc.logger.Info("RefundBooking: replay of key=%s, refund id=%s", req.IdempotencyKey, priorRefund.ID)
		return &Response{Refund: priorRefund, RemainingCaptured: remaining, Replayed: true}, nil
	}

	// 3. Загружаем бронирование: возврат возможен только из completed
	booking, err := uc.bookingRepo.GetByID(ctx, req.TenantID, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingsRepo.ErrBookingNotFound) {
			uc.logger.Warn("RefundBooking: booking id=%s not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RefundBooking: failed to get booking id=%s: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}
	if !booking.CanRefund() {
		uc.logger.Warn("RefundBooking: booking id=%s has status %s, refund not allowed", booking.ID, booking.Status)
		return nil, ErrInvalidStateTransition
	}

	// 4. Находим захваченный платёж и проверяем остаток
	captured, err := uc.paymentRepo.GetByBookingAndPurpose(ctx, req.TenantID, booking.ID, domain.PurposeCapture)
	if err != nil {
		if errors.Is(err, paymentsRepo.ErrPaymentNotFound) {
			return nil, ErrNoCapturedPayment
		}
		return nil, fmt.Errorf("%w: failed to get captured payment: %v", ErrInternal, err)
	}
	if captured.Status != domain.PaymentStatusCaptured && captured.Status != domain.PaymentStatusRefunded {
		return nil, ErrNoCapturedPayment
	}

	refundedTotal, err := uc.paymentRepo.SumRefundsByPaymentID(ctx, req.TenantID, captured.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sum refunds: %v", ErrInternal, err)
	}

	remaining := captured.Amount - refundedTotal
	amount := req.Amount
	if amount == 0 {
		amount = remaining
	}
	if amount > remaining || remaining <= 0 {
		uc.logger.Warn("RefundBooking: amount %d exceeds remaining %d for payment id=%s", amount, remaining, captured.ID)
		return nil, ErrRefundExceedsCaptured
	}

	// 5. Возврат в процессинге (вне транзакции, внешний вызов)
	result, err := uc.processor.Refund(ctx, req.TenantID, captured.ProviderRef, amount, req.IdempotencyKey)
	if err != nil {
		switch {
		case errors.Is(err, processorClient.ErrProcessorUnavailable):
			uc.logger.Warn("RefundBooking: processor unavailable: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrPaymentProcessor, err)
		case errors.Is(err, processorClient.ErrPaymentDeclined):
			uc.logger.Warn("RefundBooking: refund declined for payment id=%s: %v", captured.ID, err)
			return nil, ErrPaymentFailed
		default:
			uc.logger.Error("RefundBooking: processor call failed: %v", err)
			return nil, fmt.Errorf("%w: processor call failed: %v", ErrInternal, err)
		}
	}

	refund := &domain.Refund{
		TenantID:       req.TenantID,
		PaymentID:      captured.ID,
		BookingID:      booking.ID,
		Amount:         amount,
		IdempotencyKey: req.IdempotencyKey,
		ProviderRef:    result.ProviderRef,
	}

	// 6. Фиксируем возврат и событие одной транзакцией
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		created, err := uc.paymentRepo.CreateRefund(txCtx, refund)
		if err != nil {
			if errors.Is(err, paymentsRepo.ErrDuplicateIdempotencyKey) {
				// Гонка конкурентных повторов: победитель уже записал возврат
				return errDuplicateKeyRace
			}
			return fmt.Errorf("%w: failed to create refund: %v", ErrInternal, err)
		}
		refund = created

		// Полный возврат переводит захваченный платёж в refunded
		if amount == remaining {
			if err := uc.paymentRepo.UpdateStatus(txCtx, req.TenantID, captured.ID, domain.PaymentStatusRefunded, ""); err != nil {
				return fmt.Errorf("%w: failed to update payment status: %v", ErrInternal, err)
			}
		}

		return uc.appendRefundEvent(txCtx, refund)
	})
	if err != nil {
		if errors.Is(err, errDuplicateKeyRace) {
			return uc.replayAfterRace(ctx, req)
		}
		uc.logger.Error("RefundBooking: transaction failed: %v", err)
		return nil, err
	}

	uc.logger.Info("RefundBooking: refund id=%s of %d for booking id=%s, remaining=%d",
		refund.ID, amount, booking.ID, remaining-amount)

	return &Response{Refund: refund, RemainingCaptured: remaining - amount}, nil
}

// errDuplicateKeyRace внутренний маркер конкурентной вставки того же токена
var errDuplicateKeyRace = errors.New("refund_booking: concurrent duplicate idempotency key")

func (uc *UseCase) replayAfterRace(ctx context.Context, req *Request) (*Response, error) {
	winner, err := uc.paymentRepo.GetRefundByIdempotencyKey(ctx, req.TenantID, req.IdempotencyKey)
	if err != nil {
		uc.logger.Error("RefundBooking: post-race idempotency lookup failed: %v", err)
		return nil, fmt.Errorf("%w: post-race idempotency lookup failed: %v", ErrInternal, err)
	}
	if winner.BookingID != req.BookingID {
		return nil, ErrIdempotencyKeyConflict
	}

	remaining, err := uc.remainingCaptured(ctx, req.TenantID, winner.PaymentID)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("RefundBooking: concurrent replay of key=%s, refund id=%s", req.IdempotencyKey, winner.ID)
	return &Response{Refund: winner, RemainingCaptured: remaining, Replayed: true}, nil
}

// remainingCaptured считает эффективный захваченный остаток платежа
func (uc *UseCase) remainingCaptured(ctx context.Context, tenantID string, paymentID uuid.UUID) (int64, error) {
	captured, err := uc.paymentRepo.GetByID(ctx, tenantID, paymentID)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get captured payment: %v", ErrInternal, err)
	}

	refundedTotal, err := uc.paymentRepo.SumRefundsByPaymentID(ctx, tenantID, paymentID)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to sum refunds: %v", ErrInternal, err)
	}

	return captured.Amount - refundedTotal, nil
}

func (uc *UseCase) appendRefundEvent(ctx context.Context, refund *domain.Refund) error {
	payload, err := json.Marshal(map[string]interface{}{
		"refund_id":  refund.ID,
		"payment_id": refund.PaymentID,
		"booking_id": refund.BookingID,
		"amount":     refund.Amount,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event payload: %v", ErrInternal, err)
	}

	event := &domain.OutboxEvent{
		TenantID:      refund.TenantID,
		EventType:     domain.EventPaymentRefunded,
		AggregateType: "payment",
		AggregateID:   refund.PaymentID,
		Payload:       payload,
	}

	if err := uc.outboxRepo.Append(ctx, event); err != nil {
		return fmt.Errorf("%w: failed to append outbox event: %v", ErrInternal, err)
	}
	return nil
}
