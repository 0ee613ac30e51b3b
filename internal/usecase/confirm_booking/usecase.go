package confirm_booking

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

// UseCase use case подтверждения бронирования: авторизация полной суммы
// на карте клиента без списания. Списание происходит только при Complete.
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

// Execute выполняет use case подтверждения бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ConfirmBooking: tenant=%s, booking=%s, key=%s", req.TenantID, req.BookingID, req.IdempotencyKey)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ConfirmBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверка idempotency-токена: успешный повтор возвращает прежний результат
	prior, err := uc.paymentRepo.GetByIdempotencyKey(ctx, req.TenantID, req.IdempotencyKey)
	if err != nil && !errors.Is(err, paymentsRepo.ErrPaymentNotFound) {
		uc.logger.Error("ConfirmBooking: idempotency lookup failed: %v", err)
		return nil, fmt.Errorf("%w: idempotency lookup failed: %v", ErrInternal, err)
	}
	if prior != nil {
		if prior.BookingID != req.BookingID || prior.Purpose != domain.PurposeAuthorization {
			return nil, ErrIdempotencyKeyConflict
		}
		// Провалившаяся попытка переигрывается с тем же ключом процессинга,
		// успешная или ожидающая действия - реплеится
		if prior.Status != domain.PaymentStatusFailed {
			booking, err := uc.bookingRepo.GetByID(ctx, req.TenantID, req.BookingID)
			if err != nil {
				return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
			}
			uc.logger.Info("ConfirmBooking: replay of key=%s, payment id=%s", req.IdempotencyKey, prior.ID)
			return &Response{Booking: booking, Payment: prior, Replayed: true}, nil
		}
	}

	// 3. Загружаем бронирование и проверяем допустимость перехода
	booking, err := uc.bookingRepo.GetByID(ctx, req.TenantID, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingsRepo.ErrBookingNotFound) {
			uc.logger.Warn("ConfirmBooking: booking id=%s not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("ConfirmBooking: failed to get booking id=%s: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if !booking.CanConfirm() {
		uc.logger.Warn("ConfirmBooking: booking id=%s has status %s, cannot confirm", booking.ID, booking.Status)
		return nil, ErrInvalidStateTransition
	}

	// 4. Авторизация в процессинге (вне транзакции, внешний вызов).
	// Повтор после сбоя идёт с тем же ключом: провайдер не создаст вторую операцию
	result, err := uc.processor.Authorize(ctx, req.TenantID, booking.ServicePrice, req.IdempotencyKey)
	if err != nil {
		return uc.failBooking(ctx, req, booking, prior, err)
	}

	// 5. Фиксируем платёж, статус и событие одной транзакцией
	payment := &domain.Payment{
		TenantID:       req.TenantID,
		BookingID:      booking.ID,
		Purpose:        domain.PurposeAuthorization,
		Amount:         booking.ServicePrice,
		IdempotencyKey: req.IdempotencyKey,
		ProviderRef:    result.ProviderRef,
	}

	confirmed := result.Status == processorClient.StatusAuthorized
	if confirmed {
		payment.Status = domain.PaymentStatusAuthorized
	} else {
		// requires_action пробрасывается как есть: бронирование остаётся
		// pending, пока клиент не завершит подтверждение на стороне провайдера
		payment.Status = domain.PaymentStatusRequiresAction
	}

	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		payment, err = uc.upsertPayment(txCtx, req.TenantID, prior, payment)
		if err != nil {
			return err
		}

		if confirmed {
			if err := uc.bookingRepo.UpdateStatus(txCtx, req.TenantID, booking.ID, domain.StatusConfirmed); err != nil {
				return fmt.Errorf("%w: failed to update booking status: %v", ErrInternal, err)
			}
			booking.Status = domain.StatusConfirmed

			if err := uc.appendEvent(txCtx, booking, domain.EventBookingConfirmed); err != nil {
				return err
			}
			if err := uc.appendPaymentEvent(txCtx, payment, domain.EventPaymentAuthorized); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		uc.logger.Error("ConfirmBooking: transaction failed: %v", err)
		return nil, err
	}

	uc.logger.Info("ConfirmBooking: booking id=%s status=%s, payment id=%s status=%s",
		booking.ID, booking.Status, payment.ID, payment.Status)

	return &Response{Booking: booking, Payment: payment}, nil
}

// failBooking обрабатывает отказ процессинга: терминальный отказ и исчерпание
// повторов переводят платёж и бронирование в failed - никакой двусмысленности
func (uc *UseCase) failBooking(ctx context.Context, req *Request, booking *domain.Booking, prior *domain.Payment, procErr error) (*Response, error) {
	if !errors.Is(procErr, processorClient.ErrPaymentDeclined) && !errors.Is(procErr, processorClient.ErrProcessorUnavailable) {
		uc.logger.Error("ConfirmBooking: processor call failed: %v", procErr)
		return nil, fmt.Errorf("%w: processor call failed: %v", ErrInternal, procErr)
	}

	uc.logger.Warn("ConfirmBooking: authorization failed for booking id=%s: %v", booking.ID, procErr)

	failed := &domain.Payment{
		TenantID:       req.TenantID,
		BookingID:      booking.ID,
		Purpose:        domain.PurposeAuthorization,
		Status:         domain.PaymentStatusFailed,
		Amount:         booking.ServicePrice,
		IdempotencyKey: req.IdempotencyKey,
	}

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		if _, err = uc.upsertPayment(txCtx, req.TenantID, prior, failed); err != nil {
			return err
		}

		if err := uc.bookingRepo.UpdateStatus(txCtx, req.TenantID, booking.ID, domain.StatusFailed); err != nil {
			return fmt.Errorf("%w: failed to update booking status: %v", ErrInternal, err)
		}
		booking.Status = domain.StatusFailed

		if err := uc.appendEvent(txCtx, booking, domain.EventBookingFailed); err != nil {
			return err
		}
		return uc.appendPaymentEvent(txCtx, failed, domain.EventPaymentFailed)
	})
	if err != nil {
		uc.logger.Error("ConfirmBooking: failed to record payment failure: %v", err)
		return nil, err
	}

	return nil, ErrPaymentFailed
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

func (uc *UseCase) appendEvent(ctx context.Context, booking *domain.Booking, eventType string) error {
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
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event payload: %v", ErrInternal, err)
	}

	aggregateID := payment.ID
	if aggregateID == uuid.Nil {
		aggregateID = payment.BookingID
	}

	event := &domain.OutboxEvent{
		TenantID:      payment.TenantID,
		EventType:     eventType,
		AggregateType: "payment",
		AggregateID:   aggregateID,
		Payload:       payload,
	}

	if err := uc.outboxRepo.Append(ctx, event); err != nil {
		return fmt.Errorf("%w: failed to append outbox event: %v", ErrInternal, err)
	}
	return nil
}
