package finalize_booking

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	paymentsRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/payments"
	"github.com/anshddoshi27/Tithi-sub002/internal/integrations/paymentprocessor"
)

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

type bookingRepoMock struct {
	booking       *domain.Booking
	updatedStatus domain.BookingStatus
	updatedReason string
}

func (m *bookingRepoMock) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Booking, error) {
	return m.booking, nil
}

func (m *bookingRepoMock) UpdateStatus(ctx context.Context, tenantID string, id uuid.UUID, status domain.BookingStatus) error {
	m.updatedStatus = status
	return nil
}

func (m *bookingRepoMock) UpdateStatusWithReason(ctx context.Context, tenantID string, id uuid.UUID, status domain.BookingStatus, reason string) error {
	m.updatedStatus = status
	m.updatedReason = reason
	return nil
}

type paymentRepoMock struct {
	byKey   *domain.Payment
	auth    *domain.Payment
	authErr error

	created       *domain.Payment
	updatedStatus domain.PaymentStatus
}

func (m *paymentRepoMock) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	created := *payment
	created.ID = uuid.New()
	m.created = &created
	return &created, nil
}

func (m *paymentRepoMock) GetByIdempotencyKey(ctx context.Context, tenantID, key string) (*domain.Payment, error) {
	if m.byKey == nil {
		return nil, paymentsRepo.ErrPaymentNotFound
	}
	return m.byKey, nil
}

func (m *paymentRepoMock) GetByBookingAndPurpose(ctx context.Context, tenantID string, bookingID uuid.UUID, purpose domain.PaymentPurpose) (*domain.Payment, error) {
	if m.authErr != nil {
		return nil, m.authErr
	}
	if m.auth == nil {
		return nil, paymentsRepo.ErrPaymentNotFound
	}
	return m.auth, nil
}

func (m *paymentRepoMock) UpdateStatus(ctx context.Context, tenantID string, id uuid.UUID, status domain.PaymentStatus, providerRef string) error {
	m.updatedStatus = status
	return nil
}

type outboxRepoMock struct {
	events []*domain.OutboxEvent
}

func (m *outboxRepoMock) Append(ctx context.Context, event *domain.OutboxEvent) error {
	m.events = append(m.events, event)
	return nil
}

type processorMock struct {
	captureResult *paymentprocessor.ChargeResult
	captureErr    error
	feeResult     *paymentprocessor.ChargeResult
	feeErr        error

	capturedAmount int64
	capturedFee    int64
	feeAmount      int64
}

func (m *processorMock) Capture(ctx context.Context, tenantID, authRef string, amount, applicationFee int64, idempotencyKey string) (*paymentprocessor.ChargeResult, error) {
	m.capturedAmount = amount
	m.capturedFee = applicationFee
	if m.captureErr != nil {
		return nil, m.captureErr
	}
	return m.captureResult, nil
}

func (m *processorMock) ChargeFee(ctx context.Context, tenantID string, amount int64, description, idempotencyKey string) (*paymentprocessor.ChargeResult, error) {
	m.feeAmount = amount
	if m.feeErr != nil {
		return nil, m.feeErr
	}
	return m.feeResult, nil
}

type txManagerMock struct{}

func (txManagerMock) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func confirmedBooking() *domain.Booking {
	return &domain.Booking{
		ID:           uuid.New(),
		TenantID:     "tenant-1",
		Status:       domain.StatusCheckedIn,
		ServicePrice: 3000,
	}
}

func authorizedPayment(bookingID uuid.UUID) *domain.Payment {
	return &domain.Payment{
		ID:          uuid.New(),
		TenantID:    "tenant-1",
		BookingID:   bookingID,
		Purpose:     domain.PurposeAuthorization,
		Status:      domain.PaymentStatusAuthorized,
		Amount:      3000,
		ProviderRef: "auth-ref-1",
	}
}

func feePolicy() domain.FeePolicy {
	return domain.FeePolicy{
		PlatformFeePercent: 1.0,
		NoShowFeePercent:   15.0,
	}
}

func newTestUseCase(bookings *bookingRepoMock, payments *paymentRepoMock, outbox *outboxRepoMock, processor *processorMock) *UseCase {
	return NewUseCase(bookings, payments, outbox, processor, txManagerMock{}, feePolicy(), noopLogger{})
}

func request(bookingID uuid.UUID, action Action) *Request {
	return &Request{
		TenantID:       "tenant-1",
		BookingID:      bookingID,
		Action:         action,
		IdempotencyKey: "key-1",
	}
}

func TestExecute_Complete(t *testing.T) {
	booking := confirmedBooking()
	bookings := &bookingRepoMock{booking: booking}
	payments := &paymentRepoMock{auth: authorizedPayment(booking.ID)}
	outbox := &outboxRepoMock{}
	processor := &processorMock{captureResult: &paymentprocessor.ChargeResult{ProviderRef: "cap-ref-1"}}

	uc := newTestUseCase(bookings, payments, outbox, processor)

	resp, err := uc.Execute(context.Background(), request(booking.ID, ActionComplete))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, resp.Booking.Status)
	assert.Equal(t, domain.StatusCompleted, bookings.updatedStatus)

	// Захват полной суммы с комиссией платформы 1%
	assert.Equal(t, int64(3000), processor.capturedAmount)
	assert.Equal(t, int64(30), processor.capturedFee)

	require.NotNil(t, resp.Payment)
	assert.Equal(t, domain.PurposeCapture, resp.Payment.Purpose)
	assert.Equal(t, domain.PaymentStatusCaptured, resp.Payment.Status)

	// booking.completed + payment.captured
	require.Len(t, outbox.events, 2)
	assert.Equal(t, domain.EventBookingCompleted, outbox.events[0].EventType)
	assert.Equal(t, domain.EventPaymentCaptured, outbox.events[1].EventType)
}

func TestExecute_CompleteWithoutAuthorization(t *testing.T) {
	booking := confirmedBooking()
	uc := newTestUseCase(
		&bookingRepoMock{booking: booking},
		&paymentRepoMock{},
		&outboxRepoMock{},
		&processorMock{},
	)

	_, err := uc.Execute(context.Background(), request(booking.ID, ActionComplete))
	assert.ErrorIs(t, err, ErrNoAuthorizedPayment)
}

func TestExecute_NoShowFee(t *testing.T) {
	booking := confirmedBooking()
	bookings := &bookingRepoMock{booking: booking}
	payments := &paymentRepoMock{}
	outbox := &outboxRepoMock{}
	processor := &processorMock{feeResult: &paymentprocessor.ChargeResult{ProviderRef: "fee-ref-1"}}

	uc := newTestUseCase(bookings, payments, outbox, processor)

	resp, err := uc.Execute(context.Background(), request(booking.ID, ActionNoShow))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusNoShow, resp.Booking.Status)

	// 15% от 3000 = 450
	assert.Equal(t, int64(450), processor.feeAmount)
	require.NotNil(t, resp.Payment)
	assert.Equal(t, domain.PurposeNoShowFee, resp.Payment.Purpose)
}

func TestExecute_CancelWithoutFee(t *testing.T) {
	booking := confirmedBooking()
	bookings := &bookingRepoMock{booking: booking}
	outbox := &outboxRepoMock{}

	uc := newTestUseCase(bookings, &paymentRepoMock{}, outbox, &processorMock{})

	req := request(booking.ID, ActionCancel)
	req.Reason = "клиент попросил перенести"

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	// Комиссия за отмену не настроена: перехода без записи в леджере
	assert.Equal(t, domain.StatusCanceled, resp.Booking.Status)
	assert.Nil(t, resp.Payment)
	assert.Equal(t, req.Reason, bookings.updatedReason)
	require.Len(t, outbox.events, 1)
	assert.Equal(t, domain.EventBookingCanceled, outbox.events[0].EventType)
}

func TestExecute_InvalidTransition(t *testing.T) {
	for _, status := range []domain.BookingStatus{
		domain.StatusPending, domain.StatusCanceled, domain.StatusNoShow, domain.StatusFailed,
	} {
		booking := confirmedBooking()
		booking.Status = status

		uc := newTestUseCase(&bookingRepoMock{booking: booking}, &paymentRepoMock{}, &outboxRepoMock{}, &processorMock{})

		_, err := uc.Execute(context.Background(), request(booking.ID, ActionComplete))
		assert.ErrorIs(t, err, ErrInvalidStateTransition, "status %s", status)
	}
}

func TestExecute_RepeatOfTargetStatusIsReplay(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusCanceled

	uc := newTestUseCase(&bookingRepoMock{booking: booking}, &paymentRepoMock{}, &outboxRepoMock{}, &processorMock{})

	resp, err := uc.Execute(context.Background(), request(booking.ID, ActionCancel))
	require.NoError(t, err)
	assert.True(t, resp.Replayed)
}

func TestExecute_IdempotencyReplay(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = domain.StatusCompleted
	prior := &domain.Payment{
		ID:        uuid.New(),
		BookingID: booking.ID,
		Purpose:   domain.PurposeCapture,
		Status:    domain.PaymentStatusCaptured,
	}

	uc := newTestUseCase(&bookingRepoMock{booking: booking}, &paymentRepoMock{byKey: prior}, &outboxRepoMock{}, &processorMock{})

	resp, err := uc.Execute(context.Background(), request(booking.ID, ActionComplete))
	require.NoError(t, err)
	assert.True(t, resp.Replayed)
	assert.Equal(t, prior.ID, resp.Payment.ID)
}

func TestExecute_ReplayRecoversInterruptedTransition(t *testing.T) {
	// Списание прошло, но процесс упал до перевода статуса:
	// бронирование осталось checked_in при захваченном платеже
	booking := confirmedBooking()
	prior := &domain.Payment{
		ID:        uuid.New(),
		TenantID:  booking.TenantID,
		BookingID: booking.ID,
		Purpose:   domain.PurposeCapture,
		Status:    domain.PaymentStatusCaptured,
		Amount:    3000,
	}

	bookings := &bookingRepoMock{booking: booking}
	outbox := &outboxRepoMock{}
	processor := &processorMock{}

	uc := newTestUseCase(bookings, &paymentRepoMock{byKey: prior}, outbox, processor)

	resp, err := uc.Execute(context.Background(), request(booking.ID, ActionComplete))
	require.NoError(t, err)

	// Повтор доводит переход без второго похода в процессинг
	assert.True(t, resp.Replayed)
	assert.Equal(t, domain.StatusCompleted, resp.Booking.Status)
	assert.Equal(t, domain.StatusCompleted, bookings.updatedStatus)
	assert.Equal(t, prior.ID, resp.Payment.ID)
	assert.Zero(t, processor.capturedAmount)

	require.Len(t, outbox.events, 2)
	assert.Equal(t, domain.EventBookingCompleted, outbox.events[0].EventType)
	assert.Equal(t, domain.EventPaymentCaptured, outbox.events[1].EventType)
}

func TestExecute_IdempotencyKeyConflict(t *testing.T) {
	booking := confirmedBooking()
	prior := &domain.Payment{
		ID:        uuid.New(),
		BookingID: uuid.New(), // другое бронирование
		Status:    domain.PaymentStatusCaptured,
	}

	uc := newTestUseCase(&bookingRepoMock{booking: booking}, &paymentRepoMock{byKey: prior}, &outboxRepoMock{}, &processorMock{})

	_, err := uc.Execute(context.Background(), request(booking.ID, ActionComplete))
	assert.ErrorIs(t, err, ErrIdempotencyKeyConflict)
}

func TestExecute_ProcessorUnavailableLeavesBookingIntact(t *testing.T) {
	booking := confirmedBooking()
	bookings := &bookingRepoMock{booking: booking}
	payments := &paymentRepoMock{auth: authorizedPayment(booking.ID)}
	processor := &processorMock{captureErr: paymentprocessor.ErrProcessorUnavailable}

	uc := newTestUseCase(bookings, payments, &outboxRepoMock{}, processor)

	_, err := uc.Execute(context.Background(), request(booking.ID, ActionComplete))
	assert.ErrorIs(t, err, ErrPaymentProcessor)

	// Транзиентный сбой: ни статуса, ни записи в леджере
	assert.Empty(t, bookings.updatedStatus)
	assert.Nil(t, payments.created)
}

func TestExecute_DeclineRecordsFailedAttempt(t *testing.T) {
	booking := confirmedBooking()
	bookings := &bookingRepoMock{booking: booking}
	payments := &paymentRepoMock{auth: authorizedPayment(booking.ID)}
	outbox := &outboxRepoMock{}
	processor := &processorMock{captureErr: paymentprocessor.ErrPaymentDeclined}

	uc := newTestUseCase(bookings, payments, outbox, processor)

	_, err := uc.Execute(context.Background(), request(booking.ID, ActionComplete))
	assert.ErrorIs(t, err, ErrPaymentFailed)

	// Статус бронирования не тронут, провал зафиксирован в леджере
	assert.Empty(t, bookings.updatedStatus)
	require.NotNil(t, payments.created)
	assert.Equal(t, domain.PaymentStatusFailed, payments.created.Status)
	require.Len(t, outbox.events, 1)
	assert.Equal(t, domain.EventPaymentFailed, outbox.events[0].EventType)
}
