package refund_booking

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	bookingsRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/bookings"
	paymentsRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/payments"
	processorClient "github.com/anshddoshi27/Tithi-sub002/internal/integrations/paymentprocessor"
)

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

type bookingRepoMock struct {
	booking *domain.Booking
}

func (m *bookingRepoMock) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Booking, error) {
	if m.booking == nil {
		return nil, bookingsRepo.ErrBookingNotFound
	}
	return m.booking, nil
}

type paymentRepoMock struct {
	captured      *domain.Payment
	priorRefund   *domain.Refund
	refundedTotal int64

	createdRefund   *domain.Refund
	updatedStatus   domain.PaymentStatus
	statusUpdated   bool
	createRefundErr error
}

func (m *paymentRepoMock) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Payment, error) {
	if m.captured == nil {
		return nil, paymentsRepo.ErrPaymentNotFound
	}
	return m.captured, nil
}

func (m *paymentRepoMock) GetByBookingAndPurpose(ctx context.Context, tenantID string, bookingID uuid.UUID, purpose domain.PaymentPurpose) (*domain.Payment, error) {
	if m.captured == nil {
		return nil, paymentsRepo.ErrPaymentNotFound
	}
	return m.captured, nil
}

func (m *paymentRepoMock) UpdateStatus(ctx context.Context, tenantID string, id uuid.UUID, status domain.PaymentStatus, providerRef string) error {
	m.updatedStatus = status
	m.statusUpdated = true
	return nil
}

func (m *paymentRepoMock) CreateRefund(ctx context.Context, refund *domain.Refund) (*domain.Refund, error) {
	if m.createRefundErr != nil {
		return nil, m.createRefundErr
	}
	created := *refund
	created.ID = uuid.New()
	m.createdRefund = &created
	return &created, nil
}

func (m *paymentRepoMock) GetRefundByIdempotencyKey(ctx context.Context, tenantID string, key string) (*domain.Refund, error) {
	if m.priorRefund == nil {
		return nil, paymentsRepo.ErrRefundNotFound
	}
	return m.priorRefund, nil
}

func (m *paymentRepoMock) SumRefundsByPaymentID(ctx context.Context, tenantID string, paymentID uuid.UUID) (int64, error) {
	return m.refundedTotal, nil
}

type outboxRepoMock struct {
	events []*domain.OutboxEvent
}

func (m *outboxRepoMock) Append(ctx context.Context, event *domain.OutboxEvent) error {
	m.events = append(m.events, event)
	return nil
}

type processorMock struct {
	refundedAmount int64
	err            error
}

func (m *processorMock) Refund(ctx context.Context, tenantID string, chargeRef string, amount int64, idempotencyKey string) (*processorClient.ChargeResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.refundedAmount = amount
	return &processorClient.ChargeResult{ProviderRef: "re_1", Status: processorClient.StatusCaptured}, nil
}

type txManagerMock struct{}

func (txManagerMock) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func completedBooking() *domain.Booking {
	return &domain.Booking{
		ID:       uuid.New(),
		TenantID: "tenant-1",
		Status:   domain.StatusCompleted,
	}
}

func capturedPayment(bookingID uuid.UUID, amount int64) *domain.Payment {
	return &domain.Payment{
		ID:          uuid.New(),
		TenantID:    "tenant-1",
		BookingID:   bookingID,
		Purpose:     domain.PurposeCapture,
		Status:      domain.PaymentStatusCaptured,
		Amount:      amount,
		ProviderRef: "ch_1",
	}
}

func refundRequest(bookingID uuid.UUID, amount int64) *Request {
	return &Request{
		TenantID:       "tenant-1",
		BookingID:      bookingID,
		Amount:         amount,
		IdempotencyKey: "refund-key-1",
	}
}

func TestExecute_PartialRefund(t *testing.T) {
	booking := completedBooking()
	payments := &paymentRepoMock{captured: capturedPayment(booking.ID, 3000)}
	outbox := &outboxRepoMock{}
	processor := &processorMock{}

	uc := NewUseCase(&bookingRepoMock{booking: booking}, payments, outbox, processor, txManagerMock{}, noopLogger{})

	resp, err := uc.Execute(context.Background(), refundRequest(booking.ID, 1000))
	require.NoError(t, err)
	assert.False(t, resp.Replayed)
	assert.Equal(t, int64(1000), resp.Refund.Amount)
	assert.Equal(t, int64(2000), resp.RemainingCaptured)
	assert.Equal(t, int64(1000), processor.refundedAmount)

	// Частичный возврат не трогает статус платежа
	assert.False(t, payments.statusUpdated)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, domain.EventPaymentRefunded, outbox.events[0].EventType)
}

func TestExecute_FullRefundByDefault(t *testing.T) {
	booking := completedBooking()
	payments := &paymentRepoMock{captured: capturedPayment(booking.ID, 3000), refundedTotal: 1000}
	processor := &processorMock{}

	uc := NewUseCase(&bookingRepoMock{booking: booking}, payments, &outboxRepoMock{}, processor, txManagerMock{}, noopLogger{})

	// Amount = 0 возвращает весь остаток: 3000 - 1000 = 2000
	resp, err := uc.Execute(context.Background(), refundRequest(booking.ID, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(2000), resp.Refund.Amount)
	assert.Equal(t, int64(0), resp.RemainingCaptured)

	// Полный возврат переводит платёж в refunded
	assert.True(t, payments.statusUpdated)
	assert.Equal(t, domain.PaymentStatusRefunded, payments.updatedStatus)
}

func TestExecute_RefundExceedsCaptured(t *testing.T) {
	booking := completedBooking()
	payments := &paymentRepoMock{captured: capturedPayment(booking.ID, 3000), refundedTotal: 2500}

	uc := NewUseCase(&bookingRepoMock{booking: booking}, payments, &outboxRepoMock{}, &processorMock{}, txManagerMock{}, noopLogger{})

	_, err := uc.Execute(context.Background(), refundRequest(booking.ID, 1000))
	assert.ErrorIs(t, err, ErrRefundExceedsCaptured)
}

func TestExecute_NothingLeftToRefund(t *testing.T) {
	booking := completedBooking()
	payments := &paymentRepoMock{captured: capturedPayment(booking.ID, 3000), refundedTotal: 3000}

	uc := NewUseCase(&bookingRepoMock{booking: booking}, payments, &outboxRepoMock{}, &processorMock{}, txManagerMock{}, noopLogger{})

	_, err := uc.Execute(context.Background(), refundRequest(booking.ID, 0))
	assert.ErrorIs(t, err, ErrRefundExceedsCaptured)
}

func TestExecute_RefundRequiresCompletedBooking(t *testing.T) {
	for _, status := range []domain.BookingStatus{
		domain.StatusPending, domain.StatusConfirmed, domain.StatusCheckedIn, domain.StatusCanceled,
	} {
		t.Run(string(status), func(t *testing.T) {
			booking := completedBooking()
			booking.Status = status

			uc := NewUseCase(&bookingRepoMock{booking: booking},
				&paymentRepoMock{captured: capturedPayment(booking.ID, 3000)},
				&outboxRepoMock{}, &processorMock{}, txManagerMock{}, noopLogger{})

			_, err := uc.Execute(context.Background(), refundRequest(booking.ID, 100))
			assert.ErrorIs(t, err, ErrInvalidStateTransition)
		})
	}
}

func TestExecute_NoCapturedPayment(t *testing.T) {
	booking := completedBooking()

	t.Run("missing capture row", func(t *testing.T) {
		uc := NewUseCase(&bookingRepoMock{booking: booking}, &paymentRepoMock{},
			&outboxRepoMock{}, &processorMock{}, txManagerMock{}, noopLogger{})

		_, err := uc.Execute(context.Background(), refundRequest(booking.ID, 100))
		assert.ErrorIs(t, err, ErrNoCapturedPayment)
	})

	t.Run("capture attempt that failed", func(t *testing.T) {
		failed := capturedPayment(booking.ID, 3000)
		failed.Status = domain.PaymentStatusFailed

		uc := NewUseCase(&bookingRepoMock{booking: booking}, &paymentRepoMock{captured: failed},
			&outboxRepoMock{}, &processorMock{}, txManagerMock{}, noopLogger{})

		_, err := uc.Execute(context.Background(), refundRequest(booking.ID, 100))
		assert.ErrorIs(t, err, ErrNoCapturedPayment)
	})
}

func TestExecute_IdempotencyReplay(t *testing.T) {
	booking := completedBooking()
	payment := capturedPayment(booking.ID, 3000)
	prior := &domain.Refund{
		ID:             uuid.New(),
		TenantID:       "tenant-1",
		PaymentID:      payment.ID,
		BookingID:      booking.ID,
		Amount:         1000,
		IdempotencyKey: "refund-key-1",
	}

	payments := &paymentRepoMock{captured: payment, priorRefund: prior, refundedTotal: 1000}
	outbox := &outboxRepoMock{}
	processor := &processorMock{}

	uc := NewUseCase(&bookingRepoMock{booking: booking}, payments, outbox, processor, txManagerMock{}, noopLogger{})

	resp, err := uc.Execute(context.Background(), refundRequest(booking.ID, 1000))
	require.NoError(t, err)
	assert.True(t, resp.Replayed)
	assert.Equal(t, prior.ID, resp.Refund.ID)
	assert.Equal(t, int64(2000), resp.RemainingCaptured)

	// Повтор не ходит в процессинг и не пишет событий
	assert.Zero(t, processor.refundedAmount)
	assert.Empty(t, outbox.events)
}

func TestExecute_IdempotencyKeyConflict(t *testing.T) {
	booking := completedBooking()
	prior := &domain.Refund{
		ID:        uuid.New(),
		BookingID: uuid.New(), // другой booking под тем же токеном
	}

	uc := NewUseCase(&bookingRepoMock{booking: booking},
		&paymentRepoMock{captured: capturedPayment(booking.ID, 3000), priorRefund: prior},
		&outboxRepoMock{}, &processorMock{}, txManagerMock{}, noopLogger{})

	_, err := uc.Execute(context.Background(), refundRequest(booking.ID, 1000))
	assert.ErrorIs(t, err, ErrIdempotencyKeyConflict)
}

func TestExecute_ProcessorErrors(t *testing.T) {
	booking := completedBooking()

	t.Run("unavailable processor is transient", func(t *testing.T) {
		payments := &paymentRepoMock{captured: capturedPayment(booking.ID, 3000)}
		uc := NewUseCase(&bookingRepoMock{booking: booking}, payments, &outboxRepoMock{},
			&processorMock{err: processorClient.ErrProcessorUnavailable}, txManagerMock{}, noopLogger{})

		_, err := uc.Execute(context.Background(), refundRequest(booking.ID, 1000))
		assert.ErrorIs(t, err, ErrPaymentProcessor)
		assert.Nil(t, payments.createdRefund)
	})

	t.Run("declined refund is terminal", func(t *testing.T) {
		payments := &paymentRepoMock{captured: capturedPayment(booking.ID, 3000)}
		uc := NewUseCase(&bookingRepoMock{booking: booking}, payments, &outboxRepoMock{},
			&processorMock{err: processorClient.ErrPaymentDeclined}, txManagerMock{}, noopLogger{})

		_, err := uc.Execute(context.Background(), refundRequest(booking.ID, 1000))
		assert.ErrorIs(t, err, ErrPaymentFailed)
		assert.Nil(t, payments.createdRefund)
	})
}

func TestExecute_ValidationErrors(t *testing.T) {
	uc := NewUseCase(&bookingRepoMock{}, &paymentRepoMock{}, &outboxRepoMock{}, &processorMock{}, txManagerMock{}, noopLogger{})

	t.Run("negative amount", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), refundRequest(uuid.New(), -1))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing idempotency key", func(t *testing.T) {
		req := refundRequest(uuid.New(), 100)
		req.IdempotencyKey = ""
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestExecute_BookingNotFound(t *testing.T) {
	uc := NewUseCase(&bookingRepoMock{}, &paymentRepoMock{}, &outboxRepoMock{}, &processorMock{}, txManagerMock{}, noopLogger{})

	_, err := uc.Execute(context.Background(), refundRequest(uuid.New(), 100))
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
