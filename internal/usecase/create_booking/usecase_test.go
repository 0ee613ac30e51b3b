package create_booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	bookingsRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/bookings"
	holdsRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/holds"
	"github.com/anshddoshi27/Tithi-sub002/internal/integrations/catalogservice"
)

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type bookingRepoMock struct {
	byKey    *domain.Booking
	byKeyErr error

	created   *domain.Booking
	createErr error
}

func (m *bookingRepoMock) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	created := *booking
	created.ID = uuid.New()
	m.created = &created
	return &created, nil
}

func (m *bookingRepoMock) GetByIdempotencyKey(ctx context.Context, tenantID, key string) (*domain.Booking, error) {
	if m.byKey != nil {
		return m.byKey, nil
	}
	if m.byKeyErr != nil {
		return nil, m.byKeyErr
	}
	return nil, bookingsRepo.ErrBookingNotFound
}

type holdRepoMock struct {
	hold     *domain.Hold
	active   []*domain.Hold
	getErr   error
	consumed bool
	locked   bool
}

func (m *holdRepoMock) AcquireResourceLock(ctx context.Context, resourceID uuid.UUID) error {
	m.locked = true
	return nil
}

func (m *holdRepoMock) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Hold, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.hold, nil
}

func (m *holdRepoMock) GetActiveByResource(ctx context.Context, tenantID string, resourceID uuid.UUID, from, to time.Time, now time.Time) ([]*domain.Hold, error) {
	return m.active, nil
}

func (m *holdRepoMock) Consume(ctx context.Context, tenantID string, id, bookingID uuid.UUID, now time.Time) error {
	m.consumed = true
	return nil
}

type outboxRepoMock struct {
	events []*domain.OutboxEvent
}

func (m *outboxRepoMock) Append(ctx context.Context, event *domain.OutboxEvent) error {
	m.events = append(m.events, event)
	return nil
}

type catalogClientMock struct {
	service *catalogservice.Service
	err     error
}

func (m *catalogClientMock) GetService(ctx context.Context, tenantID string, serviceID uuid.UUID) (*catalogservice.Service, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.service, nil
}

type customerClientMock struct {
	err error
}

func (m *customerClientMock) VerifyCustomerWithGracefulDegradation(ctx context.Context, tenantID, customerID string) error {
	return m.err
}

type txManagerMock struct{}

func (txManagerMock) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func validRequest() *Request {
	return &Request{
		TenantID:       "tenant-1",
		ResourceID:     uuid.New(),
		CustomerID:     "customer-1",
		ServiceID:      uuid.New(),
		StartAt:        time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		Timezone:       "UTC",
		IdempotencyKey: "key-1",
	}
}

func testService() *catalogservice.Service {
	return &catalogservice.Service{
		Name:            "Haircut",
		Price:           3000,
		DurationMinutes: 60,
		Active:          true,
	}
}

func newTestUseCase(bookings *bookingRepoMock, holds *holdRepoMock, outbox *outboxRepoMock) *UseCase {
	uc := NewUseCase(bookings, holds, outbox,
		&catalogClientMock{service: testService()},
		&customerClientMock{},
		txManagerMock{}, noopLogger{})
	uc.timeProvider = fixedTime{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return uc
}

func TestExecute_DirectBooking(t *testing.T) {
	bookings := &bookingRepoMock{}
	outbox := &outboxRepoMock{}
	uc := newTestUseCase(bookings, &holdRepoMock{}, outbox)

	req := validRequest()
	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.Booking)
	assert.False(t, resp.Replayed)

	// Снапшот услуги и интервал из StartAt + длительности
	assert.Equal(t, domain.StatusPending, resp.Booking.Status)
	assert.Equal(t, int64(3000), resp.Booking.ServicePrice)
	assert.Equal(t, req.StartAt, resp.Booking.StartAt)
	assert.Equal(t, req.StartAt.Add(time.Hour), resp.Booking.EndAt)
	assert.Equal(t, req.Fingerprint(), resp.Booking.RequestFingerprint)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, domain.EventBookingCreated, outbox.events[0].EventType)
}

func TestExecute_IdempotencyReplay(t *testing.T) {
	req := validRequest()
	existing := &domain.Booking{
		ID:                 uuid.New(),
		TenantID:           req.TenantID,
		IdempotencyKey:     req.IdempotencyKey,
		RequestFingerprint: req.Fingerprint(),
	}

	bookings := &bookingRepoMock{byKey: existing}
	outbox := &outboxRepoMock{}
	uc := newTestUseCase(bookings, &holdRepoMock{}, outbox)

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Replayed)
	assert.Equal(t, existing.ID, resp.Booking.ID)
	assert.Empty(t, outbox.events)
}

func TestExecute_IdempotencyKeyConflict(t *testing.T) {
	req := validRequest()
	existing := &domain.Booking{
		ID:                 uuid.New(),
		RequestFingerprint: "another-fingerprint",
	}

	uc := newTestUseCase(&bookingRepoMock{byKey: existing}, &holdRepoMock{}, &outboxRepoMock{})

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrIdempotencyKeyConflict)
}

func TestExecute_OverlapConflict(t *testing.T) {
	bookings := &bookingRepoMock{createErr: bookingsRepo.ErrBookingOverlap}
	uc := newTestUseCase(bookings, &holdRepoMock{}, &outboxRepoMock{})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestExecute_FromHold(t *testing.T) {
	req := validRequest()
	holdID := uuid.New()
	req.HoldID = &holdID
	req.OwnerToken = "session-1"
	req.StartAt = time.Time{}

	hold := &domain.Hold{
		ID:         holdID,
		TenantID:   req.TenantID,
		ResourceID: req.ResourceID,
		StartAt:    time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC),
		OwnerToken: "session-1",
		Status:     domain.HoldStatusActive,
		ExpiresAt:  time.Date(2025, 6, 1, 12, 15, 0, 0, time.UTC),
	}

	t.Run("hold interval is used and hold consumed", func(t *testing.T) {
		holds := &holdRepoMock{hold: hold}
		uc := newTestUseCase(&bookingRepoMock{}, holds, &outboxRepoMock{})

		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, hold.StartAt, resp.Booking.StartAt)
		assert.Equal(t, hold.EndAt, resp.Booking.EndAt)
		assert.True(t, holds.consumed)
	})

	t.Run("expired hold is rejected", func(t *testing.T) {
		expired := *hold
		expired.ExpiresAt = time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
		uc := newTestUseCase(&bookingRepoMock{}, &holdRepoMock{hold: &expired}, &outboxRepoMock{})

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrHoldNotActive)
	})

	t.Run("foreign owner token is rejected", func(t *testing.T) {
		foreign := *hold
		foreign.OwnerToken = "another-session"
		uc := newTestUseCase(&bookingRepoMock{}, &holdRepoMock{hold: &foreign}, &outboxRepoMock{})

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrHoldOwnerMismatch)
	})

	t.Run("missing hold maps to not active", func(t *testing.T) {
		uc := newTestUseCase(&bookingRepoMock{}, &holdRepoMock{getErr: holdsRepo.ErrHoldNotFound}, &outboxRepoMock{})

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrHoldNotActive)
	})

	t.Run("owner token required for hold booking", func(t *testing.T) {
		bad := *req
		bad.OwnerToken = ""
		uc := newTestUseCase(&bookingRepoMock{}, &holdRepoMock{hold: hold}, &outboxRepoMock{})

		_, err := uc.Execute(context.Background(), &bad)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestExecute_DirectBookingBlockedByForeignHold(t *testing.T) {
	req := validRequest()

	// Чужой холд ровно на запрошенный интервал, активный и неистёкший
	held := &domain.Hold{
		ID:         uuid.New(),
		TenantID:   req.TenantID,
		ResourceID: req.ResourceID,
		StartAt:    req.StartAt,
		EndAt:      req.StartAt.Add(time.Hour),
		OwnerToken: "another-session",
		Status:     domain.HoldStatusActive,
		ExpiresAt:  time.Date(2025, 6, 1, 12, 15, 0, 0, time.UTC),
	}

	t.Run("foreign active hold blocks direct booking", func(t *testing.T) {
		bookings := &bookingRepoMock{}
		holds := &holdRepoMock{active: []*domain.Hold{held}}
		uc := newTestUseCase(bookings, holds, &outboxRepoMock{})

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrConflict)
		assert.True(t, holds.locked)
		assert.Nil(t, bookings.created)
	})

	t.Run("own hold does not block direct booking", func(t *testing.T) {
		own := *held
		own.OwnerToken = "session-1"
		withToken := *req
		withToken.OwnerToken = "session-1"

		bookings := &bookingRepoMock{}
		uc := newTestUseCase(bookings, &holdRepoMock{active: []*domain.Hold{&own}}, &outboxRepoMock{})

		resp, err := uc.Execute(context.Background(), &withToken)
		require.NoError(t, err)
		assert.NotNil(t, resp.Booking)
	})

	t.Run("expired hold does not block direct booking", func(t *testing.T) {
		expired := *held
		expired.ExpiresAt = time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)

		bookings := &bookingRepoMock{}
		uc := newTestUseCase(bookings, &holdRepoMock{active: []*domain.Hold{&expired}}, &outboxRepoMock{})

		resp, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)
		assert.NotNil(t, resp.Booking)
	})
}

func TestExecute_ValidationErrors(t *testing.T) {
	uc := newTestUseCase(&bookingRepoMock{}, &holdRepoMock{}, &outboxRepoMock{})

	t.Run("missing interval source", func(t *testing.T) {
		req := validRequest()
		req.StartAt = time.Time{}
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})

	t.Run("missing idempotency key", func(t *testing.T) {
		req := validRequest()
		req.IdempotencyKey = ""
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("bad timezone", func(t *testing.T) {
		req := validRequest()
		req.Timezone = "Nowhere/Unknown"
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
