package create_hold

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	catalogClient "github.com/anshddoshi27/Tithi-sub002/internal/integrations/catalogservice"
)

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type holdRepoMock struct {
	active  []*domain.Hold
	created *domain.Hold
	locked  bool
}

func (m *holdRepoMock) AcquireResourceLock(ctx context.Context, resourceID uuid.UUID) error {
	m.locked = true
	return nil
}

func (m *holdRepoMock) Create(ctx context.Context, hold *domain.Hold) (*domain.Hold, error) {
	created := *hold
	created.ID = uuid.New()
	hold.ID = created.ID
	m.created = &created
	return &created, nil
}

func (m *holdRepoMock) GetActiveByResource(ctx context.Context, tenantID string, resourceID uuid.UUID, from, to time.Time, now time.Time) ([]*domain.Hold, error) {
	return m.active, nil
}

type bookingRepoMock struct {
	blocking []*domain.Booking
}

func (m *bookingRepoMock) GetBlockingByResource(ctx context.Context, tenantID string, resourceID uuid.UUID, from, to time.Time) ([]*domain.Booking, error) {
	return m.blocking, nil
}

type catalogClientMock struct {
	err error
}

func (m *catalogClientMock) GetResource(ctx context.Context, tenantID string, resourceID uuid.UUID) (*catalogClient.Resource, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &catalogClient.Resource{ID: resourceID, TenantID: tenantID, Active: true}, nil
}

type txManagerMock struct{}

func (txManagerMock) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func validRequest() *Request {
	return &Request{
		TenantID:   "tenant-1",
		ResourceID: uuid.New(),
		StartAt:    time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC),
		OwnerToken: "session-1",
	}
}

func newTestUseCase(holds *holdRepoMock, bookings *bookingRepoMock) *UseCase {
	uc := NewUseCase(holds, bookings, &catalogClientMock{}, txManagerMock{}, 15, noopLogger{})
	uc.timeProvider = fixedTime{now: testNow}
	return uc
}

func TestExecute_IssuesHold(t *testing.T) {
	holds := &holdRepoMock{}
	uc := newTestUseCase(holds, &bookingRepoMock{})

	req := validRequest()
	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, holds.locked)
	require.NotNil(t, holds.created)
	assert.Equal(t, holds.created.ID, resp.HoldID)
	assert.Equal(t, req.StartAt, resp.StartAt)
	assert.Equal(t, req.EndAt, resp.EndAt)

	// TTL по умолчанию из конфигурации
	assert.Equal(t, testNow.Add(15*time.Minute), resp.ExpiresAt)
}

func TestExecute_CustomTTL(t *testing.T) {
	holds := &holdRepoMock{}
	uc := newTestUseCase(holds, &bookingRepoMock{})

	req := validRequest()
	req.TTLMinutes = 5

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(5*time.Minute), resp.ExpiresAt)
}

func TestExecute_ConflictWithActiveHold(t *testing.T) {
	req := validRequest()
	existing := &domain.Hold{
		ID:         uuid.New(),
		ResourceID: req.ResourceID,
		StartAt:    req.StartAt.Add(30 * time.Minute),
		EndAt:      req.EndAt.Add(30 * time.Minute),
		Status:     domain.HoldStatusActive,
		ExpiresAt:  testNow.Add(10 * time.Minute),
	}

	holds := &holdRepoMock{active: []*domain.Hold{existing}}
	uc := newTestUseCase(holds, &bookingRepoMock{})

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Nil(t, holds.created)
}

func TestExecute_ExpiredHoldDoesNotBlock(t *testing.T) {
	req := validRequest()
	stale := &domain.Hold{
		ID:         uuid.New(),
		ResourceID: req.ResourceID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Status:     domain.HoldStatusActive,
		ExpiresAt:  testNow.Add(-time.Minute), // истёк, но sweeper ещё не прошёл
	}

	holds := &holdRepoMock{active: []*domain.Hold{stale}}
	uc := newTestUseCase(holds, &bookingRepoMock{})

	_, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.NotNil(t, holds.created)
}

func TestExecute_ConflictWithBlockingBooking(t *testing.T) {
	req := validRequest()
	booking := &domain.Booking{
		ID:      uuid.New(),
		Status:  domain.StatusConfirmed,
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
	}

	uc := newTestUseCase(&holdRepoMock{}, &bookingRepoMock{blocking: []*domain.Booking{booking}})

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestExecute_TouchingIntervalIsNotConflict(t *testing.T) {
	req := validRequest()
	adjacent := &domain.Booking{
		ID:      uuid.New(),
		Status:  domain.StatusConfirmed,
		StartAt: req.EndAt,
		EndAt:   req.EndAt.Add(time.Hour),
	}

	uc := newTestUseCase(&holdRepoMock{}, &bookingRepoMock{blocking: []*domain.Booking{adjacent}})

	_, err := uc.Execute(context.Background(), req)
	assert.NoError(t, err)
}

func TestExecute_ResourceNotFound(t *testing.T) {
	uc := NewUseCase(&holdRepoMock{}, &bookingRepoMock{},
		&catalogClientMock{err: catalogClient.ErrResourceNotFound}, txManagerMock{}, 15, noopLogger{})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestExecute_ValidationErrors(t *testing.T) {
	uc := newTestUseCase(&holdRepoMock{}, &bookingRepoMock{})

	t.Run("inverted interval", func(t *testing.T) {
		req := validRequest()
		req.StartAt, req.EndAt = req.EndAt, req.StartAt
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})

	t.Run("missing owner token", func(t *testing.T) {
		req := validRequest()
		req.OwnerToken = ""
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("ttl above the ceiling", func(t *testing.T) {
		req := validRequest()
		req.TTLMinutes = domain.MaxHoldTTLMinutes + 1
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
