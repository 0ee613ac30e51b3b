package create_booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	bookingsRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/bookings"
	holdsRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/holds"
	catalogClient "github.com/anshddoshi27/Tithi-sub002/internal/integrations/catalogservice"
	customerClient "github.com/anshddoshi27/Tithi-sub002/internal/integrations/customerservice"
)

// UseCase use case создания бронирования.
// Гарантия отсутствия пересечений обеспечивается exclusion constraint'ом
// в БД, а не проверками в коде: проигравший гонку INSERT получает ErrConflict.
type UseCase struct {
	bookingRepo    BookingRepository
	holdRepo       HoldRepository
	outboxRepo     OutboxRepository
	catalogClient  CatalogClient
	customerClient CustomerClient
	txManager      TxManager
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	holdRepo HoldRepository,
	outboxRepo OutboxRepository,
	catalogClient CatalogClient,
	customerClient CustomerClient,
	txManager TxManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		holdRepo:       holdRepo,
		outboxRepo:     outboxRepo,
		catalogClient:  catalogClient,
		customerClient: customerClient,
		txManager:      txManager,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: tenant=%s, resource=%s, customer=%s, service=%s, key=%s",
		req.TenantID, req.ResourceID, req.CustomerID, req.ServiceID, req.IdempotencyKey)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	fingerprint := req.Fingerprint()

	// 2. Проверка idempotency-токена: повтор с тем же отпечатком - replay
	existing, err := uc.bookingRepo.GetByIdempotencyKey(ctx, req.TenantID, req.IdempotencyKey)
	if err != nil && !errors.Is(err, bookingsRepo.ErrBookingNotFound) {
		uc.logger.Error("CreateBooking: idempotency lookup failed: %v", err)
		return nil, fmt.Errorf("%w: idempotency lookup failed: %v", ErrInternal, err)
	}
	if existing != nil {
		if existing.RequestFingerprint != fingerprint {
			uc.logger.Warn("CreateBooking: idempotency key %s reused with different payload", req.IdempotencyKey)
			return nil, ErrIdempotencyKeyConflict
		}
		uc.logger.Info("CreateBooking: replay of key=%s, returning booking id=%s", req.IdempotencyKey, existing.ID)
		return &Response{Booking: existing, Replayed: true}, nil
	}

	// 3. Проверяем клиента (graceful degradation при недоступности сервиса)
	if err := uc.customerClient.VerifyCustomerWithGracefulDegradation(ctx, req.TenantID, req.CustomerID); err != nil {
		switch {
		case errors.Is(err, customerClient.ErrCustomerNotFound):
			uc.logger.Warn("CreateBooking: customer id=%s not found", req.CustomerID)
			return nil, ErrCustomerNotFound
		case errors.Is(err, customerClient.ErrCustomerBlocked):
			uc.logger.Warn("CreateBooking: customer id=%s is blocked", req.CustomerID)
			return nil, ErrCustomerBlocked
		case errors.Is(err, customerClient.ErrServiceDegraded):
			uc.logger.Warn("CreateBooking: customer check skipped: %v", err)
		default:
			uc.logger.Error("CreateBooking: customer check failed: %v", err)
			return nil, fmt.Errorf("%w: customer check failed: %v", ErrInternal, err)
		}
	}

	// 4. Снапшот услуги из каталога: имя, цена и длительность
	// замораживаются в бронировании
	service, err := uc.catalogClient.GetService(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%s not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%s: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now()

	booking := &domain.Booking{
		TenantID:           req.TenantID,
		ResourceID:         req.ResourceID,
		CustomerID:         req.CustomerID,
		ServiceID:          req.ServiceID,
		ServiceName:        service.Name,
		ServicePrice:       service.Price,
		DurationMinutes:    service.DurationMinutes,
		Timezone:           req.Timezone,
		Status:             domain.StatusPending,
		IdempotencyKey:     req.IdempotencyKey,
		RequestFingerprint: fingerprint,
		HoldID:             req.HoldID,
	}

	// 5. Потребление холда и вставка бронирования в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 5.1. Создание из холда: интервал берётся из холда, холд гасится
		if req.HoldID != nil {
			hold, err := uc.holdRepo.GetByID(txCtx, req.TenantID, *req.HoldID)
			if err != nil {
				if errors.Is(err, holdsRepo.ErrHoldNotFound) {
					return ErrHoldNotActive
				}
				return fmt.Errorf("%w: failed to get hold: %v", ErrInternal, err)
			}

			if hold.ResourceID != req.ResourceID || hold.OwnerToken != req.OwnerToken {
				return ErrHoldOwnerMismatch
			}
			if !hold.IsActiveAt(now) {
				return ErrHoldNotActive
			}

			booking.StartAt = hold.StartAt
			booking.EndAt = hold.EndAt
		} else {
			booking.StartAt = req.StartAt.UTC()
			booking.EndAt = req.StartAt.UTC().Add(time.Duration(service.DurationMinutes) * time.Minute)

			// Прямое бронирование не может украсть интервал, удержанный чужим
			// холдом: constraint в БД холды не видит, поэтому сериализуемся
			// тем же advisory-локом, что и выдача холдов, и проверяем сами
			if err := uc.holdRepo.AcquireResourceLock(txCtx, req.ResourceID); err != nil {
				return fmt.Errorf("%w: failed to acquire resource lock: %v", ErrInternal, err)
			}

			activeHolds, err := uc.holdRepo.GetActiveByResource(txCtx, req.TenantID, req.ResourceID, booking.StartAt, booking.EndAt, now)
			if err != nil {
				return fmt.Errorf("%w: failed to load active holds: %v", ErrInternal, err)
			}
			for _, h := range activeHolds {
				// Собственный холд клиента не блокирует его же бронирование
				if req.OwnerToken != "" && h.OwnerToken == req.OwnerToken {
					continue
				}
				if h.IsActiveAt(now) && h.Interval().Overlaps(booking.Interval()) {
					return ErrConflict
				}
			}
		}

		// 5.2. Вставляем бронирование: пересечение отклонит constraint
		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			switch {
			case errors.Is(err, bookingsRepo.ErrBookingOverlap):
				return ErrConflict
			case errors.Is(err, bookingsRepo.ErrDuplicateIdempotencyKey):
				// Конкурентный повтор того же токена: гонку выиграл другой запрос
				return errDuplicateKeyRace
			default:
				return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
			}
		}
		booking = created

		// 5.3. Гасим холд после вставки: бронирование уже заняло интервал
		if req.HoldID != nil {
			if err := uc.holdRepo.Consume(txCtx, req.TenantID, *req.HoldID, booking.ID, now); err != nil {
				if errors.Is(err, holdsRepo.ErrHoldNotActive) {
					return ErrHoldNotActive
				}
				return fmt.Errorf("%w: failed to consume hold: %v", ErrInternal, err)
			}
		}

		// 5.4. Событие жизненного цикла в outbox той же транзакцией
		if err := uc.appendCreatedEvent(txCtx, booking); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		// Гонка по токену: возвращаем результат победителя, если отпечатки совпали
		if errors.Is(err, errDuplicateKeyRace) {
			return uc.replayAfterRace(ctx, req, fingerprint)
		}
		if errors.Is(err, ErrConflict) {
			uc.logger.Info("CreateBooking: interval conflict for resource=%s", req.ResourceID)
			return nil, ErrConflict
		}
		if errors.Is(err, ErrHoldNotActive) || errors.Is(err, ErrHoldOwnerMismatch) {
			uc.logger.Warn("CreateBooking: hold rejected: %v", err)
			return nil, err
		}
		uc.logger.Error("CreateBooking: transaction failed: %v", err)
		return nil, err
	}

	uc.logger.Info("CreateBooking: booking id=%s created, interval=[%s, %s)",
		booking.ID, booking.StartAt.Format(time.RFC3339), booking.EndAt.Format(time.RFC3339))

	return &Response{Booking: booking}, nil
}

// errDuplicateKeyRace внутренний маркер конкурентной вставки того же токена
var errDuplicateKeyRace = errors.New("create_booking: concurrent duplicate idempotency key")

// replayAfterRace возвращает бронирование, созданное конкурентным запросом
// с тем же idempotency-токеном, либо конфликт при расхождении отпечатков
func (uc *UseCase) replayAfterRace(ctx context.Context, req *Request, fingerprint string) (*Response, error) {
	winner, err := uc.bookingRepo.GetByIdempotencyKey(ctx, req.TenantID, req.IdempotencyKey)
	if err != nil {
		uc.logger.Error("CreateBooking: post-race idempotency lookup failed: %v", err)
		return nil, fmt.Errorf("%w: post-race idempotency lookup failed: %v", ErrInternal, err)
	}

	if winner.RequestFingerprint != fingerprint {
		return nil, ErrIdempotencyKeyConflict
	}

	uc.logger.Info("CreateBooking: concurrent replay of key=%s, returning booking id=%s", req.IdempotencyKey, winner.ID)
	return &Response{Booking: winner, Replayed: true}, nil
}

// appendCreatedEvent пишет событие booking.created в outbox
func (uc *UseCase) appendCreatedEvent(ctx context.Context, booking *domain.Booking) error {
	payload, err := json.Marshal(map[string]interface{}{
		"booking_id":  booking.ID,
		"resource_id": booking.ResourceID,
		"customer_id": booking.CustomerID,
		"service_id":  booking.ServiceID,
		"start_at":    booking.StartAt.Format(time.RFC3339),
		"end_at":      booking.EndAt.Format(time.RFC3339),
		"status":      booking.Status,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event payload: %v", ErrInternal, err)
	}

	event := &domain.OutboxEvent{
		TenantID:      booking.TenantID,
		EventType:     domain.EventBookingCreated,
		AggregateType: "booking",
		AggregateID:   booking.ID,
		Payload:       payload,
	}

	if err := uc.outboxRepo.Append(ctx, event); err != nil {
		return fmt.Errorf("%w: failed to append outbox event: %v", ErrInternal, err)
	}

	return nil
}
