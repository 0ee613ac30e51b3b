package create_hold

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	catalogClient "github.com/anshddoshi27/Tithi-sub002/internal/integrations/catalogservice"
)

// UseCase use case выдачи холда на интервал ресурса.
// Конкурентные запросы на один ресурс сериализуются advisory-локом внутри
// serializable транзакции: проигравший получает ErrConflict, не дубль холда.
type UseCase struct {
	holdRepo      HoldRepository
	bookingRepo   BookingRepository
	catalogClient CatalogClient
	txManager     TxManager
	timeProvider  TimeProvider
	defaultTTL    time.Duration
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	holdRepo HoldRepository,
	bookingRepo BookingRepository,
	catalogClient CatalogClient,
	txManager TxManager,
	defaultTTLMinutes int,
	logger Logger,
) *UseCase {
	if defaultTTLMinutes <= 0 {
		defaultTTLMinutes = domain.DefaultHoldTTLMinutes
	}

	return &UseCase{
		holdRepo:      holdRepo,
		bookingRepo:   bookingRepo,
		catalogClient: catalogClient,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		defaultTTL:    time.Duration(defaultTTLMinutes) * time.Minute,
		logger:        logger,
	}
}

// Execute выполняет use case выдачи холда
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateHold: tenant=%s, resource=%s, interval=[%s, %s)",
		req.TenantID, req.ResourceID, req.StartAt.Format(time.RFC3339), req.EndAt.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateHold: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем ресурс в каталоге (до транзакции, внешний вызов)
	if _, err := uc.catalogClient.GetResource(ctx, req.TenantID, req.ResourceID); err != nil {
		if errors.Is(err, catalogClient.ErrResourceNotFound) {
			uc.logger.Warn("CreateHold: resource id=%s not found", req.ResourceID)
			return nil, ErrResourceNotFound
		}
		uc.logger.Error("CreateHold: failed to get resource id=%s: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to get resource: %v", ErrInternal, err)
	}

	// 3. Вычисляем время жизни холда
	now := uc.timeProvider.Now()
	ttl := uc.defaultTTL
	if req.TTLMinutes > 0 {
		ttl = time.Duration(req.TTLMinutes) * time.Minute
	}

	hold := &domain.Hold{
		TenantID:   req.TenantID,
		ResourceID: req.ResourceID,
		StartAt:    req.StartAt.UTC(),
		EndAt:      req.EndAt.UTC(),
		OwnerToken: req.OwnerToken,
		Status:     domain.HoldStatusActive,
		ExpiresAt:  now.Add(ttl),
	}

	// 4. Проверка пересечений и вставка в одной serializable транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Сериализуем выдачу холдов на ресурс advisory-локом
		if err := uc.holdRepo.AcquireResourceLock(txCtx, req.ResourceID); err != nil {
			return fmt.Errorf("%w: failed to acquire resource lock: %v", ErrInternal, err)
		}

		interval := hold.Interval()

		// 4.2. Активные холды: пересечение - проигрыш гонки
		activeHolds, err := uc.holdRepo.GetActiveByResource(txCtx, req.TenantID, req.ResourceID, hold.StartAt, hold.EndAt, now)
		if err != nil {
			return fmt.Errorf("%w: failed to load active holds: %v", ErrInternal, err)
		}
		for _, h := range activeHolds {
			if h.IsActiveAt(now) && h.Interval().Overlaps(interval) {
				return ErrConflict
			}
		}

		// 4.3. Блокирующие бронирования
		blocking, err := uc.bookingRepo.GetBlockingByResource(txCtx, req.TenantID, req.ResourceID, hold.StartAt, hold.EndAt)
		if err != nil {
			return fmt.Errorf("%w: failed to load bookings: %v", ErrInternal, err)
		}
		for _, b := range blocking {
			if b.Interval().Overlaps(interval) {
				return ErrConflict
			}
		}

		// 4.4. Вставляем холд
		if _, err := uc.holdRepo.Create(txCtx, hold); err != nil {
			return fmt.Errorf("%w: failed to create hold: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			uc.logger.Info("CreateHold: interval conflict for resource=%s, interval=[%s, %s)",
				req.ResourceID, req.StartAt.Format(time.RFC3339), req.EndAt.Format(time.RFC3339))
			return nil, ErrConflict
		}
		uc.logger.Error("CreateHold: transaction failed: %v", err)
		return nil, err
	}

	uc.logger.Info("CreateHold: hold id=%s issued for resource=%s, expires_at=%s",
		hold.ID, req.ResourceID, hold.ExpiresAt.Format(time.RFC3339))

	return &Response{
		HoldID:    hold.ID,
		StartAt:   hold.StartAt,
		EndAt:     hold.EndAt,
		ExpiresAt: hold.ExpiresAt,
	}, nil
}
