package compute_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	catalogClient "github.com/anshddoshi27/Tithi-sub002/internal/integrations/catalogservice"
)

// UseCase use case расчёта доступных слотов ресурса.
// Чистый read-path: ничего не пишет и полностью пересчитываем из входа.
type UseCase struct {
	ruleRepo      RuleRepository
	ruleCache     RuleCache
	bookingRepo   BookingRepository
	holdRepo      HoldRepository
	catalogClient CatalogClient
	resolver      Resolver
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	ruleRepo RuleRepository,
	ruleCache RuleCache,
	bookingRepo BookingRepository,
	holdRepo HoldRepository,
	catalogClient CatalogClient,
	resolver Resolver,
	logger Logger,
) *UseCase {
	return &UseCase{
		ruleRepo:      ruleRepo,
		ruleCache:     ruleCache,
		bookingRepo:   bookingRepo,
		holdRepo:      holdRepo,
		catalogClient: catalogClient,
		resolver:      resolver,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case расчёта доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ComputeAvailability: tenant=%s, resource=%s, service=%s, range=[%s, %s)",
		req.TenantID, req.ResourceID, req.ServiceID,
		req.RangeStart.Format(time.RFC3339), req.RangeEnd.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ComputeAvailability: validation failed: %v", err)
		return nil, err
	}

	loc, _ := time.LoadLocation(req.Timezone)

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Проверяем ресурс в каталоге
	if _, err := uc.catalogClient.GetResource(ctx, req.TenantID, req.ResourceID); err != nil {
		if errors.Is(err, catalogClient.ErrResourceNotFound) {
			uc.logger.Warn("ComputeAvailability: resource id=%s not found", req.ResourceID)
			return nil, ErrResourceNotFound
		}
		uc.logger.Error("ComputeAvailability: failed to get resource id=%s: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to get resource: %v", ErrInternal, err)
	}

	// 4. Определяем длительность слота: из запроса или из каталога услуг
	duration := req.DurationMinutes
	if duration == 0 {
		service, err := uc.catalogClient.GetService(ctx, req.TenantID, req.ServiceID)
		if err != nil {
			if errors.Is(err, catalogClient.ErrServiceNotFound) {
				uc.logger.Warn("ComputeAvailability: service id=%s not found", req.ServiceID)
				return nil, ErrServiceNotFound
			}
			uc.logger.Error("ComputeAvailability: failed to get service id=%s: %v", req.ServiceID, err)
			return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}
		duration = service.DurationMinutes
	}

	// 5. Загружаем активные правила ресурса (read-through кэш).
	// Кэшируется полный набор без фильтра по датам: ключ кэша не содержит
	// периода, и срез под период одного запроса отравил бы остальные
	rules, cached := uc.ruleCache.Get(ctx, req.TenantID, req.ResourceID)
	if !cached {
		var err error
		rules, err = uc.ruleRepo.ListActiveByResource(ctx, req.TenantID, req.ResourceID)
		if err != nil {
			uc.logger.Error("ComputeAvailability: failed to load rules: %v", err)
			return nil, fmt.Errorf("%w: failed to load rules: %v", ErrInternal, err)
		}
		uc.ruleCache.Set(ctx, req.TenantID, req.ResourceID, rules)
	}

	// 6. Разворачиваем правила по датам и мёржим по приоритету
	sets, err := resolveRange(uc.resolver, rules, req.RangeStart, req.RangeEnd, loc, req.ServiceID)
	if err != nil {
		uc.logger.Error("ComputeAvailability: rule resolution failed: %v", err)
		return nil, fmt.Errorf("%w: rule resolution failed: %v", ErrInternal, err)
	}

	free := normalizeIntervals(clipIntervals(sets.granted, req.RangeStart, req.RangeEnd))
	free = subtractAll(free, sets.subtractive)

	// 7. Вычитаем блокирующие бронирования и активные холды
	blockingBookings, err := uc.bookingRepo.GetBlockingByResource(ctx, req.TenantID, req.ResourceID, req.RangeStart, req.RangeEnd)
	if err != nil {
		uc.logger.Error("ComputeAvailability: failed to load bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to load bookings: %v", ErrInternal, err)
	}
	for _, b := range blockingBookings {
		free = subtractAll(free, []domain.Interval{b.Interval()})
	}

	activeHolds, err := uc.holdRepo.GetActiveByResource(ctx, req.TenantID, req.ResourceID, req.RangeStart, req.RangeEnd, now)
	if err != nil {
		uc.logger.Error("ComputeAvailability: failed to load holds: %v", err)
		return nil, fmt.Errorf("%w: failed to load holds: %v", ErrInternal, err)
	}
	for _, h := range activeHolds {
		// Истёкшие холды отфильтрованы запросом, но expiry проверяется
		// ещё раз по стенным часам
		if !h.IsActiveAt(now) {
			continue
		}
		free = subtractAll(free, []domain.Interval{h.Interval()})
	}

	// 8. Нарезаем свободные интервалы на слоты
	slotDuration := time.Duration(duration) * time.Minute
	intervals := generateSlots(free, slotDuration, 0, now, req.AfterStart, req.Limit)

	slots := make([]Slot, 0, len(intervals))
	for _, iv := range intervals {
		slots = append(slots, Slot{
			StartAt:    iv.Start,
			EndAt:      iv.End,
			LocalStart: iv.Start.In(loc).Format(time.RFC3339),
			LocalEnd:   iv.End.In(loc).Format(time.RFC3339),
		})
	}

	uc.logger.Info("ComputeAvailability: %d slots for resource=%s, service=%s", len(slots), req.ResourceID, req.ServiceID)

	return &Response{
		ResourceID:      req.ResourceID,
		ServiceID:       req.ServiceID,
		DurationMinutes: duration,
		Timezone:        req.Timezone,
		Slots:           slots,
	}, nil
}
