package holdsweeper

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
)

// TypeExpireStaleHolds тип периодической задачи asynq
const TypeExpireStaleHolds = "holds:expire_stale"

// NewExpireStaleTask создает задачу на пометку истёкших холдов
func NewExpireStaleTask() *asynq.Task {
	return asynq.NewTask(TypeExpireStaleHolds, nil)
}

// HoldRepository интерфейс репозитория холдов
type HoldRepository interface {
	// ExpireStale помечает истёкшие активные холды как expired
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Sweeper периодическая уборка истёкших холдов.
// Уборка - оптимизация хранилища, не источник корректности: истёкший холд
// перестаёт блокировать интервал по стенным часам во всех читающих путях,
// даже если sweep опаздывает. Задача идемпотентна и безопасна при
// конкурентном запуске из нескольких воркеров.
type Sweeper struct {
	holdRepo     HoldRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewSweeper создает новый экземпляр уборщика холдов
func NewSweeper(holdRepo HoldRepository, logger Logger) *Sweeper {
	return &Sweeper{
		holdRepo:     holdRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// HandleExpireStale обработчик задачи asynq
func (s *Sweeper) HandleExpireStale(ctx context.Context, _ *asynq.Task) error {
	now := s.timeProvider.Now()

	expired, err := s.holdRepo.ExpireStale(ctx, now)
	if err != nil {
		s.logger.Error("holdsweeper: sweep failed: %v", err)
		return err
	}

	if expired > 0 {
		s.logger.Info("holdsweeper: marked %d holds expired", expired)
	}

	return nil
}
