package outboxrelay

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
)

// OutboxRepository интерфейс репозитория transactional outbox
type OutboxRepository interface {
	FetchUnpublished(ctx context.Context, limit uint64) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, publishedAt time.Time) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Relay поллер transactional outbox: забирает неопубликованные события
// и доставляет их в AMQP. Выборка под FOR UPDATE SKIP LOCKED позволяет
// безопасно гонять несколько экземпляров. Гарантия - at-least-once:
// упавший между Publish и MarkPublished relay продублирует событие,
// потребители обязаны быть идемпотентными по id события.
type Relay struct {
	outboxRepo OutboxRepository
	publisher  message.Publisher
	txManager  TransactionManager
	interval   time.Duration
	batchSize  uint64
	logger     Logger
}

// NewRelay создает новый экземпляр relay
func NewRelay(
	outboxRepo OutboxRepository,
	publisher message.Publisher,
	txManager TransactionManager,
	interval time.Duration,
	batchSize uint64,
	logger Logger,
) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize == 0 {
		batchSize = 100
	}

	return &Relay{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		txManager:  txManager,
		interval:   interval,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// Run крутит цикл доставки до отмены контекста
func (r *Relay) Run(ctx context.Context) {
	r.logger.Info("outboxrelay: started, interval=%s, batch=%d", r.interval, r.batchSize)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outboxrelay: stopped")
			return
		case <-ticker.C:
			if err := r.relayBatch(ctx); err != nil {
				r.logger.Error("outboxrelay: batch failed: %v", err)
			}
		}
	}
}

// relayBatch доставляет одну пачку событий в одной транзакции
func (r *Relay) relayBatch(ctx context.Context) error {
	return r.txManager.Do(ctx, func(txCtx context.Context) error {
		events, err := r.outboxRepo.FetchUnpublished(txCtx, r.batchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		published := make([]uuid.UUID, 0, len(events))
		for _, event := range events {
			msg := message.NewMessage(event.ID.String(), []byte(event.Payload))
			msg.Metadata.Set("tenant_id", event.TenantID)
			msg.Metadata.Set("event_type", event.EventType)
			msg.Metadata.Set("aggregate_type", event.AggregateType)
			msg.Metadata.Set("aggregate_id", event.AggregateID.String())

			if err := r.publisher.Publish(event.EventType, msg); err != nil {
				// Недоставленные события остаются неопубликованными,
				// следующий тик заберёт их снова
				r.logger.Warn("outboxrelay: publish failed for event id=%s: %v", event.ID, err)
				break
			}
			published = append(published, event.ID)
		}

		if len(published) == 0 {
			return nil
		}

		if err := r.outboxRepo.MarkPublished(txCtx, published, time.Now().UTC()); err != nil {
			return err
		}

		r.logger.Info("outboxrelay: published %d events", len(published))
		return nil
	})
}
