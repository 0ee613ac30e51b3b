package rulecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// Cache read-through кэш активных правил ресурса поверх Redis.
// Кэш не является источником истины: промах или недоступность Redis
// всегда деградирует к чтению из PostgreSQL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    Logger
}

// New создает новый экземпляр кэша правил
func New(client *redis.Client, ttl time.Duration, log Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func key(tenantID string, resourceID uuid.UUID) string {
	return fmt.Sprintf("rules:%s:%s", tenantID, resourceID)
}

// Get возвращает закэшированные правила ресурса.
// Второе значение false означает промах или ошибку Redis - оба случая
// обрабатываются одинаково, чтением из хранилища.
func (c *Cache) Get(ctx context.Context, tenantID string, resourceID uuid.UUID) ([]*domain.AvailabilityRule, bool) {
	raw, err := c.client.Get(ctx, key(tenantID, resourceID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("rulecache: Get failed for resource_id=%s: %v", resourceID, err)
		return nil, false
	}

	var rules []*domain.AvailabilityRule
	if err := json.Unmarshal(raw, &rules); err != nil {
		c.log.Warn("rulecache: corrupt entry for resource_id=%s, dropping: %v", resourceID, err)
		c.client.Del(ctx, key(tenantID, resourceID))
		return nil, false
	}

	return rules, true
}

// Set кэширует набор активных правил ресурса
func (c *Cache) Set(ctx context.Context, tenantID string, resourceID uuid.UUID, rules []*domain.AvailabilityRule) {
	raw, err := json.Marshal(rules)
	if err != nil {
		c.log.Warn("rulecache: Set marshal failed for resource_id=%s: %v", resourceID, err)
		return
	}

	if err := c.client.Set(ctx, key(tenantID, resourceID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("rulecache: Set failed for resource_id=%s: %v", resourceID, err)
	}
}

// Invalidate сбрасывает кэш ресурса. Вызывается при любой мутации правил:
// устаревшая запись здесь напрямую влияет на корректность расчёта слотов.
func (c *Cache) Invalidate(ctx context.Context, tenantID string, resourceID uuid.UUID) error {
	if err := c.client.Del(ctx, key(tenantID, resourceID)).Err(); err != nil {
		return fmt.Errorf("rulecache: Invalidate - delete key: %w", err)
	}

	c.log.Debug("rulecache: invalidated resource_id=%s", resourceID)
	return nil
}
