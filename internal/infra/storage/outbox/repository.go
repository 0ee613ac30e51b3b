package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	"github.com/anshddoshi27/Tithi-sub002/pkg/dbmetrics"
	"github.com/anshddoshi27/Tithi-sub002/pkg/psqlbuilder"
)

var eventColumns = []string{
	"id",
	"tenant_id",
	"event_type",
	"aggregate_type",
	"aggregate_id",
	"payload",
	"created_at",
	"published_at",
}

// Repository репозиторий transactional outbox.
// Запись события выполняется в той же транзакции, что и смена состояния,
// доставку берёт на себя relay-воркер.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория outbox
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append вставляет событие в outbox. Вызывается внутри транзакции usecase'а.
func (r *Repository) Append(ctx context.Context, event *domain.OutboxEvent) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("outbox_events").
		Columns(
			"id",
			"tenant_id",
			"event_type",
			"aggregate_type",
			"aggregate_id",
			"payload",
		).
		Values(
			event.ID,
			event.TenantID,
			event.EventType,
			event.AggregateType,
			event.AggregateID,
			[]byte(event.Payload),
		).
		Suffix("RETURNING created_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt); err != nil {
		return fmt.Errorf("%w: Append - execute insert: %v", ErrExecQuery, err)
	}

	event.CreatedAt = createdAt.Time

	return nil
}

// FetchUnpublished получает пачку неопубликованных событий в порядке создания.
// FOR UPDATE SKIP LOCKED позволяет безопасно гонять несколько экземпляров relay.
func (r *Repository) FetchUnpublished(ctx context.Context, limit uint64) ([]*domain.OutboxEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(eventColumns...).
		From("outbox_events").
		Where(squirrel.Eq{"published_at": nil}).
		OrderBy("created_at ASC").
		Limit(limit)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// MarkPublished проставляет событиям отметку о публикации
func (r *Repository) MarkPublished(ctx context.Context, ids []uuid.UUID, publishedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("outbox_events").
		Set("published_at", publishedAt).
		Where(squirrel.Expr("id = ANY(?)", pq.Array(uuidsToStrings(ids)))).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkPublished - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkPublished - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

func uuidsToStrings(ids []uuid.UUID) []string {
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		result = append(result, id.String())
	}
	return result
}

func scanEvents(rows *sql.Rows) ([]*domain.OutboxEvent, error) {
	result := make([]*domain.OutboxEvent, 0)

	for rows.Next() {
		var event domain.OutboxEvent
		var payload []byte
		var createdAt sql.NullTime
		var publishedAt sql.NullTime

		err := rows.Scan(
			&event.ID,
			&event.TenantID,
			&event.EventType,
			&event.AggregateType,
			&event.AggregateID,
			&payload,
			&createdAt,
			&publishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanEvents - scan row: %v", ErrScanRow, err)
		}

		event.Payload = payload
		event.CreatedAt = createdAt.Time
		if publishedAt.Valid {
			event.PublishedAt = &publishedAt.Time
		}

		result = append(result, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanEvents - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}
