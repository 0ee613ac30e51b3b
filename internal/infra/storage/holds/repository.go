package holds

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	"github.com/anshddoshi27/Tithi-sub002/pkg/dbmetrics"
	"github.com/anshddoshi27/Tithi-sub002/pkg/psqlbuilder"
)

var holdColumns = []string{
	"id",
	"tenant_id",
	"resource_id",
	"start_at",
	"end_at",
	"owner_token",
	"status",
	"booking_id",
	"created_at",
	"expires_at",
}

// Repository репозиторий холдов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория холдов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// AcquireResourceLock берёт advisory-лок PostgreSQL на ресурс до конца
// текущей транзакции. Сериализует выдачу холдов на один ресурс между
// процессами - in-memory локам через границы процессов доверять нельзя.
// Вызывать строго внутри транзакции.
func (r *Repository) AcquireResourceLock(ctx context.Context, resourceID uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if !dbmetrics.IsInTransaction(ctx) {
		return fmt.Errorf("%w: AcquireResourceLock - must be called inside a transaction", ErrExecQuery)
	}

	_, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", resourceID.String())
	if err != nil {
		return fmt.Errorf("%w: AcquireResourceLock - acquire advisory lock: %v", ErrExecQuery, err)
	}

	return nil
}

// Create вставляет новый холд
func (r *Repository) Create(ctx context.Context, hold *domain.Hold) (*domain.Hold, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if hold.ID == uuid.Nil {
		hold.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("holds").
		Columns(
			"id",
			"tenant_id",
			"resource_id",
			"start_at",
			"end_at",
			"owner_token",
			"status",
			"expires_at",
		).
		Values(
			hold.ID,
			hold.TenantID,
			hold.ResourceID,
			hold.StartAt,
			hold.EndAt,
			hold.OwnerToken,
			hold.Status,
			hold.ExpiresAt,
		).
		Suffix("RETURNING created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	hold.CreatedAt = createdAt.Time

	return hold, nil
}

// GetByID получает холд по ID в рамках тенанта
func (r *Repository) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Hold, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(holdColumns...).
		From("holds").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	hold, err := scanHold(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrHoldNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan hold: %v", ErrScanRow, err)
	}

	return hold, nil
}

// GetActiveByResource получает активные холды ресурса, пересекающие период
// [from, to). Холды с истёкшим expires_at отфильтровываются по стенным часам
// прямо в запросе - корректность не зависит от своевременности sweep'а.
func (r *Repository) GetActiveByResource(ctx context.Context, tenantID string, resourceID uuid.UUID, from, to time.Time, now time.Time) ([]*domain.Hold, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(holdColumns...).
		From("holds").
		Where(squirrel.Eq{"tenant_id": tenantID, "resource_id": resourceID, "status": domain.HoldStatusActive}).
		Where(squirrel.Gt{"expires_at": now}).
		Where(squirrel.Lt{"start_at": to}).
		Where(squirrel.Gt{"end_at": from}).
		OrderBy("start_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByResource - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByResource - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanHolds(rows)
}

// Consume помечает холд использованным и связывает его с бронированием.
// Единственный путь перевода холда в consumed. Условие в WHERE гарантирует,
// что истёкший или уже использованный холд не будет использован повторно.
func (r *Repository) Consume(ctx context.Context, tenantID string, id uuid.UUID, bookingID uuid.UUID, now time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("holds").
		Set("status", domain.HoldStatusConsumed).
		Set("booking_id", bookingID).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID, "status": domain.HoldStatusActive}).
		Where(squirrel.Gt{"expires_at": now}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Consume - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Consume - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Consume - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrHoldNotActive
	}

	return nil
}

// ExpireStale помечает истёкшие активные холды как expired.
// Идемпотентна и безопасна при конкурентном запуске из нескольких воркеров:
// UPDATE с условием по статусу и времени просто не найдёт уже обработанные строки.
func (r *Repository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("holds").
		Set("status", domain.HoldStatusExpired).
		Where(squirrel.Eq{"status": domain.HoldStatusActive}).
		Where(squirrel.LtOrEq{"expires_at": now}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: ExpireStale - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireStale - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireStale - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHold(row rowScanner) (*domain.Hold, error) {
	var hold domain.Hold
	var bookingID uuid.NullUUID
	var createdAt sql.NullTime

	err := row.Scan(
		&hold.ID,
		&hold.TenantID,
		&hold.ResourceID,
		&hold.StartAt,
		&hold.EndAt,
		&hold.OwnerToken,
		&hold.Status,
		&bookingID,
		&createdAt,
		&hold.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	if bookingID.Valid {
		hold.BookingID = &bookingID.UUID
	}
	hold.CreatedAt = createdAt.Time

	return &hold, nil
}

func scanHolds(rows *sql.Rows) ([]*domain.Hold, error) {
	result := make([]*domain.Hold, 0)

	for rows.Next() {
		hold, err := scanHold(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanHolds - scan row: %v", ErrScanRow, err)
		}
		result = append(result, hold)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanHolds - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}
