package rules

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

var ruleColumns = []string{
	"id",
	"tenant_id",
	"resource_id",
	"kind",
	"start_time",
	"end_time",
	"timezone",
	"days_of_week",
	"date_from",
	"date_to",
	"service_allow_ids",
	"service_deny_ids",
	"priority",
	"active",
	"created_at",
	"updated_at",
}

// Repository репозиторий правил доступности
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория правил
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новое правило доступности
func (r *Repository) Create(ctx context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("availability_rules").
		Columns(
			"id",
			"tenant_id",
			"resource_id",
			"kind",
			"start_time",
			"end_time",
			"timezone",
			"days_of_week",
			"date_from",
			"date_to",
			"service_allow_ids",
			"service_deny_ids",
			"priority",
			"active",
		).
		Values(
			rule.ID,
			rule.TenantID,
			rule.ResourceID,
			rule.Kind,
			rule.StartTime,
			rule.EndTime,
			rule.Timezone,
			pq.Array(weekdaysToInts(rule.DaysOfWeek)),
			rule.DateFrom,
			rule.DateTo,
			pq.Array(uuidsToStrings(rule.ServiceAllowIDs)),
			pq.Array(uuidsToStrings(rule.ServiceDenyIDs)),
			rule.Priority,
			rule.Active,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return rule, nil
}

// CreateBatch сохраняет пачку правил одним запросом
// Используется операцией copy-week для материализации one_time правил
func (r *Repository) CreateBatch(ctx context.Context, batch []*domain.AvailabilityRule) error {
	if len(batch) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("availability_rules").
		Columns(
			"id",
			"tenant_id",
			"resource_id",
			"kind",
			"start_time",
			"end_time",
			"timezone",
			"days_of_week",
			"date_from",
			"date_to",
			"service_allow_ids",
			"service_deny_ids",
			"priority",
			"active",
		)

	for _, rule := range batch {
		if rule.ID == uuid.Nil {
			rule.ID = uuid.New()
		}
		insertBuilder = insertBuilder.Values(
			rule.ID,
			rule.TenantID,
			rule.ResourceID,
			rule.Kind,
			rule.StartTime,
			rule.EndTime,
			rule.Timezone,
			pq.Array(weekdaysToInts(rule.DaysOfWeek)),
			rule.DateFrom,
			rule.DateTo,
			pq.Array(uuidsToStrings(rule.ServiceAllowIDs)),
			pq.Array(uuidsToStrings(rule.ServiceDenyIDs)),
			rule.Priority,
			rule.Active,
		)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CreateBatch - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByID получает правило по ID в рамках тенанта
func (r *Repository) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.AvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("availability_rules").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	rule, err := scanRule(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan rule: %v", ErrScanRow, err)
	}

	return rule, nil
}

// GetActiveByResource получает активные правила ресурса, окно действия которых
// пересекает период [from, to]
func (r *Repository) GetActiveByResource(ctx context.Context, tenantID string, resourceID uuid.UUID, from, to time.Time) ([]*domain.AvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("availability_rules").
		Where(squirrel.Eq{"tenant_id": tenantID, "resource_id": resourceID, "active": true}).
		Where(squirrel.Or{
			squirrel.Eq{"date_from": nil},
			squirrel.LtOrEq{"date_from": to},
		}).
		Where(squirrel.Or{
			squirrel.Eq{"date_to": nil},
			squirrel.GtOrEq{"date_to": from},
		}).
		OrderBy("priority DESC, created_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByResource - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByResource - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanRules(rows)
}

// ListActiveByResource получает полный набор активных правил ресурса без
// фильтра по датам. Именно этот набор уходит в кэш: кэшировать срез,
// отфильтрованный под период одного запроса, нельзя - другой период получит
// из кэша неполные правила
func (r *Repository) ListActiveByResource(ctx context.Context, tenantID string, resourceID uuid.UUID) ([]*domain.AvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("availability_rules").
		Where(squirrel.Eq{"tenant_id": tenantID, "resource_id": resourceID, "active": true}).
		OrderBy("priority DESC, created_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByResource - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByResource - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanRules(rows)
}

// ListByResource получает все правила ресурса (включая неактивные)
func (r *Repository) ListByResource(ctx context.Context, tenantID string, resourceID uuid.UUID) ([]*domain.AvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("availability_rules").
		Where(squirrel.Eq{"tenant_id": tenantID, "resource_id": resourceID}).
		OrderBy("priority DESC, created_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByResource - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByResource - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanRules(rows)
}

// Deactivate помечает правило неактивным (физическое удаление запрещено,
// история правил сохраняется для аудита)
func (r *Repository) Deactivate(ctx context.Context, tenantID string, id uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_rules").
		Set("active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Deactivate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Deactivate - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Deactivate - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrRuleNotFound
	}

	return nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (*domain.AvailabilityRule, error) {
	var rule domain.AvailabilityRule
	var days pq.Int64Array
	var allowIDs, denyIDs pq.StringArray
	var dateFrom, dateTo sql.NullTime
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&rule.ID,
		&rule.TenantID,
		&rule.ResourceID,
		&rule.Kind,
		&rule.StartTime,
		&rule.EndTime,
		&rule.Timezone,
		&days,
		&dateFrom,
		&dateTo,
		&allowIDs,
		&denyIDs,
		&rule.Priority,
		&rule.Active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.DaysOfWeek = intsToWeekdays(days)
	rule.ServiceAllowIDs, err = stringsToUUIDs(allowIDs)
	if err != nil {
		return nil, err
	}
	rule.ServiceDenyIDs, err = stringsToUUIDs(denyIDs)
	if err != nil {
		return nil, err
	}
	if dateFrom.Valid {
		rule.DateFrom = &dateFrom.Time
	}
	if dateTo.Valid {
		rule.DateTo = &dateTo.Time
	}
	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return &rule, nil
}

func scanRules(rows *sql.Rows) ([]*domain.AvailabilityRule, error) {
	result := make([]*domain.AvailabilityRule, 0)

	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanRules - scan row: %v", ErrScanRow, err)
		}
		result = append(result, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanRules - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

func weekdaysToInts(days []time.Weekday) []int64 {
	result := make([]int64, len(days))
	for i, d := range days {
		result[i] = int64(d)
	}
	return result
}

func intsToWeekdays(values []int64) []time.Weekday {
	if len(values) == 0 {
		return nil
	}
	result := make([]time.Weekday, len(values))
	for i, v := range values {
		result[i] = time.Weekday(v)
	}
	return result
}

func uuidsToStrings(ids []uuid.UUID) []string {
	result := make([]string, len(ids))
	for i, id := range ids {
		result[i] = id.String()
	}
	return result
}

func stringsToUUIDs(values []string) ([]uuid.UUID, error) {
	if len(values) == 0 {
		return nil, nil
	}
	result := make([]uuid.UUID, len(values))
	for i, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		result[i] = id
	}
	return result, nil
}
