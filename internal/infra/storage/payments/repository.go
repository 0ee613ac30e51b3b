package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	"github.com/anshddoshi27/Tithi-sub002/pkg/dbmetrics"
	"github.com/anshddoshi27/Tithi-sub002/pkg/psqlbuilder"
)

const pgUniqueViolation = "23505"

var paymentColumns = []string{
	"id",
	"tenant_id",
	"booking_id",
	"purpose",
	"status",
	"amount",
	"application_fee",
	"idempotency_key",
	"provider_ref",
	"created_at",
	"updated_at",
}

var refundColumns = []string{
	"id",
	"tenant_id",
	"payment_id",
	"booking_id",
	"amount",
	"idempotency_key",
	"provider_ref",
	"created_at",
}

// Repository репозиторий платёжного леджера (payments + refunds)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория платежей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create вставляет новую запись леджера
// Уникальность idempotency-токена в рамках тенанта обеспечивается индексом
func (r *Repository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("payments").
		Columns(
			"id",
			"tenant_id",
			"booking_id",
			"purpose",
			"status",
			"amount",
			"application_fee",
			"idempotency_key",
			"provider_ref",
		).
		Values(
			payment.ID,
			payment.TenantID,
			payment.BookingID,
			payment.Purpose,
			payment.Status,
			payment.Amount,
			payment.ApplicationFee,
			payment.IdempotencyKey,
			payment.ProviderRef,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return nil, ErrDuplicateIdempotencyKey
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	payment.CreatedAt = createdAt.Time
	payment.UpdatedAt = updatedAt.Time

	return payment, nil
}

// GetByID получает платёж по ID в рамках тенанта
func (r *Repository) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	payment, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan payment: %v", ErrScanRow, err)
	}

	return payment, nil
}

// GetByIdempotencyKey получает платёж по idempotency-токену тенанта
func (r *Repository) GetByIdempotencyKey(ctx context.Context, tenantID string, key string) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"tenant_id": tenantID, "idempotency_key": key}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByIdempotencyKey - build select query: %v", ErrBuildQuery, err)
	}

	payment, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIdempotencyKey - scan payment: %v", ErrScanRow, err)
	}

	return payment, nil
}

// ListByBookingID получает все записи леджера бронирования
func (r *Repository) ListByBookingID(ctx context.Context, tenantID string, bookingID uuid.UUID) ([]*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"tenant_id": tenantID, "booking_id": bookingID}).
		OrderBy("created_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByBookingID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByBookingID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanPayments(rows)
}

// GetByBookingAndPurpose получает последнюю запись леджера бронирования
// с указанным назначением (authorization, capture, ...)
func (r *Repository) GetByBookingAndPurpose(ctx context.Context, tenantID string, bookingID uuid.UUID, purpose domain.PaymentPurpose) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"tenant_id": tenantID, "booking_id": bookingID, "purpose": purpose}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingAndPurpose - build select query: %v", ErrBuildQuery, err)
	}

	payment, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBookingAndPurpose - scan payment: %v", ErrScanRow, err)
	}

	return payment, nil
}

// UpdateStatus обновляет статус платежа и ссылку на операцию провайдера
func (r *Repository) UpdateStatus(ctx context.Context, tenantID string, id uuid.UUID, status domain.PaymentStatus, providerRef string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("payments").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID})

	if providerRef != "" {
		updateBuilder = updateBuilder.Set("provider_ref", providerRef)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

// CreateRefund вставляет запись возврата
func (r *Repository) CreateRefund(ctx context.Context, refund *domain.Refund) (*domain.Refund, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if refund.ID == uuid.Nil {
		refund.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("refunds").
		Columns(
			"id",
			"tenant_id",
			"payment_id",
			"booking_id",
			"amount",
			"idempotency_key",
			"provider_ref",
		).
		Values(
			refund.ID,
			refund.TenantID,
			refund.PaymentID,
			refund.BookingID,
			refund.Amount,
			refund.IdempotencyKey,
			refund.ProviderRef,
		).
		Suffix("RETURNING created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateRefund - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return nil, ErrDuplicateIdempotencyKey
		}
		return nil, fmt.Errorf("%w: CreateRefund - execute insert: %v", ErrExecQuery, err)
	}

	refund.CreatedAt = createdAt.Time

	return refund, nil
}

// GetRefundByIdempotencyKey получает возврат по idempotency-токену тенанта
func (r *Repository) GetRefundByIdempotencyKey(ctx context.Context, tenantID string, key string) (*domain.Refund, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(refundColumns...).
		From("refunds").
		Where(squirrel.Eq{"tenant_id": tenantID, "idempotency_key": key}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetRefundByIdempotencyKey - build select query: %v", ErrBuildQuery, err)
	}

	var refund domain.Refund
	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&refund.ID,
		&refund.TenantID,
		&refund.PaymentID,
		&refund.BookingID,
		&refund.Amount,
		&refund.IdempotencyKey,
		&refund.ProviderRef,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRefundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetRefundByIdempotencyKey - scan refund: %v", ErrScanRow, err)
	}

	refund.CreatedAt = createdAt.Time

	return &refund, nil
}

// SumRefundsByPaymentID возвращает суммарный объём возвратов по платежу
// Используется для вычисления эффективной захваченной суммы
func (r *Repository) SumRefundsByPaymentID(ctx context.Context, tenantID string, paymentID uuid.UUID) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COALESCE(SUM(amount), 0)").
		From("refunds").
		Where(squirrel.Eq{"tenant_id": tenantID, "payment_id": paymentID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: SumRefundsByPaymentID - build select query: %v", ErrBuildQuery, err)
	}

	var total int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: SumRefundsByPaymentID - scan sum: %v", ErrScanRow, err)
	}

	return total, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var payment domain.Payment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&payment.ID,
		&payment.TenantID,
		&payment.BookingID,
		&payment.Purpose,
		&payment.Status,
		&payment.Amount,
		&payment.ApplicationFee,
		&payment.IdempotencyKey,
		&payment.ProviderRef,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	payment.CreatedAt = createdAt.Time
	payment.UpdatedAt = updatedAt.Time

	return &payment, nil
}

func scanPayments(rows *sql.Rows) ([]*domain.Payment, error) {
	result := make([]*domain.Payment, 0)

	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanPayments - scan row: %v", ErrScanRow, err)
		}
		result = append(result, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanPayments - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}
