package payments

import "errors"

var (
	// ErrPaymentNotFound возвращается, когда платёж не найден
	ErrPaymentNotFound = errors.New("payments.repository: payment not found")

	// ErrRefundNotFound возвращается, когда возврат не найден
	ErrRefundNotFound = errors.New("payments.repository: refund not found")

	// ErrDuplicateIdempotencyKey возвращается при нарушении уникальности
	// idempotency-токена в рамках тенанта
	ErrDuplicateIdempotencyKey = errors.New("payments.repository: duplicate idempotency key")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("payments.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("payments.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("payments.repository: failed to scan row")
)
