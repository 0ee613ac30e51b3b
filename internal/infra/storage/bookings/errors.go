package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("bookings.repository: booking not found")

	// ErrBookingOverlap возвращается, когда exclusion constraint БД отклонил
	// вставку пересекающегося интервала - проигравший конкурентной гонки
	ErrBookingOverlap = errors.New("bookings.repository: overlapping booking interval")

	// ErrDuplicateIdempotencyKey возвращается при нарушении уникальности
	// idempotency-токена в рамках тенанта
	ErrDuplicateIdempotencyKey = errors.New("bookings.repository: duplicate idempotency key")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("bookings.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("bookings.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("bookings.repository: failed to scan row")
)
