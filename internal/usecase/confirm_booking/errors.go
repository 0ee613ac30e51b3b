package confirm_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidStateTransition возвращается, когда бронирование
	// не находится в статусе pending
	ErrInvalidStateTransition = errors.New("booking cannot be confirmed from its current status")

	// ErrPaymentFailed возвращается при терминальном отказе авторизации:
	// платёж и бронирование переведены в failed
	ErrPaymentFailed = errors.New("payment authorization failed")

	// ErrIdempotencyKeyConflict возвращается при повторе idempotency-токена
	// для другого бронирования
	ErrIdempotencyKeyConflict = errors.New("idempotency key reused with a different payload")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
