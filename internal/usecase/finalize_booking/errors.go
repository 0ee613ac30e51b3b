package finalize_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidStateTransition возвращается при недопустимом переходе:
	// действие не выполняется и не имеет побочных эффектов
	ErrInvalidStateTransition = errors.New("action is not allowed from the current booking status")

	// ErrNoAuthorizedPayment возвращается при Complete без авторизованного платежа
	ErrNoAuthorizedPayment = errors.New("booking has no authorized payment to capture")

	// ErrPaymentFailed возвращается при терминальном отказе процессинга.
	// Статус бронирования не меняется, повтор с тем же ключом переиграет списание
	ErrPaymentFailed = errors.New("payment charge failed")

	// ErrPaymentProcessor возвращается при недоступности процессинга:
	// транзиентная ошибка, действие можно повторить с тем же ключом
	ErrPaymentProcessor = errors.New("payment processor unavailable")

	// ErrIdempotencyKeyConflict возвращается при повторе idempotency-токена
	// для другого действия или бронирования
	ErrIdempotencyKeyConflict = errors.New("idempotency key reused with a different payload")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
