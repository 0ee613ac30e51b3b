package refund_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidStateTransition возвращается, когда бронирование не завершено:
	// возврат возможен только из completed
	ErrInvalidStateTransition = errors.New("refund is only allowed for a completed booking")

	// ErrNoCapturedPayment возвращается при возврате без захваченного платежа
	ErrNoCapturedPayment = errors.New("booking has no captured payment to refund")

	// ErrRefundExceedsCaptured возвращается, когда сумма возврата превышает
	// эффективный захваченный остаток
	ErrRefundExceedsCaptured = errors.New("refund amount exceeds the captured total")

	// ErrPaymentFailed возвращается при терминальном отказе процессинга
	ErrPaymentFailed = errors.New("refund failed")

	// ErrPaymentProcessor возвращается при недоступности процессинга:
	// транзиентная ошибка, возврат можно повторить с тем же ключом
	ErrPaymentProcessor = errors.New("payment processor unavailable")

	// ErrIdempotencyKeyConflict возвращается при повторе idempotency-токена
	// для другого бронирования
	ErrIdempotencyKeyConflict = errors.New("idempotency key reused with a different payload")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
