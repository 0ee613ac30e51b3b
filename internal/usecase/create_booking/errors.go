package create_booking

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена или неактивна
	ErrServiceNotFound = errors.New("service not found")

	// ErrCustomerNotFound возвращается, когда клиент не найден
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrCustomerBlocked возвращается, когда клиент заблокирован тенантом
	ErrCustomerBlocked = errors.New("customer is blocked")

	// ErrConflict возвращается, когда интервал уже занят блокирующим
	// бронированием. Ожидаемый исход гонки за слот
	ErrConflict = errors.New("interval is already taken")

	// ErrHoldNotActive возвращается при попытке использовать истёкший
	// или уже использованный холд
	ErrHoldNotActive = errors.New("hold is not active")

	// ErrHoldOwnerMismatch возвращается, когда холд принадлежит другой сессии
	ErrHoldOwnerMismatch = errors.New("hold belongs to another owner")

	// ErrIdempotencyKeyConflict возвращается при повторе idempotency-токена
	// с другой полезной нагрузкой запроса
	ErrIdempotencyKeyConflict = errors.New("idempotency key reused with a different payload")

	// ErrInvalidInterval возвращается при некорректном интервале бронирования
	ErrInvalidInterval = errors.New("invalid booking interval")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
