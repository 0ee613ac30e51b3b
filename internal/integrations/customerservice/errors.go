package customerservice

import "errors"

var (
	// ErrCustomerNotFound возвращается, когда клиент не найден
	ErrCustomerNotFound = errors.New("customerservice client: customer not found")

	// ErrCustomerBlocked возвращается, когда клиент заблокирован тенантом
	ErrCustomerBlocked = errors.New("customerservice client: customer is blocked")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("customerservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("customerservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation:
	// customer service недоступен, бронирование продолжается без проверки
	ErrServiceDegraded = errors.New("customerservice unavailable: graceful degradation applied")
)
