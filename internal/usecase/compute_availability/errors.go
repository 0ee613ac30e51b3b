package compute_availability

import "errors"

var (
	// ErrResourceNotFound возвращается, когда ресурс не найден или неактивен
	ErrResourceNotFound = errors.New("resource not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена или неактивна
	ErrServiceNotFound = errors.New("service not found")

	// ErrInvalidRange возвращается при некорректном периоде запроса
	ErrInvalidRange = errors.New("invalid availability range")

	// ErrRangeTooWide возвращается, когда период превышает допустимый максимум
	ErrRangeTooWide = errors.New("availability range is too wide")

	// ErrInvalidTimezone возвращается при нерезолвящейся зоне отображения
	ErrInvalidTimezone = errors.New("invalid display timezone")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
