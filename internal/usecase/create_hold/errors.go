package create_hold

import "errors"

var (
	// ErrResourceNotFound возвращается, когда ресурс не найден или неактивен
	ErrResourceNotFound = errors.New("resource not found")

	// ErrConflict возвращается, когда интервал уже занят холдом или бронированием.
	// Ожидаемый исход гонки за слот, а не сбой
	ErrConflict = errors.New("interval is already taken")

	// ErrInvalidInterval возвращается при некорректном интервале холда
	ErrInvalidInterval = errors.New("invalid hold interval")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
