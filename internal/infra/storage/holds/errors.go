package holds

import "errors"

var (
	// ErrHoldNotFound возвращается, когда холд не найден
	ErrHoldNotFound = errors.New("holds.repository: hold not found")

	// ErrHoldNotActive возвращается при попытке consume холда,
	// который уже истёк или был использован
	ErrHoldNotActive = errors.New("holds.repository: hold is not active")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("holds.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("holds.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("holds.repository: failed to scan row")
)
