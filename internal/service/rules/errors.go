package rules

import "errors"

var (
	// ErrRuleNotFound возвращается, когда правило не найдено
	ErrRuleNotFound = errors.New("rule not found")

	// ErrInvalidRule возвращается при нарушении инвариантов правила
	ErrInvalidRule = errors.New("invalid availability rule")

	// ErrInvalidWeek возвращается при некорректных границах недели copy-week
	ErrInvalidWeek = errors.New("invalid copy-week boundaries")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
