package domain

// Default configuration values
const (
	DefaultHoldTTLMinutes  = 15
	DefaultSlotStepMinutes = 0 // 0 = шаг равен длительности услуги
)

// Business validation constants
const (
	MinHoldTTLMinutes = 1
	MaxHoldTTLMinutes = 60

	MinServiceDurationMinutes = 5
	MaxServiceDurationMinutes = 480 // 8 часов

	MaxAvailabilityRangeDays = 62 // максимум два месяца за один запрос

	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
