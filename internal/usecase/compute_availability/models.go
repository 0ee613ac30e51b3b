package compute_availability

import (
	"time"

	"github.com/google/uuid"
)

// Request входные данные расчёта доступности
type Request struct {
	TenantID   string
	ResourceID uuid.UUID
	ServiceID  uuid.UUID

	// DurationMinutes длительность слота; 0 - взять из каталога услуг
	DurationMinutes int

	RangeStart time.Time // UTC, включительно
	RangeEnd   time.Time // UTC, исключительно
	Timezone   string    // IANA зона отображения слотов клиенту

	// AfterStart курсор для дозапроса: вернуть слоты строго после этого момента
	AfterStart *time.Time
	// Limit максимум слотов в ответе; 0 - без ограничения
	Limit int
}

// Slot один бронируемый слот
type Slot struct {
	StartAt    time.Time // UTC
	EndAt      time.Time // UTC
	LocalStart string    // начало в зоне отображения, RFC3339
	LocalEnd   string    // конец в зоне отображения, RFC3339
}

// Response результат расчёта доступности
type Response struct {
	ResourceID      uuid.UUID
	ServiceID       uuid.UUID
	DurationMinutes int
	Timezone        string
	Slots           []Slot
}
