package create_hold

import (
	"time"

	"github.com/google/uuid"
)

// Request входные данные выдачи холда
type Request struct {
	TenantID   string
	ResourceID uuid.UUID

	StartAt time.Time // UTC
	EndAt   time.Time // UTC

	OwnerToken string // токен сессии checkout

	// TTLMinutes время жизни холда; 0 - взять дефолт из конфигурации
	TTLMinutes int
}

// Response результат выдачи холда
type Response struct {
	HoldID    uuid.UUID
	StartAt   time.Time
	EndAt     time.Time
	ExpiresAt time.Time
}
