package create_booking

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
)

// Request входные данные создания бронирования
type Request struct {
	TenantID   string
	ResourceID uuid.UUID
	CustomerID string
	ServiceID  uuid.UUID

	// HoldID необязателен: бронирование создаётся либо из холда,
	// либо напрямую на интервал
	HoldID *uuid.UUID
	// OwnerToken токен сессии checkout, владеющей холдом
	OwnerToken string

	StartAt  time.Time // UTC; при создании из холда игнорируется
	Timezone string    // IANA зона для отображения клиенту

	// IdempotencyKey клиентский токен, уникален в рамках тенанта
	IdempotencyKey string
}

// Fingerprint детерминированный отпечаток полезной нагрузки запроса.
// Повтор токена с другим отпечатком - конфликт, а не replay.
func (r *Request) Fingerprint() string {
	holdID := ""
	if r.HoldID != nil {
		holdID = r.HoldID.String()
	}

	payload := fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		r.ResourceID, r.CustomerID, r.ServiceID, holdID,
		r.StartAt.UTC().Format(time.RFC3339), r.Timezone)

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Response результат создания бронирования
type Response struct {
	Booking *domain.Booking
	// Replayed true, если вернулось ранее созданное бронирование
	// по повтору idempotency-токена
	Replayed bool
}
