package catalogservice

import "github.com/google/uuid"

// Resource бронируемый ресурс из каталога
type Resource struct {
	ID       uuid.UUID `json:"id"`
	TenantID string    `json:"tenant_id"`
	Name     string    `json:"name"`
	Active   bool      `json:"active"`
}

// Service услуга из каталога. Снапшот (имя, цена, длительность)
// замораживается в бронировании в момент создания.
type Service struct {
	ID              uuid.UUID `json:"id"`
	TenantID        string    `json:"tenant_id"`
	Name            string    `json:"name"`
	Price           int64     `json:"price"`
	DurationMinutes int       `json:"duration_minutes"`
	Active          bool      `json:"active"`
}
