package customerservice

// Customer клиент тенанта. Движок хранит только идентификатор,
// остальные данные живут на стороне customer service.
type Customer struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Blocked  bool   `json:"blocked"`
}
