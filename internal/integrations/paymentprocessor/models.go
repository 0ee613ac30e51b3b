package paymentprocessor

// chargeRequest тело запроса на операцию процессинга
type chargeRequest struct {
	TenantID       string `json:"tenant_id"`
	Amount         int64  `json:"amount"`
	ApplicationFee int64  `json:"application_fee,omitempty"`
	Description    string `json:"description,omitempty"`
}

// refundRequest тело запроса на возврат
type refundRequest struct {
	TenantID  string `json:"tenant_id"`
	ChargeRef string `json:"charge_ref"`
	Amount    int64  `json:"amount"`
}

// ChargeResult результат операции процессинга.
// Status повторяет статус провайдера: requires_action пробрасывается
// вызывающему как есть, движок не ждёт подтверждения.
type ChargeResult struct {
	ProviderRef string `json:"provider_ref"`
	Status      string `json:"status"` // authorized | captured | requires_action | failed
}

// Статусы операций на стороне процессинга
const (
	StatusAuthorized     = "authorized"
	StatusCaptured       = "captured"
	StatusRequiresAction = "requires_action"
	StatusFailed         = "failed"
)
