package booking_actions

import (
	"time"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	"github.com/anshddoshi27/Tithi-sub002/internal/service/bookings/models"
)

// CancelRequest тело запроса отмены
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RefundRequest тело запроса возврата
type RefundRequest struct {
	// Amount сумма возврата в центах; 0 или отсутствие - полный возврат
	Amount int64 `json:"amount,omitempty"`
}

// PaymentResponse запись леджера платежа в HTTP ответе
type PaymentResponse struct {
	ID             string `json:"id"`
	BookingID      string `json:"booking_id"`
	Purpose        string `json:"purpose"`
	Status         string `json:"status"`
	Amount         int64  `json:"amount"`
	ApplicationFee int64  `json:"application_fee,omitempty"`
	ProviderRef    string `json:"provider_ref,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// ActionResponse результат действия над бронированием
type ActionResponse struct {
	Booking  *models.BookingResponse `json:"booking"`
	Payment  *PaymentResponse        `json:"payment,omitempty"`
	Replayed bool                    `json:"replayed"`
}

// RefundResponse результат возврата
type RefundResponse struct {
	RefundID          string `json:"refund_id"`
	PaymentID         string `json:"payment_id"`
	Amount            int64  `json:"amount"`
	RemainingCaptured int64  `json:"remaining_captured"`
	Replayed          bool   `json:"replayed"`
}

func fromDomainPayment(p *domain.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}
	return &PaymentResponse{
		ID:             p.ID.String(),
		BookingID:      p.BookingID.String(),
		Purpose:        string(p.Purpose),
		Status:         string(p.Status),
		Amount:         p.Amount,
		ApplicationFee: p.ApplicationFee,
		ProviderRef:    p.ProviderRef,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
}
