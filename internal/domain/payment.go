package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the status of a payment ledger entry
type PaymentStatus string

const (
	PaymentStatusRequiresAction PaymentStatus = "requires_action"
	PaymentStatusAuthorized     PaymentStatus = "authorized"
	PaymentStatusCaptured       PaymentStatus = "captured"
	PaymentStatusRefunded       PaymentStatus = "refunded"
	PaymentStatusCanceled       PaymentStatus = "canceled"
	PaymentStatusFailed         PaymentStatus = "failed"
)

// IsTerminal returns true if the payment can no longer change state.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusRefunded, PaymentStatusCanceled, PaymentStatusFailed:
		return true
	}
	return false
}

// PaymentPurpose distinguishes ledger entries of one booking: an
// authorization, a completion capture and a no-show fee are separate rows.
type PaymentPurpose string

const (
	PurposeAuthorization   PaymentPurpose = "authorization"
	PurposeCapture         PaymentPurpose = "capture"
	PurposeNoShowFee       PaymentPurpose = "no_show_fee"
	PurposeCancellationFee PaymentPurpose = "cancellation_fee"
)

// Payment is one ledger entry of a booking. A booking owns several Payment
// rows over its life but at most one non-terminal row per purpose.
type Payment struct {
	ID        uuid.UUID
	TenantID  string
	BookingID uuid.UUID

	Purpose PaymentPurpose
	Status  PaymentStatus

	Amount         int64 // в минимальных единицах валюты (центы)
	ApplicationFee int64 // комиссия платформы, входит в Amount

	IdempotencyKey string // уникален в рамках tenant + провайдера
	ProviderRef    string // идентификатор операции на стороне процессинга

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Refund references a captured Payment and decrements its effective total.
// Refunds never change the booking status away from completed.
type Refund struct {
	ID        uuid.UUID
	TenantID  string
	PaymentID uuid.UUID
	BookingID uuid.UUID

	Amount         int64
	IdempotencyKey string
	ProviderRef    string

	CreatedAt time.Time
}

// FeePolicy holds the configured fee parameters applied by settle actions.
// Percent values are whole percents (1.0 == 1%); flat values are cents.
type FeePolicy struct {
	PlatformFeePercent     float64
	NoShowFeePercent       float64
	NoShowFeeFlat          int64
	CancellationFeePercent float64
	CancellationFeeFlat    int64
}

// PlatformFee returns the platform's cut of a captured amount.
func (p FeePolicy) PlatformFee(amount int64) int64 {
	return percentOf(amount, p.PlatformFeePercent)
}

// NoShowFee returns the fee charged for a no-show, given the frozen service price.
// A percentage fee wins over a flat fee when both are configured.
func (p FeePolicy) NoShowFee(servicePrice int64) int64 {
	if p.NoShowFeePercent > 0 {
		return percentOf(servicePrice, p.NoShowFeePercent)
	}
	return p.NoShowFeeFlat
}

// CancellationFee returns the fee charged for a cancellation.
func (p FeePolicy) CancellationFee(servicePrice int64) int64 {
	if p.CancellationFeePercent > 0 {
		return percentOf(servicePrice, p.CancellationFeePercent)
	}
	return p.CancellationFeeFlat
}

func percentOf(amount int64, percent float64) int64 {
	return int64(math.Round(float64(amount) * percent / 100))
}
