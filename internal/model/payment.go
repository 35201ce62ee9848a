package model

import "time"

// PaymentStatus is the state of a ledger entry.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment is a ledger entry recorded against a reservation reference.
type Payment struct {
	ID                   uint64        `json:"id"`
	ReservationReference string        `json:"reservation_reference"`
	EventTitle           string        `json:"event_title"`
	Amount               Amount        `json:"amount"`
	PaymentMethod        string        `json:"payment_method"`
	Status               PaymentStatus `json:"status"`
	PaidAt               *time.Time    `json:"paid_at"`
	TransactionReference string        `json:"transaction_reference"`
}

// CreatePaymentRequest records a manual payment from the admin back-office.
type CreatePaymentRequest struct {
	ReservationReference string        `json:"reservation_reference" validate:"required"`
	Amount               float64       `json:"amount" validate:"gt=0"`
	PaymentMethod        string        `json:"payment_method" validate:"required"`
	TransactionReference string        `json:"transaction_reference"`
	Status               PaymentStatus `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
}

// PeriodTotal is one bucket of the payment stats endpoint.
type PeriodTotal struct {
	Count  int    `json:"count"`
	Amount Amount `json:"amount"`
}

// PaymentStats is returned by GET /payments/payments/stats/.
type PaymentStats struct {
	Today     PeriodTotal `json:"today"`
	ThisWeek  PeriodTotal `json:"this_week"`
	ThisMonth PeriodTotal `json:"this_month"`
}

// BankingDetail is an admin-managed account shown to guests for manual EFT.
type BankingDetail struct {
	ID            uint64 `json:"id"`
	BankName      string `json:"bank_name" validate:"required"`
	AccountName   string `json:"account_name" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required,numeric"`
	BranchCode    string `json:"branch_code" validate:"required"`
	IsActive      bool   `json:"is_active"`
}
