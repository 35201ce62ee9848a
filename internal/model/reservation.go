package model

import "time"

// ReservationStatus is the server-reported lifecycle state of a reservation.
// The web tier never sets it; it only triggers transitions through API calls.
type ReservationStatus string

const (
	StatusReserved  ReservationStatus = "reserved"  // created, awaiting payment proof
	StatusPending   ReservationStatus = "pending"   // proof uploaded, awaiting admin verification
	StatusConfirmed ReservationStatus = "confirmed" // deposit verified, balance may remain
	StatusCompleted ReservationStatus = "completed" // fully paid
	StatusCancelled ReservationStatus = "cancelled"
	StatusAttended  ReservationStatus = "attended"

	// Legacy values still reported by some API modules.
	StatusPaid    ReservationStatus = "paid"
	StatusExpired ReservationStatus = "expired"
)

// Reservation records a guest's claim on a quantity of one ticket type.
// ReferenceCode is the public lookup key used on the status page, AmountPaid
// is maintained by the API from completed payments and ReservationFee is the
// deposit per ticket.
type Reservation struct {
	ID             uint64            `json:"id"`
	ReferenceCode  string            `json:"reference_code"`
	Status         ReservationStatus `json:"status"`
	TotalAmount    Amount            `json:"total_amount"`
	AmountPaid     Amount            `json:"amount_paid"`
	ReservationFee Amount            `json:"reservation_fee"`
	Quantity       int               `json:"quantity"`
	GuestEmail     string            `json:"guest_email"`
	TicketType     uint64            `json:"ticket_type,omitempty"`
	TicketTypeName string            `json:"ticket_type_name"`
	EventTitle     string            `json:"event_title,omitempty"`
	EventSlug      string            `json:"event_slug,omitempty"`
	CreatedAt      *time.Time        `json:"created_at,omitempty"`
}

// CreateReservationRequest is the body of POST /reservations/reservations/.
type CreateReservationRequest struct {
	TicketType uint64 `json:"ticket_type"`
	Quantity   int    `json:"quantity"`
	GuestEmail string `json:"guest_email"`
}

// VerificationStatus is the admin decision on a payment proof.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// PaymentProof is a file a guest uploaded as evidence of an EFT payment.  It
// is created by the guest and only ever transitioned by an admin.
type PaymentProof struct {
	ID                       uint64             `json:"id"`
	Reservation              uint64             `json:"reservation"`
	ReservationReferenceCode string             `json:"reservation__reference_code"`
	ReservationTotalAmount   Amount             `json:"reservation__total_amount"`
	File                     string             `json:"file"`
	Amount                   Amount             `json:"amount"`
	VerificationStatus       VerificationStatus `json:"verification_status"`
	UploadedAt               *time.Time         `json:"uploaded_at,omitempty"`
	Notes                    string             `json:"notes,omitempty"`
}
