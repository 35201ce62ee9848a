// Package reservation turns a reservation fetched from the API into what the
// status page may show and offer.  It never changes server state on its own:
// a new view only ever comes from projecting a freshly fetched reservation.
package reservation

import (
	"math"

	"github.com/parliamentplating/reservations-web/internal/model"
)

// State is a presentation state of the status page.
type State string

const (
	AwaitingPayment     State = "awaiting_payment"
	VerificationPending State = "verification_pending"
	PartiallyConfirmed  State = "partially_confirmed"
	FullyConfirmed      State = "fully_confirmed"
	Cancelled           State = "cancelled"
)

// Title is the heading shown for the state.
func (s State) Title() string {
	switch s {
	case AwaitingPayment:
		return "Awaiting Payment"
	case VerificationPending:
		return "Payment Verification Pending"
	case PartiallyConfirmed:
		return "Reservation Confirmed"
	case FullyConfirmed:
		return "Fully Paid"
	case Cancelled:
		return "Reservation Cancelled"
	}
	return string(s)
}

// Action is something the guest may do from the status page.
type Action string

const (
	ChoosePaymentOption Action = "choose_payment_option"
	UploadProof         Action = "upload_proof"
	ViewBalance         Action = "view_balance"
)

// balanceEpsilon absorbs rounding noise from decimal strings.
const balanceEpsilon = 0.01

// Outstanding is the balance still owed.  Differences at or below one cent
// count as settled.  List and detail views both use it.
func Outstanding(total, paid float64) float64 {
	if d := total - paid; d > balanceEpsilon {
		return d
	}
	return 0
}

// View is the projection of one reservation.
type View struct {
	Reference     string                  `json:"reference"`
	Status        model.ReservationStatus `json:"status"`
	State         State                   `json:"state"`
	Title         string                  `json:"title"`
	Attended      bool                    `json:"attended,omitempty"`
	Actions       []Action                `json:"actions"`
	TotalAmount   float64                 `json:"total_amount"`
	AmountPaid    float64                 `json:"amount_paid"`
	Outstanding   float64                 `json:"outstanding"`
	DepositAmount float64                 `json:"deposit_amount"`
	ActiveBank    *model.BankingDetail    `json:"banking_detail,omitempty"`
}

// Can reports whether the action is permitted.
func (v View) Can(a Action) bool {
	for _, x := range v.Actions {
		if x == a {
			return true
		}
	}
	return false
}

// StateOf maps a server status to exactly one view state.  attended reports
// the attended variant of FullyConfirmed.  Unknown statuses are treated as
// awaiting a decision so that nothing is offered for them.
func StateOf(s model.ReservationStatus) (state State, attended bool) {
	switch s {
	case model.StatusReserved:
		return AwaitingPayment, false
	case model.StatusPending:
		return VerificationPending, false
	case model.StatusConfirmed:
		return PartiallyConfirmed, false
	case model.StatusCompleted, model.StatusPaid:
		return FullyConfirmed, false
	case model.StatusAttended:
		return FullyConfirmed, true
	case model.StatusCancelled, model.StatusExpired:
		return Cancelled, false
	default:
		return VerificationPending, false
	}
}

// Project builds the view for r.  banks are the banking details known to the
// page; the first active one (or the first at all) is shown for EFT.
func Project(r model.Reservation, banks []model.BankingDetail) View {
	state, attended := StateOf(r.Status)
	total := r.TotalAmount.Float64()
	paid := r.AmountPaid.Float64()

	v := View{
		Reference:     r.ReferenceCode,
		Status:        r.Status,
		State:         state,
		Title:         state.Title(),
		Attended:      attended,
		Actions:       []Action{},
		TotalAmount:   total,
		AmountPaid:    paid,
		Outstanding:   Outstanding(total, paid),
		DepositAmount: depositAmount(r),
	}

	switch state {
	case AwaitingPayment:
		v.Actions = append(v.Actions, ChoosePaymentOption, UploadProof)
		v.ActiveBank = ActiveBank(banks)
	case PartiallyConfirmed:
		if v.Outstanding > 0 {
			v.Actions = append(v.Actions, ViewBalance)
			v.ActiveBank = ActiveBank(banks)
		}
	}
	return v
}

// ActiveBank picks the account guests should pay into.
func ActiveBank(banks []model.BankingDetail) *model.BankingDetail {
	for i := range banks {
		if banks[i].IsActive {
			b := banks[i]
			return &b
		}
	}
	if len(banks) > 0 {
		b := banks[0]
		return &b
	}
	return nil
}

// PaymentOption selects which amount the guest declares with a proof.
type PaymentOption string

const (
	PayFull    PaymentOption = "full"
	PayDeposit PaymentOption = "deposit"
)

// ParsePaymentOption accepts "full" or "deposit"; empty defaults to full.
func ParsePaymentOption(s string) (PaymentOption, error) {
	switch PaymentOption(s) {
	case "", PayFull:
		return PayFull, nil
	case PayDeposit:
		return PayDeposit, nil
	}
	return "", &ValidationError{Field: "payment_option", Message: "Payment option must be full or deposit"}
}

// DeclaredAmount is the amount sent with a proof.  The API decides whether
// it matches what was actually paid.
func DeclaredAmount(r model.Reservation, opt PaymentOption) float64 {
	if opt == PayDeposit {
		return depositAmount(r)
	}
	return r.TotalAmount.Float64()
}

func depositAmount(r model.Reservation) float64 {
	return round2(r.ReservationFee.Float64() * float64(r.Quantity))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
