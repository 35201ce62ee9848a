package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/parliamentplating/reservations-web/internal/model"
)

// CreateReservation books tickets; the response carries the reference code.
func (a *API) CreateReservation(ctx context.Context, req model.CreateReservationRequest) (model.Reservation, error) {
	var r model.Reservation
	err := a.sendJSON(ctx, http.MethodPost, "/reservations/reservations/", req, &r)
	return r, err
}

// Reservations lists the reservations visible to the session: all of them
// for staff, the guest's own otherwise.
func (a *API) Reservations(ctx context.Context) (List[model.Reservation], error) {
	return getList[model.Reservation](ctx, a, "/reservations/reservations/", nil)
}

// ReservationByReference looks a reservation up by its public reference.
// The API filters by query parameter and may answer with a list of either
// shape.  Only an exact reference match counts; anything else is ErrNotFound.
func (a *API) ReservationByReference(ctx context.Context, reference string) (model.Reservation, error) {
	q := url.Values{"reference_code": {reference}}
	list, err := getList[model.Reservation](ctx, a, "/reservations/reservations/", q)
	if err != nil {
		return model.Reservation{}, err
	}
	for _, r := range list.Items {
		if r.ReferenceCode == reference {
			return r, nil
		}
	}
	return model.Reservation{}, fmt.Errorf("reservation %q: %w", reference, ErrNotFound)
}

// Upload is a file held in memory for a multipart request.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadPaymentProof posts {file, amount} for a reservation using the
// upload timeout.
func (a *API) UploadPaymentProof(ctx context.Context, reservationID uint64, f Upload, amount float64) (model.PaymentProof, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	h.Set("Content-Type", f.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return model.PaymentProof{}, err
	}
	if _, err := part.Write(f.Data); err != nil {
		return model.PaymentProof{}, err
	}
	if err := mw.WriteField("amount", strconv.FormatFloat(amount, 'f', -1, 64)); err != nil {
		return model.PaymentProof{}, err
	}
	if err := mw.Close(); err != nil {
		return model.PaymentProof{}, err
	}

	cl := call{
		method:      http.MethodPost,
		path:        fmt.Sprintf("/reservations/reservations/%d/upload_payment_proof/", reservationID),
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
		upload:      true,
	}
	var proof model.PaymentProof
	err = a.do(ctx, cl, &proof)
	return proof, err
}

// PaymentProofs lists proofs, optionally filtered by verification status.
func (a *API) PaymentProofs(ctx context.Context, status model.VerificationStatus) (List[model.PaymentProof], error) {
	var q url.Values
	if status != "" {
		q = url.Values{"verification_status": {string(status)}}
	}
	return getList[model.PaymentProof](ctx, a, "/reservations/payment-proofs/", q)
}

// ApproveProof asks the API to accept a proof.  The API records the payment
// and advances the reservation; callers must re-fetch to observe it.
func (a *API) ApproveProof(ctx context.Context, proofID uint64) error {
	return a.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/reservations/payment-proofs/%d/approve/", proofID), nil, nil)
}

// RejectProof rejects a proof with a reason shown to the guest.
func (a *API) RejectProof(ctx context.Context, proofID uint64, notes string) error {
	return a.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/reservations/payment-proofs/%d/reject/", proofID), map[string]string{"notes": notes}, nil)
}
