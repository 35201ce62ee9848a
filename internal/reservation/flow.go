package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/parliamentplating/reservations-web/internal/apiclient"
	"github.com/parliamentplating/reservations-web/internal/model"
)

var (
	// ErrInFlight is returned when an upload for the same reference is
	// already running.
	ErrInFlight = errors.New("an upload for this reservation is already in progress")
	// ErrNotAwaitingPayment is returned when the reservation no longer accepts proofs.
	ErrNotAwaitingPayment = errors.New("reservation is not awaiting payment")
)

// API is the part of the API client the upload flow needs.
type API interface {
	ReservationByReference(ctx context.Context, reference string) (model.Reservation, error)
	UploadPaymentProof(ctx context.Context, reservationID uint64, f apiclient.Upload, amount float64) (model.PaymentProof, error)
}

// Outcome is the result of a submission.  Reservation is the re-fetched
// reservation when Refreshed is set, otherwise the one seen before upload.
type Outcome struct {
	Reservation model.Reservation
	Proof       model.PaymentProof
	Declared    float64
	Uploaded    bool
	Refreshed   bool
}

// Flow coordinates proof uploads.  It allows one upload per reference at a
// time and keeps the last selected file of a failed attempt so the guest can
// retry without choosing it again.
type Flow struct {
	mu       sync.Mutex
	inflight map[string]struct{}
	retained map[string]retainedFile
	keep     time.Duration
	now      func() time.Time
}

// Bounds on the selections kept from failed attempts.  The oldest entry is
// evicted first.
const (
	maxRetained      = 64
	maxRetainedBytes = 64 << 20
)

type retainedFile struct {
	file ProofFile
	at   time.Time
}

// NewFlow returns a Flow that keeps failed selections for keep.
func NewFlow(keep time.Duration) *Flow {
	if keep <= 0 {
		keep = 15 * time.Minute
	}
	return &Flow{
		inflight: map[string]struct{}{},
		retained: map[string]retainedFile{},
		keep:     keep,
		now:      time.Now,
	}
}

// Selected returns the file kept from a failed attempt, if any.
func (f *Flow) Selected(reference string) (ProofFile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruneLocked()
	r, ok := f.retained[reference]
	return r.file, ok
}

func (f *Flow) claim(reference string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.inflight[reference]; busy {
		return false
	}
	f.inflight[reference] = struct{}{}
	return true
}

func (f *Flow) release(reference string) {
	f.mu.Lock()
	delete(f.inflight, reference)
	f.mu.Unlock()
}

func (f *Flow) retain(reference string, file ProofFile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruneLocked()
	delete(f.retained, reference)
	for len(f.retained) > 0 && (len(f.retained) >= maxRetained || f.retainedBytesLocked()+len(file.Data) > maxRetainedBytes) {
		f.evictOldestLocked()
	}
	f.retained[reference] = retainedFile{file: file, at: f.now()}
}

func (f *Flow) forget(reference string) {
	f.mu.Lock()
	delete(f.retained, reference)
	f.mu.Unlock()
}

func (f *Flow) retainedBytesLocked() int {
	n := 0
	for _, r := range f.retained {
		n += len(r.file.Data)
	}
	return n
}

func (f *Flow) evictOldestLocked() {
	var (
		oldest string
		at     time.Time
		found  bool
	)
	for k, r := range f.retained {
		if !found || r.at.Before(at) {
			oldest, at, found = k, r.at, true
		}
	}
	delete(f.retained, oldest)
}

func (f *Flow) pruneLocked() {
	cutoff := f.now().Add(-f.keep)
	for k, r := range f.retained {
		if r.at.Before(cutoff) {
			delete(f.retained, k)
		}
	}
}

// Submit validates the file, uploads it with the declared amount and
// re-fetches the reservation.  A nil file reuses the retained selection.
// Validation happens before any call to api.
func (f *Flow) Submit(ctx context.Context, api API, reference string, opt PaymentOption, file *ProofFile) (Outcome, error) {
	if !f.claim(reference) {
		return Outcome{}, ErrInFlight
	}
	defer f.release(reference)

	if file == nil {
		if kept, ok := f.Selected(reference); ok {
			file = &kept
		}
	}
	if err := ValidateProof(file); err != nil {
		return Outcome{}, err
	}
	if opt != PayFull && opt != PayDeposit {
		return Outcome{}, &ValidationError{Field: "payment_option", Message: "Payment option must be full or deposit"}
	}

	before, err := api.ReservationByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, apiclient.ErrNotFound) {
			f.forget(reference)
		} else {
			f.retain(reference, *file)
		}
		return Outcome{}, err
	}
	if before.ReferenceCode != reference {
		f.forget(reference)
		return Outcome{}, fmt.Errorf("reservation %q: %w", reference, apiclient.ErrNotFound)
	}
	out := Outcome{Reservation: before}
	if state, _ := StateOf(before.Status); state != AwaitingPayment {
		f.forget(reference)
		return out, ErrNotAwaitingPayment
	}

	out.Declared = DeclaredAmount(before, opt)
	up := apiclient.Upload{Name: file.Name, ContentType: file.ContentType, Data: file.Data}
	proof, err := api.UploadPaymentProof(ctx, before.ID, up, out.Declared)
	if err != nil {
		f.retain(reference, *file)
		return out, err
	}
	out.Proof = proof
	out.Uploaded = true
	f.forget(reference)

	after, err := api.ReservationByReference(ctx, reference)
	if err != nil {
		return out, fmt.Errorf("refresh after upload: %w", err)
	}
	out.Reservation = after
	out.Refreshed = true
	return out, nil
}
