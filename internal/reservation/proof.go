package reservation

import (
	"fmt"
	"strings"
)

// MaxProofSize is the largest proof file accepted (10 MiB).
const MaxProofSize = 10 << 20

var allowedProofTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// ProofFile is a payment proof selected by the guest.
type ProofFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// ValidationError is a local input error.  It is raised before any network
// call and rendered inline next to Field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

// ValidateProof checks the declared type and size of a proof file.
func ValidateProof(f *ProofFile) error {
	if f == nil || f.Name == "" {
		return &ValidationError{Field: "file", Message: "Please select a file to upload"}
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(f.ContentType, ";", 2)[0]))
	if !allowedProofTypes[ct] {
		return &ValidationError{Field: "file", Message: "Please upload a JPG, PNG or PDF file"}
	}
	size := f.Size
	if n := int64(len(f.Data)); n > size {
		size = n
	}
	if size > MaxProofSize {
		return &ValidationError{Field: "file", Message: fmt.Sprintf("File must be smaller than %d MB", MaxProofSize>>20)}
	}
	return nil
}
