package errs

import (
	"errors"
)

// Common sentinel errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrUnsupportedFormat = errors.New("unsupported format")
	// PDF export.
	ErrRenderingUnavailable = errors.New("PDF rendering is not available")
	ErrRenderingFailed      = errors.New("PDF generation failed")
	// Auth collaborator.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccessDenied       = errors.New("access denied")
)

// Type just for marshalling purpose.
// Should only be used immediately before marshalling.
type JSON struct {
	Error string `json:"error"`
}
