package types

import (
	"errors"
	"fmt"
	"strings"
)

// Device-facing failure taxonomy. The REST layer maps these onto the
// status codes the firmware expects (401/401/403/400).
var (
	ErrMissingCredentials      = errors.New("missing device credentials")
	ErrInvalidDeviceKey        = errors.New("invalid device key")
	ErrDeviceUnknownOrInactive = errors.New("device not found or inactive")
	ErrDeviceIdentityMismatch  = errors.New("deviceName does not match authenticated device")
)

// ValidationError reports a malformed payload before any write happens.
type ValidationError struct {
	MissingFields []string
	Detail        string
}

func (e *ValidationError) Error() string {
	if len(e.MissingFields) > 0 {
		return fmt.Sprintf("Missing required fields: %s", strings.Join(e.MissingFields, ", "))
	}
	return e.Detail
}

func NewValidationError(missing ...string) *ValidationError {
	return &ValidationError{MissingFields: missing}
}
