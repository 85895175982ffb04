package imk

import "errors"

var (
	// ErrInvalidParams indicates a malformed or missing construction parameter
	ErrInvalidParams = errors.New("imk: invalid material parameters")

	// ErrInvalidStrain indicates a non-finite trial deformation
	ErrInvalidStrain = errors.New("imk: trial deformation is not finite")

	// ErrTransport indicates a flat state vector that cannot be decoded
	ErrTransport = errors.New("imk: state transport failed")
)

// ValidationError represents a parameter validation error
type ValidationError struct {
	Field string
	msg   string
}

func (e *ValidationError) Error() string {
	return "imk: " + e.Field + ": " + e.msg
}

// Unwrap makes errors.Is(err, ErrInvalidParams) hold for every validation error
func (e *ValidationError) Unwrap() error {
	return ErrInvalidParams
}
