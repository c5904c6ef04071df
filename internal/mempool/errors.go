// Package mempool implements transaction validation and the priority pool,
// per SPEC_FULL.md §4.6–§4.7.
package mempool

import "github.com/pkg/errors"

// ValidationErrorKind enumerates the mempool validator's rejection reasons.
type ValidationErrorKind int

const (
	ErrInvalidAddress ValidationErrorKind = iota
	ErrEmptyTransaction
	ErrSelfTransfer
	ErrInvalidSignature
	ErrInsufficientFunds
	ErrDuplicateTransaction
)

func (k ValidationErrorKind) String() string {
	switch k {
	case ErrInvalidAddress:
		return "InvalidAddress"
	case ErrEmptyTransaction:
		return "EmptyTransaction"
	case ErrSelfTransfer:
		return "SelfTransfer"
	case ErrInvalidSignature:
		return "InvalidSignature"
	case ErrInsufficientFunds:
		return "InsufficientFunds"
	case ErrDuplicateTransaction:
		return "DuplicateTransaction"
	default:
		return "Unknown"
	}
}

// ValidationError is returned by the validator and the pool when a
// transaction is rejected.
type ValidationError struct {
	Kind ValidationErrorKind
	Msg  string
}

func (e *ValidationError) Error() string {
	return "mempool: " + e.Kind.String() + ": " + e.Msg
}

func newValidationError(kind ValidationErrorKind, msg string) error {
	return errors.WithStack(&ValidationError{Kind: kind, Msg: msg})
}

// KindOf extracts the ValidationErrorKind from err, if it is one.
func KindOf(err error) (ValidationErrorKind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return 0, false
}
