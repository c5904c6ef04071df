package chain

import "github.com/pkg/errors"

// ValidationError is returned by Validate/Append when a candidate block
// fails the chain-linkage contract of SPEC_FULL.md §4.4.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "chain: invalid block: " + e.Reason
}

func newValidationError(reason string) error {
	return errors.WithStack(&ValidationError{Reason: reason})
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
