package amortization

import (
	"errors"
	"fmt"
)

// ErrInvalidLoanTerms is matched by every *InvalidLoanTermsError
var ErrInvalidLoanTerms = errors.New("invalid loan terms")

// InvalidLoanTermsError reports which term was rejected and why
type InvalidLoanTermsError struct {
	Field  string
	Reason string
}

func (e *InvalidLoanTermsError) Error() string {
	return fmt.Sprintf("invalid loan terms: %s %s", e.Field, e.Reason)
}

// Is lets callers use errors.Is(err, ErrInvalidLoanTerms)
func (e *InvalidLoanTermsError) Is(target error) bool {
	return target == ErrInvalidLoanTerms
}

func invalidTerms(field, reason string) error {
	return &InvalidLoanTermsError{Field: field, Reason: reason}
}
