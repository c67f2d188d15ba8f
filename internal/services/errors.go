package services

import (
	"errors"
	"fmt"

	"github.com/sjperalta/lendera-api/internal/repository"
)

// Common service errors
var (
	ErrNotFound                 = errors.New("record not found")
	ErrInvalidState             = errors.New("invalid state transition")
	ErrDuplicate                = errors.New("duplicate record")
	ErrLoanNotEditable          = errors.New("loan terms can only change while the loan is pending")
	ErrLoanNotAcceptingPayments = errors.New("loan does not accept payments")
)

// translate maps repository errors onto service errors
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", what, err)
}
