// internal/util/errors.go
package util

import "errors"

// Ledger rejections. Every ledger operation fails with exactly one of these.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBelowMinimum        = errors.New("amount below minimum")
	ErrAlreadyPaid         = errors.New("daily betslip fee already paid")
	ErrBetslipUnpaid       = errors.New("daily betslip fee not paid")
	ErrInvalidOdds         = errors.New("invalid odds")
)

// Common application-specific errors.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input provided")
	ErrAccountNotFound    = errors.New("account not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEntry     = errors.New("duplicate entry") // Unique constraint hit, e.g. second account for a subject
	ErrBalanceConflict    = errors.New("balance changed concurrently")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrInvalidSignature   = errors.New("invalid callback signature")
	ErrOddsUnavailable    = errors.New("odds unavailable")
	ErrOddsChanged        = errors.New("odds changed")
	ErrBetAlreadySettled  = errors.New("bet already settled")
	ErrAmountMismatch     = errors.New("confirmed amount does not match request")
)

// IsError reports whether any error in err's chain matches target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// IsLedgerRejection reports whether err is one of the ledger's business-rule rejections.
func IsLedgerRejection(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount,
		ErrInsufficientBalance,
		ErrBelowMinimum,
		ErrAlreadyPaid,
		ErrBetslipUnpaid,
		ErrInvalidOdds,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
