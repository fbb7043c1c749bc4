package errors

import "errors"

var (
	// ErrPaymentNotFound is returned when a ledger lookup misses.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrSubscriptionNotFound is returned when no subscription row exists
	// for the given account or gateway subscription id.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrUserNotFound is returned when the account lookup misses.
	ErrUserNotFound = errors.New("user not found")

	// ErrReadingNotFound is returned when a reading lookup misses or the
	// reading belongs to another account.
	ErrReadingNotFound = errors.New("reading not found")

	// ErrDuplicateEvent is returned when a webhook delivery was already
	// recorded in the processed-event ledger.
	ErrDuplicateEvent = errors.New("webhook event already processed")

	// ErrEmailTaken is returned on registration with an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
