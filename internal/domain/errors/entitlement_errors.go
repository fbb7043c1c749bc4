package errors

import "fmt"

// InsufficientCreditsError is returned when a premium action is requested
// by an account with no active premium plan and no remaining credits.
type InsufficientCreditsError struct {
	Available int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient reading credits: %d available", e.Available)
}

// NewInsufficientCreditsError creates a new InsufficientCreditsError
func NewInsufficientCreditsError(available int) *InsufficientCreditsError {
	return &InsufficientCreditsError{Available: available}
}
