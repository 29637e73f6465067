package leadsapi

import "fmt"

// ValidationError reports the first lead input rule violated. The caller
// can recover by resubmitting corrected input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// DuplicateEmailError reports an attempt to register an email that already
// belongs to a lead. Produced by the service pre-check and by the store
// when the unique index catches a concurrent create.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("a lead with email %s already exists", e.Email)
}

// NotFoundError reports a lead id that does not exist, on the read path
// where the lead is required to exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("lead with id %s not found", e.ID)
}
