package loan

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks at the handler boundary. Callers must never
// discriminate failures by matching message text.
var (
	ErrNotFound    = errors.New("loan not found")
	ErrAlreadyPaid = errors.New("loan is already paid")
)

// NotFoundError carries the requested id. Its message format is part of the
// external contract and shows up verbatim in 404 bodies.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Loan not found with Id:%d", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
