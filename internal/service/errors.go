package service

import "fmt"

// NotFoundError indicates a requested resource does not exist
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Resource, e.ID)
}

// BusinessLogicError indicates an operation is not allowed in the
// resource's current state
type BusinessLogicError struct {
	Message string
}

func (e *BusinessLogicError) Error() string {
	return e.Message
}
