package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrNoUpdatedData   = errors.New("no data to update")
	ErrConflictingData = errors.New("data conflicts with existing data")

	// * Business errors.
	ErrOrderNoItems = errors.New("order must contain at least one item")
)

// ServiceError carries the wire envelope for a failure: callers only
// ever see its status and message inside the `{status, message}` shape.
type ServiceError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NewNotFound(format string, args ...any) *ServiceError {
	return &ServiceError{Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewValidation(format string, args ...any) *ServiceError {
	return &ServiceError{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func NewConflict(format string, args ...any) *ServiceError {
	return &ServiceError{Status: http.StatusConflict, Message: fmt.Sprintf(format, args...)}
}
