package customers

import (
	"fmt"
	"net/http"

	"customer-service/internal/models"
)

// ServiceError represents errors from the customer service with HTTP context
type ServiceError struct {
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Error constructors for common service errors

func NewBadRequestError(message string) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeBadRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewCustomerNotFoundError() *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeNotFound,
		Message:    "Customer not found",
		StatusCode: http.StatusNotFound,
	}
}

func NewAddressNotFoundError() *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeNotFound,
		Message:    "Address not found",
		StatusCode: http.StatusNotFound,
	}
}

func NewDuplicateCustomerError() *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeConflict,
		Message:    "Email or phone already exists",
		StatusCode: http.StatusConflict,
	}
}

// NewDatabaseError deliberately carries a generic message; the underlying
// error is kept for logs only and never reaches the wire.
func NewDatabaseError(err error) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeDatabaseError,
		Message:    "A database error occurred",
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInternalError(message string, err error) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeInternalError,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}
