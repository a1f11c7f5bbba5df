package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Status: 409}
}

// ErrTokenExpired is distinct from a generic invalid token so callers can
// render "link expired" rather than "bad link".
func ErrTokenExpired() *AppError {
	return &AppError{Code: "TOKEN_EXPIRED", Message: "share link has expired", Status: 410}
}

func ErrRegistrationClosed() *AppError {
	return &AppError{Code: "REGISTRATION_CLOSED", Message: "the registration window for this event has closed", Status: 403}
}

func ErrNotEditable(status Status) *AppError {
	return &AppError{
		Code:    "NOT_EDITABLE",
		Message: fmt.Sprintf("registration with status %q can no longer be edited", status),
		Status:  403,
	}
}

func ErrInvalidSlot(msg string) *AppError {
	return &AppError{Code: "INVALID_SLOT", Message: msg, Status: 400}
}

func ErrCannotResolveSlot() *AppError {
	return &AppError{Code: "CANNOT_RESOLVE_SLOT", Message: "share token does not identify a player slot", Status: 400}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}
