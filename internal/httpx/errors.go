// internal/httpx/errors.go
//
// Request-level error taxonomy.
//
// Context
// -------
// Handlers never write error responses themselves.  They return (or pass
// to Fail) an *AppError, and Fail turns it into the matching HTTP answer:
//
//	NotFound            → 302 to /404
//	Unauthenticated     → 302 to /login?redirectTo=<path>
//	OwnershipViolation  → 400 {"errors": message}
//	Validation          → 400 {"errors": message, "fields": […]}
//	Forbidden           → 403 {"errors": message}
//	anything else       → 500, logged
//
// No retries happen at this layer; store failures surface as 500s.
package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Kind classifies an AppError.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthenticated
	KindOwnershipViolation
	KindValidation
	KindForbidden
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// AppError carries what Fail needs to answer a request.
type AppError struct {
	Kind    Kind
	Status  int
	Message string       // user-facing
	Fields  []FieldError // Validation only
	Err     error        // internal cause, logged, never returned
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NotFound marks a missing site, entry, or user.
func NotFound(err error) *AppError {
	return &AppError{Kind: KindNotFound, Status: http.StatusFound, Message: "not found", Err: err}
}

// Unauthenticated marks a request that needs an acting user.
func Unauthenticated() *AppError {
	return &AppError{Kind: KindUnauthenticated, Status: http.StatusFound, Message: "login required"}
}

// OwnershipViolation marks an owner trying to leave their own site.
func OwnershipViolation(msg string) *AppError {
	return &AppError{Kind: KindOwnershipViolation, Status: http.StatusBadRequest, Message: msg}
}

// Forbidden marks an update the store's access rules denied.
func Forbidden(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Status: http.StatusForbidden, Message: msg}
}

// Validation marks malformed params or body.
func Validation(msg string, fields ...FieldError) *AppError {
	return &AppError{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg, Fields: fields}
}

// FromValidator converts go-playground validation errors into a Validation
// AppError.  Other errors become internal.
func FromValidator(err error) *AppError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &AppError{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "validation failed", Err: err}
	}
	fields := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, FieldError{Name: fe.Field(), Message: fieldMessage(fe)})
	}
	return Validation("Invalid input.", fields...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", fe.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	}
	return "Invalid input."
}

// As extracts an *AppError from err.
func As(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}
