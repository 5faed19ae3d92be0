// Package apperr holds the error variants handlers and middleware return.
// Each variant knows the HTTP status it maps to; anything else is a 500.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusCoder is implemented by every error variant in this package
type StatusCoder interface {
	error
	StatusCode() int
}

// FieldError describes one field that failed validation
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError is returned when a request payload or parameter is malformed
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string   { return e.Message }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// AuthError is returned when the caller cannot be identified
type AuthError struct {
	Message string
	Code    int
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) StatusCode() int {
	if e.Code == 0 {
		return http.StatusBadRequest
	}
	return e.Code
}

// OwnershipError is returned when the caller does not own the target resource
type OwnershipError struct {
	Resource string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("the %s does not belong to you", e.Resource)
}
func (e *OwnershipError) StatusCode() int { return http.StatusForbidden }

// NotFoundError is returned when a lookup by id resolves nothing
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// PersistenceError wraps a failing store call with the operation that issued it
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("[%s]: %v", e.Op, e.Err)
}
func (e *PersistenceError) Unwrap() error   { return e.Err }
func (e *PersistenceError) StatusCode() int { return http.StatusInternalServerError }

// SecurityError wraps a failure to hash a password or sign a token
type SecurityError struct {
	Op  string
	Err error
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("[%s]: %v", e.Op, e.Err)
}
func (e *SecurityError) Unwrap() error   { return e.Err }
func (e *SecurityError) StatusCode() int { return http.StatusInternalServerError }

// Validation builds a ValidationError
func Validation(message string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// Auth builds an AuthError answered with 400
func Auth(message string) *AuthError {
	return &AuthError{Message: message}
}

// Unauthorized builds an AuthError answered with 401
func Unauthorized(message string) *AuthError {
	return &AuthError{Message: message, Code: http.StatusUnauthorized}
}

// Ownership builds an OwnershipError
func Ownership(resource string) *OwnershipError {
	return &OwnershipError{Resource: resource}
}

// NotFound builds a NotFoundError
func NotFound(resource string, id any) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// Persistence wraps err unless it already is one of the typed variants
func Persistence(op string, err error) error {
	var coded StatusCoder
	if errors.As(err, &coded) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// Security wraps err unless it already is one of the typed variants
func Security(op string, err error) error {
	var coded StatusCoder
	if errors.As(err, &coded) {
		return err
	}
	return &SecurityError{Op: op, Err: err}
}

// StatusOf resolves the HTTP status for any error
func StatusOf(err error) int {
	var coded StatusCoder
	if errors.As(err, &coded) {
		return coded.StatusCode()
	}
	return http.StatusInternalServerError
}

// KindOf names the variant of err, used in development error bodies
func KindOf(err error) string {
	var (
		validation  *ValidationError
		auth        *AuthError
		ownership   *OwnershipError
		notFound    *NotFoundError
		persistence *PersistenceError
		security    *SecurityError
	)
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &auth):
		return "auth"
	case errors.As(err, &ownership):
		return "ownership"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &persistence):
		return "persistence"
	case errors.As(err, &security):
		return "security"
	default:
		return "internal"
	}
}
