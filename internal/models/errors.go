package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeQuantity is returned by stores when an adjustment would drive stock below zero.
	ErrNegativeQuantity = errors.New("quantity would become negative")
	// ErrQuantityOverflow is returned by stores when an adjustment would exceed MaxQuantity.
	ErrQuantityOverflow = errors.New("quantity would exceed maximum")
)

// ValidationError is returned when a field fails normalization or validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is allows errors.Is matching on the error type.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// NotFoundError is returned when no product has the requested key.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.Key)
}

// Is allows errors.Is matching on the error type.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// DuplicateSKUError is returned by stores when the unique SKU constraint rejects a write.
type DuplicateSKUError struct {
	SKU string
}

func (e *DuplicateSKUError) Error() string {
	return fmt.Sprintf("duplicate sku: %s already exists", e.SKU)
}

// Is allows errors.Is matching on the error type.
func (e *DuplicateSKUError) Is(target error) bool {
	_, ok := target.(*DuplicateSKUError)
	return ok
}

// ConflictError is returned when a use case collides with existing state.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Is allows errors.Is matching on the error type.
func (e *ConflictError) Is(target error) bool {
	_, ok := target.(*ConflictError)
	return ok
}

// UnauthorizedError is returned when a caller fails a credential check.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

// Is allows errors.Is matching on the error type.
func (e *UnauthorizedError) Is(target error) bool {
	_, ok := target.(*UnauthorizedError)
	return ok
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NewNotFoundError creates a NotFoundError for a product id.
func NewNotFoundError(id int64) error {
	return &NotFoundError{Key: fmt.Sprintf("id=%d", id)}
}

// NewSKUNotFoundError creates a NotFoundError for a product SKU.
func NewSKUNotFoundError(sku string) error {
	return &NotFoundError{Key: "sku=" + sku}
}

// NewDuplicateSKUError creates a new DuplicateSKUError.
func NewDuplicateSKUError(sku string) error {
	return &DuplicateSKUError{SKU: sku}
}

// NewConflictError creates a new ConflictError.
func NewConflictError(message string) error {
	return &ConflictError{Message: message}
}

// NewUnauthorizedError creates a new UnauthorizedError.
func NewUnauthorizedError(message string) error {
	return &UnauthorizedError{Message: message}
}

// IsNotFound checks if err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsDuplicateSKU checks if err is or wraps a DuplicateSKUError.
func IsDuplicateSKU(err error) bool {
	var d *DuplicateSKUError
	return errors.As(err, &d)
}
