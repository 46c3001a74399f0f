// Package admin implements the admin console components: the product
// catalog manager, the order manager and the policy editor.
package admin

import "errors"

var (
	// ErrProductNotFound is returned when editing a product that no longer exists.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound is returned when updating an order that does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrDeleteDeclined is returned when the operator does not confirm a delete.
	ErrDeleteDeclined = errors.New("delete not confirmed")
)

// ValidationError is an operator input problem; nothing was written.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
