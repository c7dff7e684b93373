// Package apperror defines the error taxonomy shared by the catalog, inventory and order
// usecases. Typed errors carry itemized detail for the caller; sentinels make them
// matchable with errors.Is.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrIllegalTransition = errors.New("illegal state transition")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrReferenced        = errors.New("referenced by existing orders")
)

// Issue is one failed constraint.
type Issue struct {
	Field     string `json:"field"`
	ProductID string `json:"product_id,omitempty"`
	Message   string `json:"message"`
}

// ValidationError is a client-caused rejection detected before any write.
type ValidationError struct {
	Issues []Issue
}

func NewValidation(issues ...Issue) *ValidationError {
	return &ValidationError{Issues: issues}
}

// Validation is a shorthand for a single-issue ValidationError.
func Validation(field, message string) *ValidationError {
	return NewValidation(Issue{Field: field, Message: message})
}

func (e *ValidationError) Add(issue Issue) {
	e.Issues = append(e.Issues, issue)
}

// OrNil returns nil when no issue was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		if is.ProductID != "" {
			parts = append(parts, fmt.Sprintf("%s (product %s): %s", is.Field, is.ProductID, is.Message))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", is.Field, is.Message))
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Shortage describes one product that cannot cover the requested quantity.
type Shortage struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// StockError reports every short line of a reservation or availability check.
type StockError struct {
	Shortages []Shortage
}

func (e *StockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("product %s: requested %d, available %d", s.ProductID, s.Requested, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// TransitionError is returned when an order is asked to leave a terminal state.
type TransitionError struct {
	OrderID string
	From    string
	Action  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s order %s in status %s", e.Action, e.OrderID, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

// NotFound wraps ErrNotFound with the kind and identity of the missing entity.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// Referenced wraps ErrReferenced for a catalog entity that orders still point at.
func Referenced(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrReferenced)
}
