package apperror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestValidationError(t *testing.T) {
	v := NewValidation()
	assert.NoError(t, v.OrNil())

	v.Add(Issue{Field: "items", Message: "must not be empty"})
	v.Add(Issue{Field: "quantity", ProductID: "p1", Message: "must be greater than zero"})

	err := v.OrNil()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: items: must not be empty; quantity (product p1): must be greater than zero", err.Error())

	var target *ValidationError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &target))
	assert.Len(t, target.Issues, 2)
}

func TestStockError(t *testing.T) {
	err := error(&StockError{Shortages: []Shortage{{ProductID: "p1", Requested: 4, Available: 2}}})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, "insufficient stock: product p1: requested 4, available 2", err.Error())
}

func TestTransitionError(t *testing.T) {
	err := error(&TransitionError{OrderID: "o1", From: "completed", Action: "cancel"})
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, "cannot cancel order o1 in status completed", err.Error())
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{nil, codes.OK},
		{Validation("items", "empty"), codes.InvalidArgument},
		{&StockError{}, codes.FailedPrecondition},
		{&TransitionError{}, codes.FailedPrecondition},
		{NotFound("order", "o1"), codes.NotFound},
		{Referenced("product", "p1"), codes.FailedPrecondition},
		{fmt.Errorf("x: %w", ErrForbidden), codes.PermissionDenied},
		{ErrUnauthenticated, codes.Unauthenticated},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("db down"), codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Code(tt.err), "%v", tt.err)
	}
}

func TestToGRPC(t *testing.T) {
	assert.NoError(t, ToGRPC(nil))

	st, _ := status.FromError(ToGRPC(errors.New("connection refused to 10.0.0.3")))
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "internal error", st.Message())

	st, _ = status.FromError(ToGRPC(NotFound("product", "p9")))
	assert.Equal(t, codes.NotFound, st.Code())
	assert.Equal(t, "product p9: not found", st.Message())

	already := status.Error(codes.Aborted, "busy")
	assert.Equal(t, already, ToGRPC(already))
}
