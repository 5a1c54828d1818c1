package ucperr_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucp-merchant/core/internal/ucperr"
)

func TestConstructors_CarryExpectedCodeAndStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    *ucperr.Error
		code   ucperr.Code
		status int
	}{
		{"NotFound", ucperr.NotFound("missing %s", "x"), ucperr.CodeResourceNotFound, 404},
		{"InvalidRequest", ucperr.InvalidRequest("bad %s", "x"), ucperr.CodeInvalidRequest, 400},
		{"OutOfStock pre-validation", ucperr.OutOfStock(400, "out"), ucperr.CodeOutOfStock, 400},
		{"OutOfStock complete-time", ucperr.OutOfStock(409, "out"), ucperr.CodeOutOfStock, 409},
		{"PaymentFailed insufficient funds", ucperr.PaymentFailed(ucperr.SubcodeInsufficientFunds, "no funds"), ucperr.CodePaymentFailed, 402},
		{"PaymentFailed fraud", ucperr.PaymentFailed(ucperr.SubcodeFraudDetected, "fraud"), ucperr.CodePaymentFailed, 403},
		{"IdempotencyConflict", ucperr.IdempotencyConflict("conflict"), ucperr.CodeIdempotencyConflict, 409},
		{"CheckoutNotModifiable", ucperr.CheckoutNotModifiable("terminal"), ucperr.CodeCheckoutNotModifiable, 409},
		{"VersionUnsupported", ucperr.VersionUnsupported("too new"), ucperr.CodeVersionUnsupported, 400},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.status, tc.err.Status)
		})
	}
}

func TestInternal_WrapsCauseAndUnwraps(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := ucperr.Internal(cause)

	assert.Equal(t, ucperr.CodeInternal, err.Code)
	assert.Equal(t, 500, err.Status)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestAs_ExtractsThroughWrapping(t *testing.T) {
	inner := ucperr.NotFound("checkout %q not found", "abc")
	wrapped := fmt.Errorf("loading session: %w", inner)

	got, ok := ucperr.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ucperr.CodeResourceNotFound, got.Code)
}

func TestAs_FalseForUnrelatedError(t *testing.T) {
	_, ok := ucperr.As(fmt.Errorf("plain error"))
	assert.False(t, ok)
}

func TestAs_FalseForNil(t *testing.T) {
	_, ok := ucperr.As(nil)
	assert.False(t, ok)
}
