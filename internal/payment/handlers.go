package payment

import (
	"context"
	"log"

	"github.com/ucp-merchant/core/internal/ucp"
	"github.com/ucp-merchant/core/internal/ucperr"
)

// mockHandler implements the mock_payment_handler token grammar of
// spec.md §4.7: success_token/fail_token/fraud_token/anything-else.
type mockHandler struct{}

func (mockHandler) Charge(ctx context.Context, attempt Attempt) error {
	cred := attempt.Instrument.Credential
	if cred.Token == "" {
		if cred.CardLast4 != "" {
			// Card-type credentials are accepted without further
			// inspection; only the last four digits are logged
			// (spec.md §4.7 closing paragraph).
			log.Printf("mock_payment_handler: accepting card ending %s", cred.CardLast4)
			return nil
		}
		return ucperr.PaymentFailed(ucperr.SubcodeUnknownToken, "credential carries neither token nor card")
	}

	switch cred.Token {
	case "success_token":
		return nil
	case "fail_token":
		return ucperr.PaymentFailed(ucperr.SubcodeInsufficientFunds, "insufficient funds")
	case "fraud_token":
		return ucperr.PaymentFailed(ucperr.SubcodeFraudDetected, "fraud detected")
	default:
		return ucperr.PaymentFailed(ucperr.SubcodeUnknownToken, "unrecognized token")
	}
}

// acceptAllHandler backs both google_pay and shop_pay: any token is
// accepted (spec.md §4.7 table).
type acceptAllHandler struct{}

func (acceptAllHandler) Charge(ctx context.Context, attempt Attempt) error {
	return nil
}

var _ Handler = mockHandler{}
var _ Handler = acceptAllHandler{}
