/*
Package ucperr centralises the checkout core's error vocabulary
(spec.md §7). Every domain error carries a stable Code and the HTTP
status it maps to, so the HTTP boundary (internal/httpapi) can serialise
the §6 error envelope without re-deriving status codes at the call site.

Every error is a structured *Error built by one of the constructors
below, with any extra context (which product ran out of stock, which key
conflicted) in its message. The package defines no sentinel error
values; errors.Is reaches only the cause wrapped by Internal, and As
recovers an *Error from a wrapped chain.
*/
package ucperr

import "fmt"

// Code is one of the stable error codes in spec.md §7.
type Code string

const (
	CodeResourceNotFound     Code = "RESOURCE_NOT_FOUND"
	CodeInvalidRequest       Code = "INVALID_REQUEST"
	CodeOutOfStock           Code = "OUT_OF_STOCK"
	CodePaymentFailed        Code = "PAYMENT_FAILED"
	CodeIdempotencyConflict  Code = "IDEMPOTENCY_CONFLICT"
	CodeCheckoutNotModifiable Code = "CHECKOUT_NOT_MODIFIABLE"
	CodeVersionUnsupported   Code = "VERSION_UNSUPPORTED"
	CodeInternal             Code = "INTERNAL_ERROR"
)

// Error is the core's domain error type. It carries the HTTP status the
// boundary should respond with, so error kinds and transport codes never
// drift apart (spec.md §7 error kind table).
type Error struct {
	Code    Code
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// NotFound constructs a RESOURCE_NOT_FOUND (404) error.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeResourceNotFound, Status: 404, Message: fmt.Sprintf(format, args...)}
}

// InvalidRequest constructs an INVALID_REQUEST (400) error.
func InvalidRequest(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidRequest, Status: 400, Message: fmt.Sprintf(format, args...)}
}

// OutOfStock constructs an OUT_OF_STOCK error. status is 400 when raised
// during advisory pre-validation (§4.4) and 409 when raised from the
// atomic-reserve commit path of complete (§4.6).
func OutOfStock(status int, format string, args ...any) *Error {
	return &Error{Code: CodeOutOfStock, Status: status, Message: fmt.Sprintf(format, args...)}
}

// PaymentFailedSubcode distinguishes payment failure reasons; PaymentFailed
// maps FraudDetected to 403 and everything else to 402 (spec.md §7).
type PaymentFailedSubcode string

const (
	SubcodeInsufficientFunds PaymentFailedSubcode = "INSUFFICIENT_FUNDS"
	SubcodeFraudDetected     PaymentFailedSubcode = "FRAUD_DETECTED"
	SubcodeUnknownToken      PaymentFailedSubcode = "UNKNOWN_TOKEN"
)

// PaymentFailed constructs a PAYMENT_FAILED error with the correct status
// for its subcode.
func PaymentFailed(subcode PaymentFailedSubcode, format string, args ...any) *Error {
	status := 402
	if subcode == SubcodeFraudDetected {
		status = 403
	}
	return &Error{Code: CodePaymentFailed, Status: status, Message: fmt.Sprintf(format, args...)}
}

// IdempotencyConflict constructs an IDEMPOTENCY_CONFLICT (409) error.
func IdempotencyConflict(format string, args ...any) *Error {
	return &Error{Code: CodeIdempotencyConflict, Status: 409, Message: fmt.Sprintf(format, args...)}
}

// CheckoutNotModifiable constructs a CHECKOUT_NOT_MODIFIABLE (409) error.
func CheckoutNotModifiable(format string, args ...any) *Error {
	return &Error{Code: CodeCheckoutNotModifiable, Status: 409, Message: fmt.Sprintf(format, args...)}
}

// VersionUnsupported constructs a VERSION_UNSUPPORTED (400) error.
func VersionUnsupported(format string, args ...any) *Error {
	return &Error{Code: CodeVersionUnsupported, Status: 400, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected error as an INTERNAL_ERROR (500), keeping
// the original error reachable via errors.Unwrap.
func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Status: 500, Message: "internal error", cause: cause}
}

// As extracts an *Error from err, returning (nil, false) if err is not
// (or does not wrap) one.
func As(err error) (*Error, bool) {
	var e *Error
	if err == nil {
		return nil, false
	}
	if ae, ok := err.(*Error); ok {
		return ae, true
	}
	if ae, ok := unwrapTo(err); ok {
		return ae, true
	}
	return nil, false
}

func unwrapTo(err error) (*Error, bool) {
	type unwrapper interface{ Unwrap() error }
	for {
		u, ok := err.(unwrapper)
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
		if ae, ok := err.(*Error); ok {
			return ae, true
		}
	}
}
