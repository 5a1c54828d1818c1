package httpapi

import (
	"bytes"
	"io"
	"net/http"
	"regexp"

	"github.com/ucp-merchant/core/internal/txstore"
	"github.com/ucp-merchant/core/internal/ucp"
)

// requireHeaders enforces spec.md §6: every checkout-session/order
// endpoint (mutating or GET) requires UCP-Agent, Request-Signature,
// Idempotency-Key, and Request-Id. Missing any ⇒ 422. Idempotency-Key is
// accepted but unused by GET handlers (spec.md §4.8 "GET commands are
// not guarded").
func requireHeaders(next http.Handler) http.Handler {
	required := []string{"UCP-Agent", "Request-Signature", "Idempotency-Key", "Request-Id"}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, name := range required {
			if r.Header.Get(name) == "" {
				writeMissingHeader(w, name)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

var versionPattern = regexp.MustCompile(`version="?([0-9]{4}-[0-9]{2}-[0-9]{2})"?`)

// negotiateVersion implements spec.md §6 "Version negotiation": an
// UCP-Agent version strictly greater than serverVersion (ISO dates sort
// lexicographically) ⇒ 400 VERSION_UNSUPPORTED.
func (h *Handler) negotiateVersion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent := r.Header.Get("UCP-Agent")
		match := versionPattern.FindStringSubmatch(agent)
		if match != nil && match[1] > h.ServerVersion {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"code":     "VERSION_UNSUPPORTED",
				"severity": "critical",
				"message":  "Version " + match[1] + " is not supported. This merchant implements version " + h.ServerVersion + ".",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// logRequest appends a request-log entry (spec.md §3 "Request log")
// before handing off to the handler. The body is buffered so downstream
// decoders still see the full payload.
func (h *Handler) logRequest(checkoutID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload []byte
			if r.Body != nil {
				payload, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewReader(payload))
			}

			id := ""
			if checkoutID != nil {
				id = checkoutID(r)
			}

			_ = h.Tx.WithTx(r.Context(), func(tx *txstore.Tx) error {
				return tx.AppendRequestLog(r.Context(), ucp.RequestLogEntry{
					Method:     r.Method,
					URL:        r.URL.Path,
					CheckoutID: id,
					Payload:    payload,
				})
			})

			next.ServeHTTP(w, r)
		})
	}
}
