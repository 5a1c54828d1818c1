package httpapi

import (
	_ "embed"
	"net/http"
	"strings"
)

//go:embed assets/discovery_profile.json
var discoveryTemplate string

// Discovery handles GET /.well-known/ucp: the merchant profile document,
// substituting {{ENDPOINT}} (the request's own base URL) and {{SHOP_ID}}
// (server-assigned at startup) into the static template (spec.md §6).
func (h *Handler) Discovery(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	endpoint := scheme + "://" + r.Host

	replacer := strings.NewReplacer("{{ENDPOINT}}", endpoint, "{{SHOP_ID}}", h.ShopID)
	profile := replacer.Replace(discoveryTemplate)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(profile))
}
