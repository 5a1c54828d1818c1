package ucp

// LineItemInput is the wire shape of a line item on create/update. ID
// omitted means "new" (spec.md §3).
type LineItemInput struct {
	ID       string `json:"id,omitempty"`
	Item     Item   `json:"item"`
	Quantity int    `json:"quantity"`
}

// FulfillmentDestinationInput mirrors FulfillmentDestination on input.
type FulfillmentDestinationInput struct {
	ID      string        `json:"id,omitempty"`
	Address PostalAddress `json:"address"`
}

// FulfillmentGroupInput mirrors FulfillmentGroup on input; a nil field
// means "unspecified" (preserve prior value), an explicit empty slice
// means "replace with empty" (spec.md §9, fulfillment update merge).
type FulfillmentGroupInput struct {
	ID               string   `json:"id,omitempty"`
	LineItemIDs      []string `json:"line_item_ids,omitempty"`
	SelectedOptionID string   `json:"selected_option_id,omitempty"`
}

// FulfillmentMethodInput mirrors FulfillmentMethod on input.
type FulfillmentMethodInput struct {
	ID                    string                        `json:"id,omitempty"`
	Type                  FulfillmentMethodType         `json:"type,omitempty"`
	LineItemIDs           []string                      `json:"line_item_ids,omitempty"`
	Destinations          []FulfillmentDestinationInput `json:"destinations,omitempty"`
	SelectedDestinationID string                        `json:"selected_destination_id,omitempty"`
	Groups                []FulfillmentGroupInput        `json:"groups,omitempty"`
}

// FulfillmentInput mirrors Fulfillment on input.
type FulfillmentInput struct {
	Methods []FulfillmentMethodInput `json:"methods,omitempty"`
}

// DiscountsInput mirrors Discounts on input (only Codes is client-writable).
type DiscountsInput struct {
	Codes []string `json:"codes,omitempty"`
}

// PaymentInstrumentInput mirrors PaymentInstrument on input.
type PaymentInstrumentInput struct {
	ID         string             `json:"id,omitempty"`
	HandlerID  string             `json:"handler_id"`
	Credential *PaymentCredential `json:"credential,omitempty"`
}

// PaymentInput mirrors Payment on input.
type PaymentInput struct {
	Handlers             []string                 `json:"handlers,omitempty"`
	Instruments          []PaymentInstrumentInput `json:"instruments,omitempty"`
	SelectedInstrumentID string                   `json:"selected_instrument_id,omitempty"`
}

// PlatformInput mirrors Platform on input.
type PlatformInput struct {
	WebhookURL string `json:"webhook_url,omitempty"`
}

// CheckoutCreate is the body of POST /checkout-sessions.
type CheckoutCreate struct {
	ID          string            `json:"id,omitempty"`
	Currency    string            `json:"currency"`
	LineItems   []LineItemInput   `json:"line_items"`
	Buyer       *Buyer            `json:"buyer,omitempty"`
	Fulfillment *FulfillmentInput `json:"fulfillment,omitempty"`
	Discounts   *DiscountsInput   `json:"discounts,omitempty"`
	Payment     *PaymentInput     `json:"payment,omitempty"`
	Platform    *PlatformInput    `json:"platform,omitempty"`
}

// CheckoutUpdate is the body of PUT /checkout-sessions/{id}. Every field
// is optional; absent fields leave the corresponding session field
// untouched (spec.md §9 fulfillment update merge — the same rule applies
// across all partial-update fields, not only fulfillment).
type CheckoutUpdate struct {
	LineItems   []LineItemInput   `json:"line_items,omitempty"`
	Buyer       *Buyer            `json:"buyer,omitempty"`
	Fulfillment *FulfillmentInput `json:"fulfillment,omitempty"`
	Discounts   *DiscountsInput   `json:"discounts,omitempty"`
	Payment     *PaymentInput     `json:"payment,omitempty"`
	Platform    *PlatformInput    `json:"platform,omitempty"`
}

// PaymentCreate is the payment portion of a complete request.
type PaymentCreate struct {
	HandlerID  string             `json:"handler_id,omitempty"`
	Credential *PaymentCredential `json:"credential,omitempty"`
}

// RiskSignals is an opaque bag of risk-evaluation data passed through to
// the payment dispatcher untouched.
type RiskSignals map[string]any

// Ap2Mandate is an opaque AP2 payment mandate, passed through untouched
// when present (spec.md §4.6 parameter list).
type Ap2Mandate map[string]any

// CompleteRequest is the body of POST /checkout-sessions/{id}/complete.
type CompleteRequest struct {
	PaymentData *PaymentCreate `json:"payment_data,omitempty"`
	RiskSignals RiskSignals    `json:"risk_signals,omitempty"`
	Ap2         Ap2Mandate     `json:"ap2,omitempty"`
}

// WebhookEventType names an outbound C7 notification event.
type WebhookEventType string

const (
	EventOrderPlaced WebhookEventType = "order_placed"
	EventOrderShipped WebhookEventType = "order_shipped"
)

// WebhookPayload is the body posted to a merchant's webhook URL
// (spec.md §4.10).
type WebhookPayload struct {
	EventType  WebhookEventType `json:"event_type"`
	CheckoutID string           `json:"checkout_id"`
	Order      *Order           `json:"order,omitempty"`
}
