/*
Package ucp defines the core domain model of the Universal Commerce
Protocol checkout engine: products, inventory, checkout sessions, orders,
and the supporting value types shared across every component (C1-C8).

These types are pure data. They carry no persistence or transport
concerns — json tags exist for wire compatibility with the HTTP boundary,
but nothing in this package talks to a database or socket.
*/
package ucp

// CheckoutStatus is the lifecycle state of a CheckoutSession (spec.md §4.2).
type CheckoutStatus string

const (
	StatusIncomplete         CheckoutStatus = "incomplete"
	StatusRequiresEscalation CheckoutStatus = "requires_escalation"
	StatusReadyForComplete   CheckoutStatus = "ready_for_complete"
	StatusCompleteInProgress CheckoutStatus = "complete_in_progress"
	StatusCompleted          CheckoutStatus = "completed"
	StatusCanceled           CheckoutStatus = "canceled"
)

// IsTerminal reports whether status is one from which no further mutation
// is legal (spec.md §4.2, invariant 4).
func (s CheckoutStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// TotalType distinguishes entries in a Totals sequence.
type TotalType string

const (
	TotalSubtotal    TotalType = "subtotal"
	TotalFulfillment TotalType = "fulfillment"
	TotalDiscount    TotalType = "discount"
	TotalTotal       TotalType = "total"
)

// Total is a single typed amount in minor currency units.
type Total struct {
	Type   TotalType `json:"type"`
	Amount int64     `json:"amount"`
}

// Product is the catalog's authoritative record for a sellable item.
// Immutable from the checkout engine's perspective (spec.md §3).
type Product struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	ImageURL string `json:"image_url,omitempty"`
}

// Item is the line-item snapshot of a product as recorded on a checkout
// or order. Price/Title are overwritten from the catalog on every
// recompute (spec.md §4.3 step 1) — the server never trusts client prices.
type Item struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
}

// LineItem is one line of a CheckoutSession.
type LineItem struct {
	ID       string  `json:"id"`
	Item     Item    `json:"item"`
	Quantity int     `json:"quantity"`
	Totals   []Total `json:"totals,omitempty"`
}

// Buyer is optional identity information attached to a checkout.
type Buyer struct {
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// PostalAddress is a destination address. Only AddressCountry is consulted
// by the fulfillment evaluator (spec.md §4.5); the rest passes through for
// future extension.
type PostalAddress struct {
	StreetAddress   string `json:"street_address,omitempty"`
	AddressLocality string `json:"address_locality,omitempty"`
	AddressRegion   string `json:"address_region,omitempty"`
	PostalCode      string `json:"postal_code,omitempty"`
	AddressCountry  string `json:"address_country,omitempty"`
}

// FulfillmentDestination is a candidate delivery destination attached to a
// fulfillment method.
type FulfillmentDestination struct {
	ID      string        `json:"id"`
	Address PostalAddress `json:"address"`
}

// FulfillmentOption is a priced delivery choice within a group.
type FulfillmentOption struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Totals []Total `json:"totals,omitempty"`
}

// Total returns the option's trailing `total` amount, or zero if absent.
func (o FulfillmentOption) Total() int64 {
	for _, t := range o.Totals {
		if t.Type == TotalTotal {
			return t.Amount
		}
	}
	return 0
}

// FulfillmentGroup bundles line items under a single selected option.
type FulfillmentGroup struct {
	ID                 string              `json:"id"`
	LineItemIDs        []string            `json:"line_item_ids"`
	Options            []FulfillmentOption `json:"options,omitempty"`
	SelectedOptionID   string              `json:"selected_option_id,omitempty"`
}

// SelectedOption resolves SelectedOptionID against Options, or returns a
// zero FulfillmentOption and false.
func (g FulfillmentGroup) SelectedOption() (FulfillmentOption, bool) {
	for _, o := range g.Options {
		if o.ID == g.SelectedOptionID {
			return o, true
		}
	}
	return FulfillmentOption{}, false
}

// FulfillmentMethodType names a delivery channel.
type FulfillmentMethodType string

const (
	FulfillmentShipping FulfillmentMethodType = "shipping"
	FulfillmentPickup   FulfillmentMethodType = "pickup"
	FulfillmentDigital  FulfillmentMethodType = "digital"
)

// FulfillmentMethod is a delivery channel attached to a subset of line
// items, with candidate destinations and, once a destination is chosen,
// groups of priced options (spec.md §3, GLOSSARY).
type FulfillmentMethod struct {
	ID                   string                    `json:"id"`
	Type                 FulfillmentMethodType     `json:"type"`
	LineItemIDs          []string                  `json:"line_item_ids"`
	Destinations         []FulfillmentDestination  `json:"destinations,omitempty"`
	SelectedDestinationID string                   `json:"selected_destination_id,omitempty"`
	Groups               []FulfillmentGroup        `json:"groups,omitempty"`
}

// SelectedDestination resolves SelectedDestinationID, or returns a zero
// FulfillmentDestination and false.
func (m FulfillmentMethod) SelectedDestination() (FulfillmentDestination, bool) {
	for _, d := range m.Destinations {
		if d.ID == m.SelectedDestinationID {
			return d, true
		}
	}
	return FulfillmentDestination{}, false
}

// Fulfillment is the tree of delivery methods attached to a checkout.
type Fulfillment struct {
	Methods []FulfillmentMethod `json:"methods,omitempty"`
}

// Allocation targets a portion of the session's totals for a discount,
// expressed as a JSONPath-style string (spec.md §4.3 step 5).
type Allocation struct {
	Target string `json:"target"`
	Amount int64  `json:"amount"`
}

// AppliedDiscount records one discount code's effect on a recompute.
type AppliedDiscount struct {
	Code        string       `json:"code"`
	Title       string       `json:"title"`
	Amount      int64        `json:"amount"`
	Allocations []Allocation `json:"allocations,omitempty"`
}

// Discounts holds the client-supplied codes and the server-computed
// applied entries.
type Discounts struct {
	Codes   []string          `json:"codes,omitempty"`
	Applied []AppliedDiscount `json:"applied,omitempty"`
}

// PaymentCredential is a polymorphic payment credential: either a token
// (handler-specific opaque string) or a card's last-four digits.
type PaymentCredential struct {
	Token    string `json:"token,omitempty"`
	CardLast4 string `json:"card_last4,omitempty"`
}

// PaymentInstrument is one payment method offered or selected on a
// checkout.
type PaymentInstrument struct {
	ID         string             `json:"id"`
	HandlerID  string             `json:"handler_id"`
	Credential *PaymentCredential `json:"credential,omitempty"`
}

// Payment is the checkout's payment capability block.
type Payment struct {
	Handlers             []string            `json:"handlers,omitempty"`
	Instruments          []PaymentInstrument `json:"instruments,omitempty"`
	SelectedInstrumentID string              `json:"selected_instrument_id,omitempty"`
}

// SelectedInstrument resolves SelectedInstrumentID, or returns a zero
// PaymentInstrument and false.
func (p Payment) SelectedInstrument() (PaymentInstrument, bool) {
	for _, i := range p.Instruments {
		if i.ID == p.SelectedInstrumentID {
			return i, true
		}
	}
	return PaymentInstrument{}, false
}

// Platform captures merchant-platform-supplied configuration attached to
// a checkout at create/update time.
type Platform struct {
	WebhookURL string `json:"webhook_url,omitempty"`
}

// OrderRef is the compact order reference attached to a completed
// checkout.
type OrderRef struct {
	ID          string `json:"id"`
	PermalinkURL string `json:"permalink_url"`
}

// CheckoutSession is the central aggregate of the checkout engine
// (spec.md §3).
type CheckoutSession struct {
	ID          string           `json:"id"`
	Status      CheckoutStatus   `json:"status"`
	Currency    string           `json:"currency"`
	LineItems   []LineItem       `json:"line_items"`
	Buyer       *Buyer           `json:"buyer,omitempty"`
	Fulfillment *Fulfillment     `json:"fulfillment,omitempty"`
	Discounts   *Discounts       `json:"discounts,omitempty"`
	Payment     Payment          `json:"payment"`
	Totals      []Total          `json:"totals"`
	Order       *OrderRef        `json:"order,omitempty"`
	Platform    *Platform        `json:"platform,omitempty"`
}

// GrandTotal returns the trailing `total` entry's amount, or zero if the
// session has no totals yet.
func (c *CheckoutSession) GrandTotal() int64 {
	if len(c.Totals) == 0 {
		return 0
	}
	last := c.Totals[len(c.Totals)-1]
	if last.Type == TotalTotal {
		return last.Amount
	}
	return 0
}

// LineItem looks up a line item by id.
func (c *CheckoutSession) LineItem(id string) (*LineItem, bool) {
	for i := range c.LineItems {
		if c.LineItems[i].ID == id {
			return &c.LineItems[i], true
		}
	}
	return nil, false
}

// LineItemIDsIn returns the session's line items whose ids appear in ids,
// in session order.
func (c *CheckoutSession) LineItemIDsIn(ids []string) []LineItem {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	var out []LineItem
	for _, li := range c.LineItems {
		if set[li.ID] {
			out = append(out, li)
		}
	}
	return out
}

// OrderLineItemQuantity tracks fulfilled vs total quantity on an order
// line item.
type OrderLineItemQuantity struct {
	Total     int `json:"total"`
	Fulfilled int `json:"fulfilled"`
}

// OrderLineItem is one line of a materialised Order (spec.md §3).
type OrderLineItem struct {
	ID       string                `json:"id"`
	Item     Item                  `json:"item"`
	Quantity OrderLineItemQuantity `json:"quantity"`
	Totals   []Total               `json:"totals,omitempty"`
	Status   string                `json:"status"`
	ParentID string                `json:"parent_id,omitempty"`
}

// ExpectationLineItem is a (line item, quantity) reference inside an
// Expectation.
type ExpectationLineItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// Expectation describes a promised fulfillment for a selected
// method/group pair (spec.md §4.9).
type Expectation struct {
	ID          string                `json:"id"`
	LineItems   []ExpectationLineItem `json:"line_items"`
	MethodType  FulfillmentMethodType `json:"method_type"`
	Destination PostalAddress         `json:"destination"`
	Description string                `json:"description"`
}

// ShipmentEvent is one entry in an order's fulfillment event stream
// (spec.md §4.11).
type ShipmentEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// OrderFulfillment holds the expectations made at order creation and the
// events appended as shipments occur.
type OrderFulfillment struct {
	Expectations []Expectation   `json:"expectations,omitempty"`
	Events       []ShipmentEvent `json:"events,omitempty"`
}

// Order is the immutable-except-for-shipping post-checkout record
// (spec.md §3).
type Order struct {
	ID           string           `json:"id"`
	CheckoutID   string           `json:"checkout_id"`
	PermalinkURL string           `json:"permalink_url"`
	LineItems    []OrderLineItem  `json:"line_items"`
	Totals       []Total          `json:"totals"`
	Currency     string           `json:"currency"`
	Fulfillment  OrderFulfillment `json:"fulfillment"`
}

// Promotion is a catalog-defined promotional rule consulted by the
// fulfillment evaluator and the discount pass.
type Promotion struct {
	Type            string   `json:"type"` // e.g. "free_shipping"
	MinSubtotal     int64    `json:"min_subtotal,omitempty"`
	EligibleItemIDs []string `json:"eligible_item_ids,omitempty"`
}

// DiscountKind distinguishes percentage from fixed-amount discounts.
type DiscountKind string

const (
	DiscountPercentage  DiscountKind = "percentage"
	DiscountFixedAmount DiscountKind = "fixed_amount"
)

// Discount is a catalog-defined discount code definition.
type Discount struct {
	Code  string       `json:"code"`
	Title string       `json:"title"`
	Kind  DiscountKind `json:"kind"`
	Value int64        `json:"value"` // percentage points, or minor units for fixed_amount
}

// ShippingRate is a catalog-defined shipping rate row.
type ShippingRate struct {
	ID            string `json:"id"`
	CountryCode   string `json:"country_code"` // ISO country code, or "default"
	ServiceLevel  string `json:"service_level"`
	Title         string `json:"title"`
	Price         int64  `json:"price"`
}

// IdempotencyRecord is the persisted outcome of a previously executed
// mutating command (spec.md §4.8).
type IdempotencyRecord struct {
	Key            string `json:"key"`
	RequestHash    string `json:"request_hash"`
	ResponseStatus int    `json:"response_status"`
	ResponseBody   []byte `json:"response_body"`
	CreatedAt      string `json:"created_at"`
}

// RequestLogEntry is an append-only observational record of an inbound
// request (spec.md §3).
type RequestLogEntry struct {
	Timestamp  string `json:"timestamp"`
	Method     string `json:"method"`
	URL        string `json:"url"`
	CheckoutID string `json:"checkout_id,omitempty"`
	Payload    []byte `json:"payload,omitempty"`
}

// CustomerAddress is a buyer-scoped address record, de-duplicated
// field-for-field under the same customer (spec.md §4.1).
type CustomerAddress struct {
	ID              string `json:"id"`
	CustomerEmail   string `json:"customer_email"`
	StreetAddress   string `json:"street_address,omitempty"`
	AddressLocality string `json:"address_locality,omitempty"`
	AddressRegion   string `json:"address_region,omitempty"`
	PostalCode      string `json:"postal_code,omitempty"`
	AddressCountry  string `json:"address_country,omitempty"`
}
