package domain

import "time"

// DeliveryType says how the customer wants to receive the order.
type DeliveryType string

const (
	DeliveryUnset   DeliveryType = ""
	DeliveryDineIn  DeliveryType = "dine-in"
	DeliveryPickup  DeliveryType = "pickup"
	DeliveryCourier DeliveryType = "delivery"
)

// PaymentMethod is one of the accepted payment options.
type PaymentMethod string

const (
	PaymentUnset      PaymentMethod = ""
	PaymentCreditCard PaymentMethod = "credit-card"
	PaymentCash       PaymentMethod = "cash"
	PaymentMobile     PaymentMethod = "mobile"
)

// DraftStatus tracks where a draft is in its lifecycle. Statuses only move
// forward: COLLECTING -> VERIFICATION -> CONFIRMED, or -> CANCELLED from any
// non-terminal status.
type DraftStatus string

const (
	StatusCollecting   DraftStatus = "COLLECTING"
	StatusVerification DraftStatus = "VERIFICATION"
	StatusConfirmed    DraftStatus = "CONFIRMED"
	StatusCancelled    DraftStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are allowed.
func (s DraftStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// CanAdvanceTo enforces the forward-only status order.
func (s DraftStatus) CanAdvanceTo(next DraftStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case StatusCancelled:
		return true
	case StatusCollecting:
		// an addition during verification can reopen a slot
		return s == StatusVerification
	case StatusVerification:
		return s == StatusCollecting || s == StatusVerification
	case StatusConfirmed:
		return s == StatusVerification
	default:
		return false
	}
}

// OrderLineItem is one line of a draft or finalized order.
type OrderLineItem struct {
	CatalogID           string  `json:"catalog_id"`
	Name                string  `json:"name"`
	UnitPrice           float64 `json:"unit_price"`
	Quantity            int     `json:"quantity"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

// OrderDraft is the in-progress order owned by one conversation.
type OrderDraft struct {
	ID               string          `json:"id,omitempty"`
	Items            []OrderLineItem `json:"items"`
	DeliveryType     DeliveryType    `json:"delivery_type,omitempty"`
	DeliveryLocation string          `json:"delivery_location,omitempty"`
	PaymentMethod    PaymentMethod   `json:"payment_method,omitempty"`
	Total            float64         `json:"total"`
	Status           DraftStatus     `json:"status"`
}

// Advance moves the draft to next when the transition is legal and reports
// whether it did.
func (d *OrderDraft) Advance(next DraftStatus) bool {
	if !d.Status.CanAdvanceTo(next) {
		return false
	}
	d.Status = next
	return true
}

// NewDraft returns an empty draft in the collecting state.
func NewDraft() *OrderDraft {
	return &OrderDraft{Status: StatusCollecting}
}

// RecomputeTotal derives the total from the catalog snapshot. Lines whose
// catalog id no longer resolves contribute nothing.
func (d *OrderDraft) RecomputeTotal(catalog Catalog) {
	var total float64
	for i := range d.Items {
		item := catalog.ByID(d.Items[i].CatalogID)
		if item == nil {
			continue
		}
		d.Items[i].UnitPrice = item.Price
		total += item.Price * float64(d.Items[i].Quantity)
	}
	d.Total = total
}

// AddLine merges a line into the draft; an existing line for the same catalog
// id and instructions has its quantity bumped instead of being duplicated.
func (d *OrderDraft) AddLine(line OrderLineItem) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	for i := range d.Items {
		if d.Items[i].CatalogID == line.CatalogID &&
			d.Items[i].SpecialInstructions == line.SpecialInstructions {
			d.Items[i].Quantity += line.Quantity
			return
		}
	}
	d.Items = append(d.Items, line)
}

// LocationRequired reports whether the delivery type still needs an explicit
// location from the user. Pickup orders get a fixed counter location.
func (t DeliveryType) LocationRequired() bool {
	return t == DeliveryDineIn || t == DeliveryCourier
}

// PickupLocation is the fixed location stamped on pickup orders.
const PickupLocation = "Counter"

// Order is the immutable persisted record produced on confirmation.
type Order struct {
	ID               string          `json:"id"`
	Items            []OrderLineItem `json:"items"`
	DeliveryType     DeliveryType    `json:"delivery_type"`
	DeliveryLocation string          `json:"delivery_location"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	Total            float64         `json:"total"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

// OrderUpdateKind tags a broadcast payload as a live draft preview or a
// finalized order.
type OrderUpdateKind string

const (
	UpdateDraftPreview OrderUpdateKind = "draft_preview"
	UpdateFinalized    OrderUpdateKind = "order_finalized"
)

// OrderUpdate is the payload fanned out to notification channels.
type OrderUpdate struct {
	Kind      OrderUpdateKind `json:"kind"`
	SessionID string          `json:"session_id"`
	Order     Order           `json:"order"`
	Timestamp time.Time       `json:"timestamp"`
}
