package domain

import "time"

// MissingField names the next slot the dialogue still has to fill. The
// priority order is fixed: items, delivery type, location, payment.
type MissingField string

const (
	MissingNone             MissingField = ""
	MissingItems            MissingField = "items"
	MissingDeliveryType     MissingField = "delivery_type"
	MissingDeliveryLocation MissingField = "delivery_location"
	MissingPaymentMethod    MissingField = "payment_method"
)

// NextMissingField computes the highest-priority unfilled slot of a draft.
func NextMissingField(d *OrderDraft) MissingField {
	switch {
	case d == nil || len(d.Items) == 0:
		return MissingItems
	case d.DeliveryType == DeliveryUnset:
		return MissingDeliveryType
	case d.DeliveryType.LocationRequired() && d.DeliveryLocation == "":
		return MissingDeliveryLocation
	case d.PaymentMethod == PaymentUnset:
		return MissingPaymentMethod
	default:
		return MissingNone
	}
}

// DedupWindowSize bounds the per-session window of already-handled message
// ids. Anything older than the newest N ids is forgotten.
const DedupWindowSize = 20

// ConversationState is everything persisted for one chat session between
// turns. Exactly one state exists per session id.
type ConversationState struct {
	SessionID        string       `json:"session_id"`
	Draft            *OrderDraft  `json:"draft,omitempty"`
	PendingField     MissingField `json:"pending_missing_field,omitempty"`
	RecentMessageIDs []string     `json:"recent_message_ids,omitempty"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// SeenMessage reports whether the message id is inside the dedup window.
func (s *ConversationState) SeenMessage(id string) bool {
	if id == "" {
		return false
	}
	for _, seen := range s.RecentMessageIDs {
		if seen == id {
			return true
		}
	}
	return false
}

// RememberMessage records a handled message id, evicting the oldest entry
// once the window is full.
func (s *ConversationState) RememberMessage(id string) {
	if id == "" {
		return
	}
	s.RecentMessageIDs = append(s.RecentMessageIDs, id)
	if len(s.RecentMessageIDs) > DedupWindowSize {
		s.RecentMessageIDs = s.RecentMessageIDs[len(s.RecentMessageIDs)-DedupWindowSize:]
	}
}

// DeltaItem is one item reference inside a structured delta. Ref may be a
// catalog id, an exact name, or a free-text fragment.
type DeltaItem struct {
	Ref                 string `json:"ref"`
	Quantity            int    `json:"quantity,omitempty"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

// OrderDelta is a partial update extracted from one turn.
type OrderDelta struct {
	Items            []DeltaItem   `json:"items,omitempty"`
	DeliveryType     DeliveryType  `json:"delivery_type,omitempty"`
	DeliveryLocation string        `json:"delivery_location,omitempty"`
	PaymentMethod    PaymentMethod `json:"payment_method,omitempty"`
}

// Empty reports whether the delta carries no information at all.
func (d OrderDelta) Empty() bool {
	return len(d.Items) == 0 && d.DeliveryType == DeliveryUnset &&
		d.DeliveryLocation == "" && d.PaymentMethod == PaymentUnset
}

// TurnInputKind discriminates the two ingress shapes.
type TurnInputKind string

const (
	InputStructured TurnInputKind = "structured"
	InputFreeText   TurnInputKind = "free_text"
)

// TurnInput is the tagged union resolved at ingress: exactly one of Delta or
// Text is meaningful, per Kind.
type TurnInput struct {
	Kind  TurnInputKind
	Delta OrderDelta
	Text  string
}

// StructuredInput wraps a delta as a turn input.
func StructuredInput(delta OrderDelta) TurnInput {
	return TurnInput{Kind: InputStructured, Delta: delta}
}

// TextInput wraps a raw utterance as a turn input.
func TextInput(text string) TurnInput {
	return TurnInput{Kind: InputFreeText, Text: text}
}

// TurnStatus is the outcome class of one processed turn.
type TurnStatus string

const (
	TurnIncomplete       TurnStatus = "incomplete"
	TurnVerification     TurnStatus = "verification"
	TurnConfirmationOnly TurnStatus = "confirmation_only"
	TurnSuccess          TurnStatus = "success"
	TurnError            TurnStatus = "error"
)

// TurnResult is the envelope returned to the caller after each turn.
type TurnResult struct {
	Status       TurnStatus   `json:"status"`
	Message      string       `json:"message"`
	MissingField MissingField `json:"missing_field,omitempty"`
	Draft        *OrderDraft  `json:"draft,omitempty"`
	Order        *Order       `json:"order,omitempty"`
	Unmatched    []string     `json:"unmatched_items,omitempty"`
}
