package service

import (
	"fmt"
	"strings"

	"neocafe-assistant/chat-svc/internal/domain"
)

// VerificationReply is the classification of a reply while a summary is
// awaiting confirmation.
type VerificationReply string

const (
	ReplyConfirm      VerificationReply = "confirm"
	ReplyAddMore      VerificationReply = "add_more"
	ReplyCancel       VerificationReply = "cancel"
	ReplyUnrecognized VerificationReply = "unrecognized"
)

// VerificationDialog renders order summaries and classifies the replies to
// them. It shares the normalizer's phrase sets so "that's all" means the same
// thing in both phases.
type VerificationDialog struct {
	phrases PhraseConfig
}

func NewVerificationDialog(phrases PhraseConfig) *VerificationDialog {
	return &VerificationDialog{phrases: phrases}
}

// Summary renders the canonical line-itemized order summary. It must be
// regenerated after every draft mutation so the user always confirms what the
// draft actually holds.
func (v *VerificationDialog) Summary(draft *domain.OrderDraft) string {
	var b strings.Builder
	b.WriteString("Your Order:\n")
	for _, line := range draft.Items {
		subtotal := line.UnitPrice * float64(line.Quantity)
		b.WriteString(fmt.Sprintf("- %dx %s ($%.2f)", line.Quantity, line.Name, subtotal))
		if line.SpecialInstructions != "" {
			b.WriteString(fmt.Sprintf(" [%s]", line.SpecialInstructions))
		}
		b.WriteString("\n")
	}
	if draft.DeliveryType != domain.DeliveryUnset {
		b.WriteString(fmt.Sprintf("Delivery: %s", draft.DeliveryType))
		if draft.DeliveryLocation != "" {
			b.WriteString(fmt.Sprintf(" (%s)", draft.DeliveryLocation))
		}
		b.WriteString("\n")
	}
	if draft.PaymentMethod != domain.PaymentUnset {
		b.WriteString(fmt.Sprintf("Payment: %s\n", draft.PaymentMethod))
	}
	b.WriteString(fmt.Sprintf("Total: $%.2f", draft.Total))
	if draft.Status == domain.StatusConfirmed && draft.ID != "" {
		b.WriteString(fmt.Sprintf("\nStatus: Confirmed (Order ID: %s)", draft.ID))
	}
	return b.String()
}

// Classify decides what a verification-phase reply means. Precedence when
// several sets match is cancel > add-more > confirm, with one exception: a
// reply that IS a canonical affirmation phrase, whole, and mentions no item
// is always a confirm ("sure" must not read as an addition just because
// "sure" contains no order content). The exception is an exact match on
// purpose: "okay cancel" contains an affirmation but is not one.
func (v *VerificationDialog) Classify(text string, turn NormalizedTurn) VerificationReply {
	norm := normalizeUtterance(text)
	if norm == "" {
		return ReplyUnrecognized
	}

	if len(turn.Delta.Items) == 0 && isExactAffirmation(norm, v.phrases.Confirmation) {
		return ReplyConfirm
	}
	if matchesPhraseSet(norm, v.phrases.Cancel) {
		return ReplyCancel
	}
	if len(turn.Delta.Items) > 0 || matchesPhraseSet(norm, v.phrases.Addition) {
		return ReplyAddMore
	}
	if matchesPhraseSet(norm, v.phrases.Confirmation) {
		return ReplyConfirm
	}
	return ReplyUnrecognized
}
