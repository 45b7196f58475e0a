package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"neocafe-assistant/chat-svc/internal/domain"
	"neocafe-assistant/chat-svc/internal/metrics"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyDraft    = errors.New("draft has no items")
	ErrNoSession     = errors.New("session not found")
)

// slotPrompts maps each missing slot to its clarifying question. Location
// prompts depend on the delivery type and are handled in promptFor.
var slotPrompts = map[domain.MissingField]string{
	domain.MissingItems:         "What would you like to order?",
	domain.MissingDeliveryType:  "Would you like dine-in, pickup, or delivery?",
	domain.MissingPaymentMethod: "How would you like to pay? We accept credit card, cash, and mobile payment.",
}

// Engine drives the per-session slot-filling dialogue. Turns of one session
// are serialized on a per-session lock; different sessions run concurrently.
type Engine struct {
	sessions    SessionRepository
	catalog     CatalogSource
	normalizer  *IntentNormalizer
	matcher     *Matcher
	dialog      *VerificationDialog
	finalizer   *OrderFinalizer
	broadcaster OrderBroadcaster

	locks sync.Map // session id -> *sync.Mutex
}

func NewEngine(sessions SessionRepository, catalog CatalogSource, normalizer *IntentNormalizer,
	matcher *Matcher, dialog *VerificationDialog, finalizer *OrderFinalizer, broadcaster OrderBroadcaster) *Engine {
	return &Engine{
		sessions:    sessions,
		catalog:     catalog,
		normalizer:  normalizer,
		matcher:     matcher,
		dialog:      dialog,
		finalizer:   finalizer,
		broadcaster: broadcaster,
	}
}

var _ EngineInterface = (*Engine)(nil)

func (e *Engine) sessionLock(sessionID string) *sync.Mutex {
	lock, _ := e.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// ProcessTurn runs one turn of the dialogue. It never returns an error: every
// failure mode maps onto a turn result, and only a failed order persist
// surfaces as status error.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID, messageID string, input domain.TurnInput) domain.TurnResult {
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := e.sessions.Load(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrNoSession) {
		log.Printf("Warning: failed to load session %s, starting fresh: %v", sessionID, err)
	}
	if state == nil {
		state = &domain.ConversationState{SessionID: sessionID}
	}

	catalog, err := e.catalog.Snapshot(ctx)
	if err != nil {
		result := domain.TurnResult{Status: domain.TurnError, Message: "The menu is unavailable right now. Please try again in a moment."}
		metrics.TurnsProcessed.WithLabelValues(string(result.Status)).Inc()
		return result
	}

	// Replayed message: re-render the current prompt, mutate nothing.
	if state.SeenMessage(messageID) {
		return e.renderCurrent(state)
	}

	turn := e.resolveInput(input, state, catalog)

	var result domain.TurnResult
	if state.Draft != nil && state.Draft.Status == domain.StatusVerification {
		result = e.handleVerification(ctx, state, catalog, input, turn)
	} else {
		result = e.handleCollecting(ctx, state, catalog, turn)
	}

	state.RememberMessage(messageID)
	state.UpdatedAt = SystemClock.Now()
	if err := e.sessions.Save(ctx, state); err != nil {
		log.Printf("Warning: failed to save session %s: %v", sessionID, err)
	}

	metrics.TurnsProcessed.WithLabelValues(string(result.Status)).Inc()
	return result
}

// resolveInput collapses the ingress union into one normalized shape.
func (e *Engine) resolveInput(input domain.TurnInput, state *domain.ConversationState, catalog domain.Catalog) NormalizedTurn {
	if input.Kind == domain.InputStructured {
		return NormalizedTurn{Delta: input.Delta, Recognized: !input.Delta.Empty()}
	}
	var deliveryType domain.DeliveryType
	if state.Draft != nil {
		deliveryType = state.Draft.DeliveryType
	}
	return e.normalizer.Normalize(input.Text, state.PendingField, deliveryType, catalog)
}

func (e *Engine) handleCollecting(ctx context.Context, state *domain.ConversationState, catalog domain.Catalog, turn NormalizedTurn) domain.TurnResult {
	// explicit cancellation wins over everything else
	if turn.Cancel {
		if state.Draft == nil {
			return e.incomplete(state, "Nothing to cancel yet. "+slotPrompts[domain.MissingItems], domain.MissingItems)
		}
		return e.cancel(state)
	}

	if turn.Confirmation {
		if state.Draft == nil || len(state.Draft.Items) == 0 {
			return e.incomplete(state, slotPrompts[domain.MissingItems], domain.MissingItems)
		}
		prompt := promptFor(state.PendingField, state.Draft)
		return domain.TurnResult{Status: domain.TurnConfirmationOnly, Message: "Got it. " + prompt}
	}

	if !turn.Recognized {
		missing := domain.NextMissingField(state.Draft)
		msg := "Sorry, I didn't catch that. " + promptFor(missing, state.Draft)
		if len(turn.Unmatched) > 0 {
			msg = notFoundMessage(turn.Unmatched) + " " + promptFor(missing, state.Draft)
		}
		result := e.incomplete(state, msg, missing)
		result.Unmatched = turn.Unmatched
		return result
	}

	skipped := e.applyDelta(state, catalog, turn.Delta)
	turn.Unmatched = append(turn.Unmatched, skipped...)

	if state.Draft == nil {
		// delta carried delivery or payment details but no resolvable item;
		// a draft only comes into existence with its first item
		msg := slotPrompts[domain.MissingItems]
		if len(turn.Unmatched) > 0 {
			msg = notFoundMessage(turn.Unmatched) + " " + msg
		}
		result := e.incomplete(state, msg, domain.MissingItems)
		result.Unmatched = turn.Unmatched
		return result
	}

	state.Draft.RecomputeTotal(catalog)
	missing := domain.NextMissingField(state.Draft)
	state.PendingField = missing

	if missing == domain.MissingNone {
		state.Draft.Advance(domain.StatusVerification)
		e.previewBroadcast(ctx, state)
		summary := e.dialog.Summary(state.Draft) + "\n\nIs that everything? (confirm / add more / cancel)"
		return domain.TurnResult{Status: domain.TurnVerification, Message: summary, Draft: state.Draft, Unmatched: turn.Unmatched}
	}

	e.previewBroadcast(ctx, state)
	msg := promptFor(missing, state.Draft)
	if len(turn.Unmatched) > 0 {
		msg = notFoundMessage(turn.Unmatched) + " " + msg
	}
	result := e.incomplete(state, msg, missing)
	result.Unmatched = turn.Unmatched
	return result
}

func (e *Engine) handleVerification(ctx context.Context, state *domain.ConversationState, catalog domain.Catalog, input domain.TurnInput, turn NormalizedTurn) domain.TurnResult {
	reply := ReplyUnrecognized
	if input.Kind == domain.InputStructured {
		if !input.Delta.Empty() {
			reply = ReplyAddMore
		}
	} else {
		reply = e.dialog.Classify(input.Text, turn)
	}

	switch reply {
	case ReplyConfirm:
		return e.confirm(ctx, state, catalog)

	case ReplyCancel:
		return e.cancel(state)

	case ReplyAddMore:
		skipped := e.applyDelta(state, catalog, turn.Delta)
		state.Draft.RecomputeTotal(catalog)
		state.PendingField = domain.NextMissingField(state.Draft)
		if state.PendingField != domain.MissingNone {
			// an addition can reopen a slot (e.g. switching to delivery
			// drops the table location); fall back to collecting
			state.Draft.Advance(domain.StatusCollecting)
			e.previewBroadcast(ctx, state)
			return e.incomplete(state, promptFor(state.PendingField, state.Draft), state.PendingField)
		}
		e.previewBroadcast(ctx, state)
		msg := e.dialog.Summary(state.Draft) + "\n\nAnything else? (confirm / add more / cancel)"
		if len(turn.Unmatched)+len(skipped) > 0 {
			msg = notFoundMessage(append(turn.Unmatched, skipped...)) + "\n\n" + msg
		}
		return domain.TurnResult{Status: domain.TurnVerification, Message: msg, Draft: state.Draft}

	default:
		msg := "Sorry, I didn't catch that.\n\n" + e.dialog.Summary(state.Draft) +
			"\n\nPlease reply with confirm, add more, or cancel."
		return domain.TurnResult{Status: domain.TurnVerification, Message: msg, Draft: state.Draft}
	}
}

func (e *Engine) confirm(ctx context.Context, state *domain.ConversationState, catalog domain.Catalog) domain.TurnResult {
	order, err := e.finalizer.Finalize(ctx, state.Draft, catalog)
	if err != nil {
		// the draft is retained so the user can simply confirm again
		log.Printf("Error finalizing order for session %s: %v", state.SessionID, err)
		return domain.TurnResult{
			Status:  domain.TurnError,
			Message: "We couldn't place your order just now. Your cart is untouched; please try confirming again.",
			Draft:   state.Draft,
		}
	}

	update := domain.OrderUpdate{
		Kind:      domain.UpdateFinalized,
		SessionID: state.SessionID,
		Order:     *order,
		Timestamp: SystemClock.Now(),
	}
	if res := e.broadcaster.Broadcast(ctx, update); !res.Success() {
		log.Printf("Warning: all notification channels failed for order %s", order.ID)
	}

	state.Draft = nil
	state.PendingField = domain.MissingNone

	msg := fmt.Sprintf("Thank you for your order! Your order ID is %s. Your total is $%.2f.", order.ID, order.Total)
	return domain.TurnResult{Status: domain.TurnSuccess, Message: msg, Order: order}
}

func (e *Engine) cancel(state *domain.ConversationState) domain.TurnResult {
	if state.Draft != nil {
		state.Draft.Advance(domain.StatusCancelled)
	}
	state.Draft = nil
	state.PendingField = domain.MissingNone
	return domain.TurnResult{Status: domain.TurnConfirmationOnly, Message: "Your order has been cancelled."}
}

// applyDelta merges a delta into the session's draft, creating the draft when
// the first item resolves. It returns the references that matched nothing.
func (e *Engine) applyDelta(state *domain.ConversationState, catalog domain.Catalog, delta domain.OrderDelta) []string {
	var skipped []string

	for _, di := range delta.Items {
		match, ok := e.matcher.Resolve(di.Ref, catalog)
		if !ok {
			skipped = append(skipped, di.Ref)
			continue
		}
		if state.Draft == nil {
			state.Draft = domain.NewDraft()
		}
		instructions := di.SpecialInstructions
		if instructions == "" {
			instructions = match.SpecialInstructions
		}
		state.Draft.AddLine(domain.OrderLineItem{
			CatalogID:           match.Item.ID,
			Name:                match.Item.Name,
			UnitPrice:           match.Item.Price,
			Quantity:            di.Quantity,
			SpecialInstructions: instructions,
		})
	}

	if state.Draft == nil {
		return skipped
	}

	if delta.DeliveryType != domain.DeliveryUnset {
		state.Draft.DeliveryType = delta.DeliveryType
		if delta.DeliveryType == domain.DeliveryPickup {
			state.Draft.DeliveryLocation = domain.PickupLocation
		} else if !delta.DeliveryType.LocationRequired() {
			state.Draft.DeliveryLocation = ""
		}
	}
	if delta.DeliveryLocation != "" {
		state.Draft.DeliveryLocation = delta.DeliveryLocation
	}
	if delta.PaymentMethod != domain.PaymentUnset {
		state.Draft.PaymentMethod = delta.PaymentMethod
	}
	return skipped
}

// previewBroadcast pushes the live draft so dashboards can mirror the cart.
// Failures are already recorded per channel; a dead fan-out never blocks the
// turn.
func (e *Engine) previewBroadcast(ctx context.Context, state *domain.ConversationState) {
	if state.Draft == nil {
		return
	}
	update := domain.OrderUpdate{
		Kind:      domain.UpdateDraftPreview,
		SessionID: state.SessionID,
		Order: domain.Order{
			ID:               state.Draft.ID,
			Items:            state.Draft.Items,
			DeliveryType:     state.Draft.DeliveryType,
			DeliveryLocation: state.Draft.DeliveryLocation,
			PaymentMethod:    state.Draft.PaymentMethod,
			Total:            state.Draft.Total,
			Status:           string(state.Draft.Status),
		},
		Timestamp: SystemClock.Now(),
	}
	e.broadcaster.Broadcast(ctx, update)
}

func (e *Engine) incomplete(state *domain.ConversationState, message string, missing domain.MissingField) domain.TurnResult {
	state.PendingField = missing
	return domain.TurnResult{
		Status:       domain.TurnIncomplete,
		Message:      message,
		MissingField: missing,
		Draft:        state.Draft,
	}
}

// renderCurrent re-emits the prompt for the session's current state without
// mutating anything. Used for duplicate message ids.
func (e *Engine) renderCurrent(state *domain.ConversationState) domain.TurnResult {
	if state.Draft == nil {
		return domain.TurnResult{Status: domain.TurnIncomplete, Message: slotPrompts[domain.MissingItems], MissingField: domain.MissingItems}
	}
	if state.Draft.Status == domain.StatusVerification {
		msg := e.dialog.Summary(state.Draft) + "\n\nIs that everything? (confirm / add more / cancel)"
		return domain.TurnResult{Status: domain.TurnVerification, Message: msg, Draft: state.Draft}
	}
	missing := domain.NextMissingField(state.Draft)
	return domain.TurnResult{
		Status:       domain.TurnIncomplete,
		Message:      promptFor(missing, state.Draft),
		MissingField: missing,
		Draft:        state.Draft,
	}
}

// Draft returns the live draft for a session, or ErrNoSession.
func (e *Engine) Draft(ctx context.Context, sessionID string) (*domain.OrderDraft, error) {
	state, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil || state.Draft == nil {
		return nil, ErrNoSession
	}
	return state.Draft, nil
}

// CancelSession cancels any in-flight draft and removes the stored state.
func (e *Engine) CancelSession(ctx context.Context, sessionID string) error {
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()
	return e.sessions.Delete(ctx, sessionID)
}

func promptFor(missing domain.MissingField, draft *domain.OrderDraft) string {
	if missing == domain.MissingDeliveryLocation && draft != nil {
		if draft.DeliveryType == domain.DeliveryDineIn {
			return "Which table are you at?"
		}
		return "What address should we deliver to?"
	}
	if prompt, ok := slotPrompts[missing]; ok {
		return prompt
	}
	return "Is that everything?"
}

func notFoundMessage(refs []string) string {
	if len(refs) == 1 {
		return fmt.Sprintf("Sorry, %q is not on our menu.", refs[0])
	}
	quoted := make([]string, len(refs))
	for i, r := range refs {
		quoted[i] = fmt.Sprintf("%q", r)
	}
	return fmt.Sprintf("Sorry, these are not on our menu: %s.", joinComma(quoted))
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
