package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"neocafe-assistant/chat-svc/internal/domain"
	"neocafe-assistant/chat-svc/internal/mocks"
	"neocafe-assistant/chat-svc/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testCatalog() domain.Catalog {
	return domain.Catalog{Items: []domain.CatalogItem{
		{ID: "espresso", Name: "Espresso", Price: 2.95, Category: "coffee"},
		{ID: "latte", Name: "Latte", Price: 4.50, Category: "coffee"},
		{ID: "cappuccino", Name: "Cappuccino", Price: 4.25, Category: "coffee"},
		{ID: "croissant", Name: "Croissant", Price: 3.25, Category: "pastry"},
	}}
}

// memSessionStore keeps conversation state in memory so multi-turn scenarios
// can run against real persistence semantics.
type memSessionStore struct {
	mu     sync.Mutex
	states map[string]*domain.ConversationState
	saves  int
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{states: make(map[string]*domain.ConversationState)}
}

func (s *memSessionStore) Load(_ context.Context, sessionID string) (*domain.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[sessionID]
	if !ok {
		return nil, service.ErrNoSession
	}
	return state, nil
}

func (s *memSessionStore) Save(_ context.Context, state *domain.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.SessionID] = state
	s.saves++
	return nil
}

func (s *memSessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	return nil
}

// recordingBroadcaster captures every fan-out without touching a real channel.
type recordingBroadcaster struct {
	mu      sync.Mutex
	updates []domain.OrderUpdate
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, update domain.OrderUpdate) service.BroadcastResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, update)
	return service.BroadcastResult{Succeeded: []string{"recording"}}
}

func (b *recordingBroadcaster) kinds() []domain.OrderUpdateKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	kinds := make([]domain.OrderUpdateKind, 0, len(b.updates))
	for _, u := range b.updates {
		kinds = append(kinds, u.Kind)
	}
	return kinds
}

type engineFixture struct {
	engine      *service.Engine
	sessions    *memSessionStore
	orders      *mocks.OrderRepository
	broadcaster *recordingBroadcaster
}

func newEngineFixture(t *testing.T) *engineFixture {
	catalogSource := mocks.NewCatalogSource(t)
	catalogSource.On("Snapshot", mock.Anything).Return(testCatalog(), nil).Maybe()

	orders := mocks.NewOrderRepository(t)
	qr := mocks.NewQRGenerator(t)
	qr.On("Generate", mock.Anything).Return([]byte("png"), nil).Maybe()

	sessions := newMemSessionStore()
	broadcaster := &recordingBroadcaster{}

	phrases := service.DefaultPhrases()
	matcher := service.NewMatcher()
	normalizer := service.NewIntentNormalizer(matcher, phrases)
	dialog := service.NewVerificationDialog(phrases)
	finalizer := service.NewOrderFinalizer(orders, qr, service.SystemClock)

	engine := service.NewEngine(sessions, catalogSource, normalizer, matcher, dialog, finalizer, broadcaster)
	return &engineFixture{engine: engine, sessions: sessions, orders: orders, broadcaster: broadcaster}
}

func TestEngine_SlotFillingToOrder(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.orders.On("GetOrder", mock.Anything, mock.Anything).Return(nil, service.ErrOrderNotFound).Once()
	f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(nil).Once()
	f.orders.On("SaveQRCode", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	result := f.engine.ProcessTurn(ctx, "s1", "m1", domain.TextInput("I'd like 2 lattes and a croissant"))
	assert.Equal(t, domain.TurnIncomplete, result.Status)
	assert.Equal(t, domain.MissingDeliveryType, result.MissingField)
	assert.Len(t, result.Draft.Items, 2)
	assert.InDelta(t, 12.25, result.Draft.Total, 0.001)

	result = f.engine.ProcessTurn(ctx, "s1", "m2", domain.TextInput("dine in"))
	assert.Equal(t, domain.TurnIncomplete, result.Status)
	assert.Equal(t, domain.MissingDeliveryLocation, result.MissingField)
	assert.Contains(t, result.Message, "table")

	result = f.engine.ProcessTurn(ctx, "s1", "m3", domain.TextInput("Table 5"))
	assert.Equal(t, domain.TurnIncomplete, result.Status)
	assert.Equal(t, domain.MissingPaymentMethod, result.MissingField)
	assert.Equal(t, "Table 5", result.Draft.DeliveryLocation)

	result = f.engine.ProcessTurn(ctx, "s1", "m4", domain.TextInput("cash"))
	assert.Equal(t, domain.TurnVerification, result.Status)
	assert.Contains(t, result.Message, "Total: $12.25")
	assert.Contains(t, result.Message, "2x Latte")

	result = f.engine.ProcessTurn(ctx, "s1", "m5", domain.TextInput("that's all"))
	assert.Equal(t, domain.TurnSuccess, result.Status)
	assert.NotNil(t, result.Order)
	assert.Contains(t, result.Order.ID, "ORD-")
	assert.InDelta(t, 12.25, result.Order.Total, 0.001)

	// the draft is gone once the order is placed
	_, err := f.engine.Draft(ctx, "s1")
	assert.ErrorIs(t, err, service.ErrNoSession)

	kinds := f.broadcaster.kinds()
	assert.Equal(t, domain.UpdateFinalized, kinds[len(kinds)-1])
}

func TestEngine_PickupSkipsLocation(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.engine.ProcessTurn(ctx, "s2", "m1", domain.TextInput("one cappuccino"))
	result := f.engine.ProcessTurn(ctx, "s2", "m2", domain.TextInput("pickup please"))

	assert.Equal(t, domain.TurnIncomplete, result.Status)
	assert.Equal(t, domain.MissingPaymentMethod, result.MissingField)
	assert.Equal(t, domain.PickupLocation, result.Draft.DeliveryLocation)
}

func TestEngine_ConfirmationWithoutDraft(t *testing.T) {
	f := newEngineFixture(t)

	result := f.engine.ProcessTurn(context.Background(), "s3", "m1", domain.TextInput("ok"))

	assert.Equal(t, domain.TurnIncomplete, result.Status)
	assert.Equal(t, domain.MissingItems, result.MissingField)
	assert.Contains(t, result.Message, "What would you like to order?")
}

func TestEngine_UnknownItemSurfaced(t *testing.T) {
	f := newEngineFixture(t)

	result := f.engine.ProcessTurn(context.Background(), "s4", "m1", domain.TextInput("2 flat whites please"))

	assert.Equal(t, domain.TurnIncomplete, result.Status)
	assert.NotEmpty(t, result.Unmatched)
	assert.Contains(t, result.Message, "not on our menu")
}

func TestEngine_DuplicateMessageDoesNotMutate(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	first := f.engine.ProcessTurn(ctx, "s5", "m1", domain.TextInput("a latte"))
	assert.Len(t, first.Draft.Items, 1)
	assert.Equal(t, 1, first.Draft.Items[0].Quantity)
	savesAfterFirst := f.sessions.saves

	replay := f.engine.ProcessTurn(ctx, "s5", "m1", domain.TextInput("a latte"))
	assert.Equal(t, domain.TurnIncomplete, replay.Status)
	assert.Len(t, replay.Draft.Items, 1)
	assert.Equal(t, 1, replay.Draft.Items[0].Quantity)
	assert.Equal(t, savesAfterFirst, f.sessions.saves)
}

func TestEngine_CancelClearsDraft(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.engine.ProcessTurn(ctx, "s6", "m1", domain.TextInput("an espresso"))
	result := f.engine.ProcessTurn(ctx, "s6", "m2", domain.TextInput("never mind"))

	assert.Equal(t, domain.TurnConfirmationOnly, result.Status)
	assert.Contains(t, result.Message, "cancelled")

	_, err := f.engine.Draft(ctx, "s6")
	assert.ErrorIs(t, err, service.ErrNoSession)
}

func TestEngine_VerificationAddMore(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.engine.ProcessTurn(ctx, "s7", "m1", domain.TextInput("a latte"))
	f.engine.ProcessTurn(ctx, "s7", "m2", domain.TextInput("to go"))
	result := f.engine.ProcessTurn(ctx, "s7", "m3", domain.TextInput("cash"))
	assert.Equal(t, domain.TurnVerification, result.Status)

	result = f.engine.ProcessTurn(ctx, "s7", "m4", domain.TextInput("add a croissant"))
	assert.Equal(t, domain.TurnVerification, result.Status)
	assert.Contains(t, result.Message, "1x Croissant")
	assert.Contains(t, result.Message, "Total: $7.75")
}

// A cancel wrapped in an affirmation must cancel, never place the order.
func TestEngine_VerificationAffirmedCancelCancels(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.engine.ProcessTurn(ctx, "s11", "m1", domain.TextInput("a latte"))
	f.engine.ProcessTurn(ctx, "s11", "m2", domain.TextInput("pickup"))
	f.engine.ProcessTurn(ctx, "s11", "m3", domain.TextInput("cash"))

	result := f.engine.ProcessTurn(ctx, "s11", "m4", domain.TextInput("okay cancel"))
	assert.Equal(t, domain.TurnConfirmationOnly, result.Status)
	assert.Contains(t, result.Message, "cancelled")
	assert.Nil(t, result.Order)

	_, err := f.engine.Draft(ctx, "s11")
	assert.ErrorIs(t, err, service.ErrNoSession)

	f.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestEngine_VerificationUnrecognizedReprompts(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.engine.ProcessTurn(ctx, "s8", "m1", domain.TextInput("a latte"))
	f.engine.ProcessTurn(ctx, "s8", "m2", domain.TextInput("pickup"))
	f.engine.ProcessTurn(ctx, "s8", "m3", domain.TextInput("card"))

	result := f.engine.ProcessTurn(ctx, "s8", "m4", domain.TextInput("purple elephant"))
	assert.Equal(t, domain.TurnVerification, result.Status)
	assert.Contains(t, result.Message, "confirm, add more, or cancel")
	assert.Len(t, result.Draft.Items, 1)
}

func TestEngine_FinalizeFailureKeepsDraft(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.orders.On("GetOrder", mock.Anything, mock.Anything).Return(nil, service.ErrOrderNotFound).Once()
	f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

	f.engine.ProcessTurn(ctx, "s9", "m1", domain.TextInput("a latte"))
	f.engine.ProcessTurn(ctx, "s9", "m2", domain.TextInput("pickup"))
	f.engine.ProcessTurn(ctx, "s9", "m3", domain.TextInput("cash"))

	result := f.engine.ProcessTurn(ctx, "s9", "m4", domain.TextInput("confirm"))
	assert.Equal(t, domain.TurnError, result.Status)
	assert.NotNil(t, result.Draft)

	draft, err := f.engine.Draft(ctx, "s9")
	assert.NoError(t, err)
	assert.Len(t, draft.Items, 1)
}

func TestEngine_StructuredDelta(t *testing.T) {
	f := newEngineFixture(t)

	delta := domain.OrderDelta{
		Items:        []domain.DeltaItem{{Ref: "latte", Quantity: 2}},
		DeliveryType: domain.DeliveryPickup,
	}
	result := f.engine.ProcessTurn(context.Background(), "s10", "m1", domain.StructuredInput(delta))

	assert.Equal(t, domain.TurnIncomplete, result.Status)
	assert.Equal(t, domain.MissingPaymentMethod, result.MissingField)
	assert.Equal(t, 2, result.Draft.Items[0].Quantity)
}
