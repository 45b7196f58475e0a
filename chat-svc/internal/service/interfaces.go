package service

import (
	"context"
	"time"

	"neocafe-assistant/chat-svc/internal/domain"
)

// CatalogSource supplies read-only menu snapshots.
type CatalogSource interface {
	Snapshot(ctx context.Context) (domain.Catalog, error)
}

// OrderRepository is the durable order store. CreateOrder is create-by-id:
// inserting an id that already exists is a no-op and GetOrder returns the
// previously stored record.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	SaveQRCode(ctx context.Context, orderID string, qr []byte) error
	GetQRCode(ctx context.Context, orderID string) ([]byte, error)
}

// SessionRepository persists ConversationState between turns.
type SessionRepository interface {
	Load(ctx context.Context, sessionID string) (*domain.ConversationState, error)
	Save(ctx context.Context, state *domain.ConversationState) error
	Delete(ctx context.Context, sessionID string) error
}

// NotificationChannel is one concrete delivery mechanism for order updates.
// Send must respect ctx cancellation; the broadcaster bounds each attempt.
type NotificationChannel interface {
	Name() string
	Send(ctx context.Context, update domain.OrderUpdate) error
}

// OrderBroadcaster fans an update out across all configured channels.
type OrderBroadcaster interface {
	Broadcast(ctx context.Context, update domain.OrderUpdate) BroadcastResult
}

// QRGenerator renders a pickup code for a finalized order.
type QRGenerator interface {
	Generate(orderID string) ([]byte, error)
}

// EngineInterface is the turn-processing surface exposed to the API layer.
type EngineInterface interface {
	ProcessTurn(ctx context.Context, sessionID, messageID string, input domain.TurnInput) domain.TurnResult
	Draft(ctx context.Context, sessionID string) (*domain.OrderDraft, error)
	CancelSession(ctx context.Context, sessionID string) error
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock used outside tests.
var SystemClock Clock = systemClock{}
