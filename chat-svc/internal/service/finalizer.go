package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"neocafe-assistant/chat-svc/internal/domain"
	"neocafe-assistant/chat-svc/internal/metrics"
)

// OrderFinalizer converts a completed draft into a persisted order. Finalizing
// the same draft twice yields the same stored order, so a retried confirm can
// never double-charge.
type OrderFinalizer struct {
	orders OrderRepository
	qr     QRGenerator
	clock  Clock
}

func NewOrderFinalizer(orders OrderRepository, qr QRGenerator, clock Clock) *OrderFinalizer {
	if clock == nil {
		clock = SystemClock
	}
	return &OrderFinalizer{orders: orders, qr: qr, clock: clock}
}

// NewOrderID mints a short human-readable order identifier.
func NewOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Finalize persists the draft as an order. The draft keeps the minted id so a
// repeated call after a notification hiccup resolves to the already stored
// row instead of creating a second one.
func (f *OrderFinalizer) Finalize(ctx context.Context, draft *domain.OrderDraft, catalog domain.Catalog) (*domain.Order, error) {
	if draft == nil || len(draft.Items) == 0 {
		return nil, ErrEmptyDraft
	}

	if draft.ID == "" {
		draft.ID = NewOrderID()
	}

	if existing, err := f.orders.GetOrder(ctx, draft.ID); err == nil && existing != nil {
		draft.Advance(domain.StatusConfirmed)
		return existing, nil
	} else if err != nil && !errors.Is(err, ErrOrderNotFound) {
		return nil, fmt.Errorf("failed to check for existing order: %w", err)
	}

	draft.RecomputeTotal(catalog)

	order := &domain.Order{
		ID:               draft.ID,
		Items:            append([]domain.OrderLineItem(nil), draft.Items...),
		DeliveryType:     draft.DeliveryType,
		DeliveryLocation: draft.DeliveryLocation,
		PaymentMethod:    draft.PaymentMethod,
		Total:            draft.Total,
		Status:           "confirmed",
		CreatedAt:        f.clock.Now(),
	}

	if err := f.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist order %s: %w", order.ID, err)
	}
	draft.Advance(domain.StatusConfirmed)
	metrics.OrdersFinalized.Inc()

	// QR generation is best effort; a missing code never fails the order
	if f.qr != nil {
		if png, err := f.qr.Generate(order.ID); err == nil {
			if err := f.orders.SaveQRCode(ctx, order.ID, png); err != nil {
				log.Printf("Warning: failed to store QR code for order %s: %v", order.ID, err)
			}
		} else {
			log.Printf("Warning: failed to generate QR code for order %s: %v", order.ID, err)
		}
	}

	return order, nil
}
