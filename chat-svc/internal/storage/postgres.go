package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"neocafe-assistant/chat-svc/internal/domain"
	"neocafe-assistant/chat-svc/internal/service"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

var _ service.OrderRepository = (*PostgresRepository)(nil)

// CreateOrder inserts the order, treating a duplicate id as success so a
// retried finalize resolves to the already stored row.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO orders (id, items, delivery_type, delivery_location, payment_method, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, order.ID, items, string(order.DeliveryType), order.DeliveryLocation,
		string(order.PaymentMethod), order.Total, order.Status, order.CreatedAt)
	return err
}

func (r *PostgresRepository) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	var items []byte
	var deliveryType, paymentMethod string
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, items, delivery_type, delivery_location, payment_method, total, status, created_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(&order.ID, &items, &deliveryType, &order.DeliveryLocation,
		&paymentMethod, &order.Total, &order.Status, &order.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, service.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	order.DeliveryType = domain.DeliveryType(deliveryType)
	order.PaymentMethod = domain.PaymentMethod(paymentMethod)
	return &order, nil
}

func (r *PostgresRepository) SaveQRCode(ctx context.Context, orderID string, qr []byte) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE orders SET qr_code = $1 WHERE id = $2
	`, qr, orderID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return service.ErrOrderNotFound
	}
	return nil
}

func (r *PostgresRepository) GetQRCode(ctx context.Context, orderID string) ([]byte, error) {
	var qr []byte
	err := r.DB.QueryRowContext(ctx, `
		SELECT qr_code FROM orders WHERE id = $1
	`, orderID).Scan(&qr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, service.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(qr) == 0 {
		return nil, service.ErrOrderNotFound
	}
	return qr, nil
}
