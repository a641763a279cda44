package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wolfcafe/models"
	"wolfcafe/pkg/logger"

	"github.com/google/uuid"
)

// OrderRepository stores orders and their line items. Create writes several
// rows and relies on being called inside Store.Atomic.
type OrderRepository struct {
	logger *logger.Logger
	q      Querier
}

func NewOrderRepository(logger *logger.Logger, q Querier) *OrderRepository {
	return &OrderRepository{
		logger: logger.WithComponent("order_repository"),
		q:      q,
	}
}

const selectOrders = `
	SELECT o.id, o.created_at, o.status, o.subtotal, o.tax, o.tip,
	       o.customer_id, o.customer_name, o.item_summary,
	       COALESCE(
	           json_agg(
	               json_build_object(
	                   'id', oi.id,
	                   'menu_item_id', oi.menu_item_id,
	                   'item_name', m.name,
	                   'quantity', oi.quantity
	               ) ORDER BY oi.position
	           ) FILTER (WHERE oi.id IS NOT NULL), '[]'::json
	       ) AS items
	FROM orders o
	LEFT JOIN order_items oi ON oi.order_id = o.id
	LEFT JOIN menu_items m ON m.id = oi.menu_item_id
`

const groupOrders = ` GROUP BY o.id ORDER BY o.created_at, o.id`

// Create inserts the order with its line items, assigning ids
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.logger.Debug("Creating order", "items", len(order.Items))

	order.ID = uuid.NewString()

	query := `
		INSERT INTO orders (id, created_at, status, subtotal, tax, tip, customer_id, customer_name, item_summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.q.ExecContext(ctx, query,
		order.ID, order.CreatedAt, string(order.Status), order.Subtotal, order.Tax, order.Tip,
		nullString(order.CustomerID), order.CustomerName, order.ItemSummary)
	if err != nil {
		r.logger.Error("Failed to create order", "error", err)
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, menu_item_id, position, quantity)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i := range order.Items {
		line := &order.Items[i]
		line.ID = uuid.NewString()
		if _, err := r.q.ExecContext(ctx, itemQuery, line.ID, order.ID, line.MenuItemID, i, line.Quantity); err != nil {
			r.logger.Error("Failed to create order item", "error", err, "order_id", order.ID)
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Info("Created order", "order_id", order.ID)
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.logger.Debug("Retrieving order", "order_id", id)
	if !validID(id) {
		return nil, &models.NotFoundError{Entity: "order", Key: id}
	}

	orders, err := r.query(ctx, selectOrders+` WHERE o.id = $1`+groupOrders, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, &models.NotFoundError{Entity: "order", Key: id}
	}
	return orders[0], nil
}

// GetForUpdate locks the order row first; FOR UPDATE cannot be combined
// with the aggregate in selectOrders.
func (r *OrderRepository) GetForUpdate(ctx context.Context, id string) (*models.Order, error) {
	if !validID(id) {
		return nil, &models.NotFoundError{Entity: "order", Key: id}
	}

	var locked string
	err := r.q.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Entity: "order", Key: id}
		}
		r.logger.Error("Failed to lock order", "error", err, "order_id", id)
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *OrderRepository) GetAll(ctx context.Context) ([]*models.Order, error) {
	return r.query(ctx, selectOrders+groupOrders)
}

func (r *OrderRepository) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]*models.Order, error) {
	r.logger.Debug("Listing orders by creation time", "start", start, "end", end)
	return r.query(ctx, selectOrders+` WHERE o.created_at >= $1 AND o.created_at < $2`+groupOrders, start, end)
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]*models.Order, error) {
	r.logger.Debug("Listing orders by customer", "customer_id", customerID)
	return r.query(ctx, selectOrders+` WHERE o.customer_id = $1`+groupOrders, customerID)
}

func (r *OrderRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query orders", "error", err)
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order := &models.Order{}
		var customerID sql.NullString
		var itemsJSON []byte

		err := rows.Scan(&order.ID, &order.CreatedAt, &order.Status, &order.Subtotal, &order.Tax, &order.Tip,
			&customerID, &order.CustomerName, &order.ItemSummary, &itemsJSON)
		if err != nil {
			r.logger.Error("Failed to scan order", "error", err)
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		order.CustomerID = customerID.String

		if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
			return nil, fmt.Errorf("failed to parse items for order %s: %w", order.ID, err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	r.logger.Debug("Updating order status", "order_id", id, "status", status)
	if !validID(id) {
		return &models.NotFoundError{Entity: "order", Key: id}
	}

	result, err := r.q.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		r.logger.Error("Failed to update order status", "error", err, "order_id", id)
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &models.NotFoundError{Entity: "order", Key: id}
	}
	return nil
}

// Delete removes the order; line items cascade
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debug("Deleting order", "order_id", id)
	if !validID(id) {
		return &models.NotFoundError{Entity: "order", Key: id}
	}

	result, err := r.q.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete order", "error", err, "order_id", id)
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &models.NotFoundError{Entity: "order", Key: id}
	}

	r.logger.Info("Deleted order", "order_id", id)
	return nil
}

func (r *OrderRepository) CountByMenuItem(ctx context.Context, menuItemID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_items WHERE menu_item_id = $1`, menuItemID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count order items: %w", err)
	}
	return count, nil
}
