package service

import (
	"context"
	"strings"
	"time"

	"wolfcafe/internal/repositories"
	"wolfcafe/models"
	"wolfcafe/pkg/logger"
)

//go:generate mockgen -destination=mocks/mock_user_directory.go -package=mocks wolfcafe/internal/service UserDirectory

// UserDirectory resolves customer ids. Accounts are managed elsewhere.
type UserDirectory interface {
	LookupCustomer(ctx context.Context, id string) (*models.Customer, error)
}

// CreateOrderRequest is an order draft. ID and Status are accepted so a
// request layer can pass a decoded body through, but they are ignored.
type CreateOrderRequest struct {
	ID          string                   `json:"id,omitempty"`
	Status      string                   `json:"status,omitempty"`
	CustomerID  string                   `json:"customer_id,omitempty"`
	Subtotal    int                      `json:"subtotal"`
	Tax         int                      `json:"tax"`
	Tip         int                      `json:"tip"`
	ItemSummary string                   `json:"item_summary"`
	Items       []CreateOrderItemRequest `json:"items"`
}

type CreateOrderItemRequest struct {
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, target string) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetAllOrders(ctx context.Context) ([]*models.Order, error)
	ListOrdersCreatedOn(ctx context.Context, date time.Time) ([]*models.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID string) ([]*models.Order, error)
	Demand(ctx context.Context, id string) (models.Demand, error)
}

type OrderService struct {
	store     repositories.Store
	inventory *InventoryService
	users     UserDirectory
	logger    *logger.Logger
	now       func() time.Time
}

func NewOrderService(store repositories.Store, inventory *InventoryService, users UserDirectory, logger *logger.Logger) *OrderService {
	return &OrderService{
		store:     store,
		inventory: inventory,
		users:     users,
		logger:    logger.WithComponent("order_service"),
		now:       time.Now,
	}
}

// CreateOrder stores a new pending order. Pricing fields are taken as given.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	s.logger.Info("Creating new order", "customer_id", req.CustomerID, "items", len(req.Items))

	if err := validateOrderRequest(req); err != nil {
		s.logger.Warn("Create failed: invalid data", "error", err)
		return nil, err
	}

	order := &models.Order{
		CreatedAt:   s.now(),
		Status:      models.StatusPending,
		Subtotal:    req.Subtotal,
		Tax:         req.Tax,
		Tip:         req.Tip,
		ItemSummary: req.ItemSummary,
		Items:       make([]models.OrderItem, 0, len(req.Items)),
	}

	if req.CustomerID != "" {
		customer, err := s.users.LookupCustomer(ctx, req.CustomerID)
		if err == nil && customer == nil {
			err = &models.NotFoundError{Entity: "customer", Key: req.CustomerID}
		}
		if err != nil {
			logFailure(s.logger, "Create failed: customer lookup", err, "customer_id", req.CustomerID)
			return nil, err
		}
		order.CustomerID = customer.ID
		order.CustomerName = customer.DisplayName
	}

	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		for _, line := range req.Items {
			item, err := tx.Menu().GetByName(ctx, strings.TrimSpace(line.ItemName))
			if err != nil {
				return err
			}
			order.Items = append(order.Items, models.OrderItem{
				MenuItemID: item.ID,
				ItemName:   item.Name,
				Quantity:   line.Quantity,
			})
		}
		return tx.Orders().Create(ctx, order)
	})
	if err != nil {
		logFailure(s.logger, "Create order failed", err)
		return nil, err
	}

	s.logger.Info("Order created", "order_id", order.ID, "subtotal", order.Subtotal)
	return order, nil
}

func validateOrderRequest(req CreateOrderRequest) error {
	if req.Subtotal < 0 {
		return models.NewValidationError("subtotal", "must not be negative, got %d", req.Subtotal)
	}
	if req.Tax < 0 {
		return models.NewValidationError("tax", "must not be negative, got %d", req.Tax)
	}
	if req.Tip < 0 {
		return models.NewValidationError("tip", "must not be negative, got %d", req.Tip)
	}
	for i, line := range req.Items {
		if strings.TrimSpace(line.ItemName) == "" {
			return models.NewValidationError("items", "line %d has no item name", i+1)
		}
		if line.Quantity < 1 {
			return models.NewValidationError("items", "line %d quantity must be at least 1, got %d", i+1, line.Quantity)
		}
	}
	return nil
}

// UpdateStatus moves an order along its lifecycle. Fulfilling debits the
// ingredients the order needs; the status read, the debit and the status
// write commit together or not at all.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, target string) (*models.Order, error) {
	s.logger.Info("Updating order status", "order_id", id, "target", target)

	var updated *models.Order
	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		order, err := tx.Orders().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if order.Status.IsTerminal() {
			return &models.InvalidTransitionError{From: order.Status, To: target}
		}
		to, err := models.ParseOrderStatus(target)
		if err != nil || !order.Status.CanTransitionTo(to) {
			return &models.InvalidTransitionError{From: order.Status, To: target}
		}

		if to == models.StatusFulfilled {
			demand, err := s.demandFor(ctx, tx, order)
			if err != nil {
				return err
			}
			if err := s.inventory.debit(ctx, tx, demand, models.MovementOrderFulfillment, order.ID); err != nil {
				return err
			}
		}

		if err := tx.Orders().UpdateStatus(ctx, order.ID, to); err != nil {
			return err
		}
		order.Status = to
		updated = order
		return nil
	})
	if err != nil {
		logFailure(s.logger, "Status update rejected", err, "order_id", id, "target", target)
		return nil, err
	}

	s.logger.Info("Order status updated", "order_id", id, "status", updated.Status)
	return updated, nil
}

// demandFor reads the current bills of the order's items, so recipe changes
// made after the order was placed are honored.
func (s *OrderService) demandFor(ctx context.Context, tx repositories.Store, order *models.Order) (models.Demand, error) {
	bills := make(map[string][]models.BillEntry, len(order.Items))
	for _, line := range order.Items {
		if _, ok := bills[line.MenuItemID]; ok {
			continue
		}
		item, err := tx.Menu().GetByID(ctx, line.MenuItemID)
		if err != nil {
			return nil, err
		}
		bills[item.ID] = item.Ingredients
	}
	return models.DemandFor(order.Items, bills)
}

// Demand previews what fulfilling the order would consume
func (s *OrderService) Demand(ctx context.Context, id string) (models.Demand, error) {
	order, err := s.store.Orders().GetByID(ctx, id)
	if err != nil {
		logFailure(s.logger, "Demand lookup failed", err, "order_id", id)
		return nil, err
	}
	return s.demandFor(ctx, s.store, order)
}

// DeleteOrder removes an order and its line items. Stock is never returned.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	s.logger.Info("Deleting order", "order_id", id)

	if err := s.store.Orders().Delete(ctx, id); err != nil {
		logFailure(s.logger, "Delete order failed", err, "order_id", id)
		return err
	}

	s.logger.Info("Order deleted", "order_id", id)
	return nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	s.logger.Debug("Fetching order by ID", "order_id", id)

	order, err := s.store.Orders().GetByID(ctx, id)
	if err != nil {
		logFailure(s.logger, "Order lookup failed", err, "order_id", id)
		return nil, err
	}
	return order, nil
}

func (s *OrderService) GetAllOrders(ctx context.Context) ([]*models.Order, error) {
	orders, err := s.store.Orders().GetAll(ctx)
	if err != nil {
		logFailure(s.logger, "Failed to fetch orders", err)
		return nil, err
	}

	s.logger.Debug("Fetched orders", "count", len(orders))
	return orders, nil
}

// ListOrdersCreatedOn returns the orders placed on date's calendar day in
// date's location.
func (s *OrderService) ListOrdersCreatedOn(ctx context.Context, date time.Time) ([]*models.Order, error) {
	year, month, day := date.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 0, 1)

	orders, err := s.store.Orders().ListCreatedBetween(ctx, start, end)
	if err != nil {
		logFailure(s.logger, "Failed to list orders by date", err, "date", start.Format(time.DateOnly))
		return nil, err
	}

	s.logger.Debug("Listed orders by date", "date", start.Format(time.DateOnly), "count", len(orders))
	return orders, nil
}

func (s *OrderService) ListOrdersByCustomer(ctx context.Context, customerID string) ([]*models.Order, error) {
	orders, err := s.store.Orders().ListByCustomer(ctx, customerID)
	if err != nil {
		logFailure(s.logger, "Failed to list orders by customer", err, "customer_id", customerID)
		return nil, err
	}
	return orders, nil
}
