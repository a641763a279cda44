package service

import (
	"context"
	"testing"
	"time"

	"wolfcafe/internal/repositories"
	"wolfcafe/internal/service/mocks"
	"wolfcafe/models"
	"wolfcafe/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	ctx       context.Context
	store     *repositories.MemoryStore
	inventory *InventoryService
	menu      *MenuService
	orders    *OrderService
	users     *mocks.MockUserDirectory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := logger.NewNop()
	store := repositories.NewMemoryStore()
	users := mocks.NewMockUserDirectory(ctrl)

	inventory := NewInventoryService(store, models.DefaultTaxRate, log)
	f := &fixture{
		ctx:       context.Background(),
		store:     store,
		inventory: inventory,
		menu:      NewMenuService(store, log),
		orders:    NewOrderService(store, inventory, users, log),
		users:     users,
	}
	_, err := inventory.Initialize(f.ctx)
	require.NoError(t, err)
	return f
}

func (f *fixture) stock(t *testing.T, quantities map[string]int) {
	t.Helper()
	targets := make(map[string]*int, len(quantities))
	for name, qty := range quantities {
		qty := qty
		targets[name] = &qty
	}
	_, err := f.inventory.ApplyBulkUpdate(f.ctx, targets)
	require.NoError(t, err)
}

func (f *fixture) quantities(t *testing.T) map[string]int {
	t.Helper()
	inv, err := f.inventory.GetInventory(f.ctx)
	require.NoError(t, err)
	return inv.Quantities()
}

// seedCafe stocks the inventory and adds Coffee (2 coffee) and Latte
// (1 coffee, 3 milk, 5 sugar).
func (f *fixture) seedCafe(t *testing.T) {
	t.Helper()
	f.stock(t, map[string]int{"coffee": 100, "milk": 200, "sugar": 100, "chocolate": 100})

	_, err := f.menu.AddItem(f.ctx, MenuItemRequest{
		Name:        "Coffee",
		Price:       150,
		Ingredients: []BillEntryRequest{{Name: "coffee", Quantity: 2, Unit: "g"}},
	})
	require.NoError(t, err)

	_, err = f.menu.AddItem(f.ctx, MenuItemRequest{
		Name:  "Latte",
		Price: 400,
		Ingredients: []BillEntryRequest{
			{Name: "coffee", Quantity: 1, Unit: "g"},
			{Name: "milk", Quantity: 3, Unit: "cups"},
			{Name: "sugar", Quantity: 5, Unit: "g"},
		},
	})
	require.NoError(t, err)
}

func (f *fixture) placeOrder(t *testing.T, lines ...CreateOrderItemRequest) *models.Order {
	t.Helper()
	order, err := f.orders.CreateOrder(f.ctx, CreateOrderRequest{
		Subtotal:    1960,
		Tax:         100,
		Tip:         400,
		ItemSummary: "blahblahblah",
		Items:       lines,
	})
	require.NoError(t, err)
	return order
}

func line(name string, qty int) CreateOrderItemRequest {
	return CreateOrderItemRequest{ItemName: name, Quantity: qty}
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
