package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"wolfcafe/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) (*MemoryStore, *models.Inventory) {
	t.Helper()
	ctx := context.Background()
	store := NewMemoryStore()

	inv, err := store.Inventory().Ensure(ctx, models.DefaultTaxRate)
	require.NoError(t, err)
	coffee, milk := 100, 50
	require.NoError(t, inv.ApplyBulkUpdate(map[string]*int{"coffee": &coffee, "milk": &milk}))
	require.NoError(t, store.Inventory().Save(ctx, inv))
	return store, inv
}

func billFor(inv *models.Inventory, name string, qty int) models.BillEntry {
	ing, _ := inv.Ingredient(name)
	return models.BillEntry{IngredientID: ing.ID, Name: ing.Name, Quantity: qty, Unit: "g"}
}

func TestMemoryEnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Inventory().Get(ctx)
	assert.True(t, models.IsNotFound(err))

	first, err := store.Inventory().Ensure(ctx, decimal.NewFromInt(2))
	require.NoError(t, err)
	second, err := store.Inventory().Ensure(ctx, decimal.NewFromInt(9))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.TaxRate.Equal(decimal.NewFromInt(2)))
}

func TestMemorySaveAssignsIngredientIDs(t *testing.T) {
	_, inv := seededStore(t)

	for _, ing := range inv.Ingredients {
		assert.NotEmpty(t, ing.ID, ing.Name)
	}
}

func TestMemoryAtomicRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store, _ := seededStore(t)
	boom := errors.New("boom")

	err := store.Atomic(ctx, func(tx Store) error {
		inv, err := tx.Inventory().GetForUpdate(ctx)
		require.NoError(t, err)
		require.NoError(t, inv.ApplyDelta("coffee", -40))
		require.NoError(t, tx.Inventory().Save(ctx, inv))
		require.NoError(t, tx.Inventory().AppendMovements(ctx, []models.StockMovement{{Ingredient: "coffee", Delta: -40}}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	inv, err := store.Inventory().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, inv.Quantity("coffee"))

	movements, err := store.Inventory().ListMovements(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestMemoryAtomicRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	store, _ := seededStore(t)

	assert.Panics(t, func() {
		_ = store.Atomic(ctx, func(tx Store) error {
			inv, _ := tx.Inventory().GetForUpdate(ctx)
			_ = inv.ApplyDelta("milk", -50)
			_ = tx.Inventory().Save(ctx, inv)
			panic("mid-transaction")
		})
	})

	inv, err := store.Inventory().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, inv.Quantity("milk"))
}

func TestMemoryAtomicNests(t *testing.T) {
	ctx := context.Background()
	store, _ := seededStore(t)

	err := store.Atomic(ctx, func(tx Store) error {
		return tx.Atomic(ctx, func(inner Store) error {
			_, err := inner.Inventory().Get(ctx)
			return err
		})
	})
	assert.NoError(t, err)
}

func TestMemoryAtomicHonorsCanceledContext(t *testing.T) {
	store, _ := seededStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.Atomic(ctx, func(Store) error { called = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestMemoryMenuConstraints(t *testing.T) {
	ctx := context.Background()
	store, inv := seededStore(t)

	latte := &models.MenuItem{Name: "Latte", Price: 400, Ingredients: []models.BillEntry{billFor(inv, "milk", 2)}}
	require.NoError(t, store.Menu().Create(ctx, latte))
	assert.NotEmpty(t, latte.ID)

	dup := &models.MenuItem{Name: "Latte", Price: 500, Ingredients: []models.BillEntry{billFor(inv, "coffee", 1)}}
	assert.True(t, models.IsDuplicateName(store.Menu().Create(ctx, dup)))

	lower := &models.MenuItem{Name: "latte", Price: 500, Ingredients: []models.BillEntry{billFor(inv, "coffee", 1)}}
	assert.NoError(t, store.Menu().Create(ctx, lower))

	ghost := &models.MenuItem{Name: "Ghost", Price: 1, Ingredients: []models.BillEntry{{Name: "ectoplasm", Quantity: 1}}}
	assert.True(t, models.IsNotFound(store.Menu().Create(ctx, ghost)))

	found, err := store.Menu().GetByName(ctx, "Latte")
	require.NoError(t, err)
	assert.Equal(t, latte.ID, found.ID)

	all, err := store.Menu().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryOrdersQueries(t *testing.T) {
	ctx := context.Background()
	store, inv := seededStore(t)
	item := &models.MenuItem{Name: "Espresso", Price: 300, Ingredients: []models.BillEntry{billFor(inv, "coffee", 2)}}
	require.NoError(t, store.Menu().Create(ctx, item))

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	create := func(created time.Time, customer string) *models.Order {
		order := &models.Order{
			CreatedAt:  created,
			Status:     models.StatusPending,
			CustomerID: customer,
			Items:      []models.OrderItem{{MenuItemID: item.ID, Quantity: 1}},
		}
		require.NoError(t, store.Orders().Create(ctx, order))
		return order
	}

	early := create(day, "u1")
	late := create(day.Add(23*time.Hour+59*time.Minute+59*time.Second), "u2")
	create(day.AddDate(0, 0, 1), "u1")

	orders, err := store.Orders().ListCreatedBetween(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, early.ID, orders[0].ID)
	assert.Equal(t, late.ID, orders[1].ID)
	assert.Equal(t, "Espresso", orders[0].Items[0].ItemName)

	byCustomer, err := store.Orders().ListByCustomer(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, byCustomer, 2)

	count, err := store.Orders().CountByMenuItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	assert.True(t, models.IsValidation(store.Menu().Delete(ctx, item.ID)))

	bad := &models.Order{Status: models.StatusPending, Items: []models.OrderItem{{MenuItemID: "missing", Quantity: 1}}}
	assert.True(t, models.IsNotFound(store.Orders().Create(ctx, bad)))

	require.NoError(t, store.Orders().UpdateStatus(ctx, early.ID, models.StatusCanceled))
	got, err := store.Orders().GetByID(ctx, early.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, got.Status)

	require.NoError(t, store.Orders().Delete(ctx, early.ID))
	assert.True(t, models.IsNotFound(store.Orders().Delete(ctx, early.ID)))
	assert.True(t, models.IsNotFound(store.Orders().UpdateStatus(ctx, early.ID, models.StatusPending)))
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store, _ := seededStore(t)

	inv, err := store.Inventory().Get(ctx)
	require.NoError(t, err)
	inv.Ingredients[0].Quantity = 9999

	again, err := store.Inventory().Get(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, 9999, again.Ingredients[0].Quantity)
}

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.AddCustomer(models.Customer{ID: "u1", DisplayName: "Wolf"})

	customer, err := store.Users().LookupCustomer(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Wolf", customer.DisplayName)

	_, err = store.Users().LookupCustomer(ctx, "u2")
	assert.True(t, models.IsNotFound(err))
}
