package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []OrderStatus{StatusPending, StatusFulfilled, StatusCanceled, StatusPickedUp}

func TestParseOrderStatus(t *testing.T) {
	for _, status := range allStatuses {
		parsed, err := ParseOrderStatus(string(status))
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	for _, raw := range []string{"Pending", "picked_up", "PICKED UP", "closed", ""} {
		_, err := ParseOrderStatus(raw)
		assert.True(t, IsValidation(err), raw)
	}
}

func TestTransitionTableIsTotal(t *testing.T) {
	allowed := map[[2]OrderStatus]bool{
		{StatusPending, StatusFulfilled}:  true,
		{StatusPending, StatusCanceled}:   true,
		{StatusFulfilled, StatusPickedUp}: true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				assert.Equal(t, allowed[[2]OrderStatus{from, to}], from.CanTransitionTo(to))
			})
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusFulfilled.IsTerminal())
	assert.True(t, StatusCanceled.IsTerminal())
	assert.True(t, StatusPickedUp.IsTerminal())
}

func TestOrderStatusJSON(t *testing.T) {
	data, err := json.Marshal(Order{Status: StatusPickedUp})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"picked up"`)

	var order Order
	require.NoError(t, json.Unmarshal([]byte(`{"status":"canceled"}`), &order))
	assert.Equal(t, StatusCanceled, order.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"cancelled"}`), &order))
}

func TestOrderStatusScan(t *testing.T) {
	var status OrderStatus
	require.NoError(t, status.Scan("fulfilled"))
	assert.Equal(t, StatusFulfilled, status)
	require.NoError(t, status.Scan([]byte("picked up")))
	assert.Equal(t, StatusPickedUp, status)
	assert.Error(t, status.Scan(42))
}

func TestDemandFor(t *testing.T) {
	bills := map[string][]BillEntry{
		"coffee": {{Name: "coffee", Quantity: 2, Unit: "g"}},
		"latte": {
			{Name: "coffee", Quantity: 1, Unit: "g"},
			{Name: "milk", Quantity: 3, Unit: "cups"},
			{Name: "sugar", Quantity: 5, Unit: "g"},
		},
	}
	items := []OrderItem{
		{MenuItemID: "coffee", Quantity: 5},
		{MenuItemID: "latte", Quantity: 1},
	}

	demand, err := DemandFor(items, bills)
	require.NoError(t, err)
	assert.Equal(t, Demand{"coffee": 11, "milk": 3, "sugar": 5}, demand)
	assert.Equal(t, []string{"coffee", "milk", "sugar"}, demand.Names())

	_, err = DemandFor([]OrderItem{{MenuItemID: "mocha", Quantity: 1}}, bills)
	assert.True(t, IsNotFound(err))
}

func TestDemandAddNormalizes(t *testing.T) {
	demand := Demand{}
	demand.Add("Milk", 2)
	demand.Add(" milk", 3)
	assert.Equal(t, Demand{"milk": 5}, demand)
}

func TestErrorMessages(t *testing.T) {
	assert.EqualError(t, &InvalidTransitionError{From: StatusFulfilled, To: "canceled"},
		`invalid status transition from "fulfilled" to "canceled"`)
	assert.EqualError(t, &InsufficientStockError{Ingredient: "milk", Required: 3, Available: 1},
		`insufficient stock for "milk": required 3, available 1`)
	assert.EqualError(t, &NotFoundError{Entity: "order", Key: "x"}, `order "x" not found`)
	assert.EqualError(t, &DuplicateNameError{Entity: "menu item", Name: "Latte"},
		`menu item with name "Latte" already exists`)
	assert.EqualError(t, NewValidationError("price", "must be greater than zero, got %d", 0),
		"validation failed: price: must be greater than zero, got 0")
}
