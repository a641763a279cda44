package models

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func intPtr(v int) *int { return &v }

func stockedInventory(t *testing.T, quantities map[string]int) *Inventory {
	t.Helper()
	targets := make(map[string]*int, len(quantities))
	for name, qty := range quantities {
		targets[name] = intPtr(qty)
	}
	inv := &Inventory{TaxRate: DefaultTaxRate}
	require.NoError(t, inv.ApplyBulkUpdate(targets))
	return inv
}

func TestNormalizeIngredientName(t *testing.T) {
	assert.Equal(t, "coffee beans", NormalizeIngredientName("  Coffee Beans "))
	assert.Equal(t, "", NormalizeIngredientName("   "))
}

func TestApplyDelta(t *testing.T) {
	inv := stockedInventory(t, map[string]int{"milk": 10})

	require.NoError(t, inv.ApplyDelta("MILK", -4))
	assert.Equal(t, 6, inv.Quantity("milk"))

	require.NoError(t, inv.ApplyDelta("milk", 5))
	assert.Equal(t, 11, inv.Quantity("milk"))

	err := inv.ApplyDelta("milk", -12)
	var short *InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, InsufficientStockError{Ingredient: "milk", Required: 12, Available: 11}, *short)
	assert.Equal(t, 11, inv.Quantity("milk"))

	err = inv.ApplyDelta("cream", 1)
	assert.True(t, IsNotFound(err))
}

func TestSetAbsolute(t *testing.T) {
	inv := stockedInventory(t, map[string]int{"sugar": 3})

	require.NoError(t, inv.SetAbsolute("Sugar", 0))
	assert.Equal(t, 0, inv.Quantity("sugar"))

	assert.True(t, IsValidation(inv.SetAbsolute("sugar", -1)))
	assert.True(t, IsNotFound(inv.SetAbsolute("salt", 4)))
	assert.Equal(t, 0, inv.Quantity("sugar"))
}

func TestApplyBulkUpdate(t *testing.T) {
	inv := stockedInventory(t, map[string]int{"coffee": 100, "milk": 200})

	err := inv.ApplyBulkUpdate(map[string]*int{
		" Coffee ":  intPtr(40),
		"chocolate": intPtr(15),
		"sugar":     nil,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"coffee": 40, "milk": 200, "chocolate": 15, "sugar": 0}, inv.Quantities())
	names := []string{}
	for _, ing := range inv.Ingredients {
		names = append(names, ing.Name)
	}
	assert.Equal(t, []string{"chocolate", "coffee", "milk", "sugar"}, names)
}

func TestApplyBulkUpdateRejectsWholeCall(t *testing.T) {
	tests := []struct {
		name    string
		targets map[string]*int
	}{
		{name: "negative quantity", targets: map[string]*int{"coffee": intPtr(5), "milk": intPtr(-1)}},
		{name: "blank name", targets: map[string]*int{"coffee": intPtr(5), "  ": intPtr(1)}},
		{name: "same name twice", targets: map[string]*int{"Milk": intPtr(5), "milk": intPtr(6)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := stockedInventory(t, map[string]int{"coffee": 100, "milk": 200})

			err := inv.ApplyBulkUpdate(tt.targets)

			assert.True(t, IsValidation(err))
			assert.Equal(t, map[string]int{"coffee": 100, "milk": 200}, inv.Quantities())
		})
	}
}

func TestHasSufficientStockTreatsMissingAsZero(t *testing.T) {
	inv := stockedInventory(t, map[string]int{"coffee": 5})

	assert.True(t, inv.HasSufficientStock(Demand{"coffee": 5}))
	assert.True(t, inv.HasSufficientStock(Demand{"vanilla": 0}))
	assert.False(t, inv.HasSufficientStock(Demand{"coffee": 6}))
	assert.False(t, inv.HasSufficientStock(Demand{"vanilla": 1}))
}

func TestDebitIsAllOrNothing(t *testing.T) {
	inv := stockedInventory(t, map[string]int{"coffee": 100, "milk": 2})

	err := inv.Debit(Demand{"coffee": 10, "milk": 3})

	var short *InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, "milk", short.Ingredient)
	assert.Equal(t, map[string]int{"coffee": 100, "milk": 2}, inv.Quantities())
}

func TestDebit(t *testing.T) {
	inv := stockedInventory(t, map[string]int{"coffee": 100, "milk": 200, "sugar": 100, "chocolate": 100})

	require.NoError(t, inv.Debit(Demand{"coffee": 11, "milk": 3, "sugar": 5, "vanilla": 0}))

	assert.Equal(t, map[string]int{"coffee": 89, "milk": 197, "sugar": 95, "chocolate": 100}, inv.Quantities())
	assert.True(t, IsValidation(inv.Debit(Demand{"coffee": -1})))
}

func TestDebitSumsKeysNamingTheSameLedger(t *testing.T) {
	inv := stockedInventory(t, map[string]int{"coffee": 5})
	demand := Demand{"Coffee": 3, "coffee": 3}

	assert.False(t, inv.HasSufficientStock(demand))

	err := inv.Debit(demand)
	var short *InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, InsufficientStockError{Ingredient: "coffee", Required: 6, Available: 5}, *short)
	assert.Equal(t, 5, inv.Quantity("coffee"))

	require.NoError(t, inv.Debit(Demand{" COFFEE ": 2, "coffee": 3}))
	assert.Equal(t, 0, inv.Quantity("coffee"))
}

func TestQuantitiesAreBounded(t *testing.T) {
	inv := stockedInventory(t, map[string]int{"coffee": 5})

	assert.True(t, IsValidation(inv.ApplyDelta("coffee", math.MaxInt)))
	assert.True(t, IsValidation(inv.ApplyDelta("coffee", math.MinInt)))
	assert.True(t, IsValidation(inv.ApplyDelta("coffee", MaxQuantity)))
	assert.True(t, IsValidation(inv.SetAbsolute("coffee", MaxQuantity+1)))
	assert.True(t, IsValidation(inv.ApplyBulkUpdate(map[string]*int{"coffee": intPtr(MaxQuantity + 1)})))
	assert.True(t, IsValidation(inv.Debit(Demand{"coffee": MaxQuantity + 1})))
	assert.Equal(t, 5, inv.Quantity("coffee"))

	require.NoError(t, inv.ApplyDelta("coffee", MaxQuantity-5))
	assert.Equal(t, MaxQuantity, inv.Quantity("coffee"))
	require.NoError(t, inv.SetAbsolute("coffee", MaxQuantity))
}

func TestCloneIsDeep(t *testing.T) {
	inv := stockedInventory(t, map[string]int{"coffee": 1})
	clone := inv.Clone()
	require.NoError(t, clone.ApplyDelta("coffee", 1))

	assert.Equal(t, 1, inv.Quantity("coffee"))
	assert.Equal(t, 2, clone.Quantity("coffee"))
}

func TestDiffMovements(t *testing.T) {
	movements := DiffMovements(
		map[string]int{"coffee": 10, "milk": 5},
		map[string]int{"coffee": 4, "milk": 5, "sugar": 7},
		MovementRestock, "ref-1")

	assert.Equal(t, []StockMovement{
		{Ingredient: "coffee", Delta: -6, Reason: MovementRestock, Reference: "ref-1"},
		{Ingredient: "sugar", Delta: 7, Reason: MovementRestock, Reference: "ref-1"},
	}, movements)
}

func TestInventoryInvariantsHoldUnderRandomOperations(t *testing.T) {
	names := []string{"coffee", "milk", "sugar", "chocolate"}

	rapid.Check(t, func(t *rapid.T) {
		targets := map[string]*int{}
		for _, name := range names {
			qty := rapid.IntRange(0, 50).Draw(t, "initial_"+name)
			targets[name] = &qty
		}
		inv := &Inventory{}
		if err := inv.ApplyBulkUpdate(targets); err != nil {
			t.Fatalf("seed inventory: %v", err)
		}

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			before := inv.Quantities()
			var err error
			expected := before

			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				name := rapid.SampledFrom(names).Draw(t, "name")
				delta := rapid.IntRange(-60, 60).Draw(t, "delta")
				err = inv.ApplyDelta(name, delta)
				if err == nil {
					expected = copyQuantities(before)
					expected[name] += delta
				}
			case 1:
				demand := Demand{}
				for _, name := range names {
					if rapid.Bool().Draw(t, "use_"+name) {
						demand[name] = rapid.IntRange(0, 40).Draw(t, "need_"+name)
					}
				}
				err = inv.Debit(demand)
				if err == nil {
					expected = copyQuantities(before)
					for name, qty := range demand {
						expected[name] -= qty
					}
				}
			case 2:
				name := rapid.SampledFrom(names).Draw(t, "name")
				qty := rapid.IntRange(-5, 80).Draw(t, "quantity")
				err = inv.SetAbsolute(name, qty)
				if err == nil {
					expected = copyQuantities(before)
					expected[name] = qty
				}
			}

			if !reflect.DeepEqual(expected, inv.Quantities()) {
				t.Fatalf("step %d (err=%v): expected %v, got %v", i, err, expected, inv.Quantities())
			}
			for _, ing := range inv.Ingredients {
				if ing.Quantity < 0 {
					t.Fatalf("ledger %s went negative: %d", ing.Name, ing.Quantity)
				}
			}
		}
	})
}

func copyQuantities(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
