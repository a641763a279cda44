package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetBillEntryReplacesByNormalizedName(t *testing.T) {
	item := &MenuItem{Name: "Latte"}

	item.SetBillEntry(BillEntry{Name: "Milk", Quantity: 2, Unit: "cups"})
	item.SetBillEntry(BillEntry{Name: "coffee", Quantity: 1, Unit: "g"})
	item.SetBillEntry(BillEntry{Name: " MILK ", Quantity: 3, Unit: "oz"})

	assert.Equal(t, []BillEntry{
		{Name: "milk", Quantity: 3, Unit: "oz"},
		{Name: "coffee", Quantity: 1, Unit: "g"},
	}, item.Ingredients)
}

func TestMenuItemCloneIsDeep(t *testing.T) {
	item := &MenuItem{Ingredients: []BillEntry{{Name: "milk", Quantity: 1}}}
	clone := item.Clone()
	clone.Ingredients[0].Quantity = 9

	assert.Equal(t, 1, item.Ingredients[0].Quantity)
}
