package models

import "time"

// DefaultUnit labels a bill entry whose unit was left blank.
const DefaultUnit = "unit"

type MenuItem struct {
	ID          string      `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Description string      `json:"description" db:"description"`
	Price       int         `json:"price" db:"price"`
	Ingredients []BillEntry `json:"ingredients"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// BillEntry is one line of a menu item's bill of materials: how much of an
// ingredient a single unit of the item consumes. It references the ledger
// by id and normalized name and does not own it.
type BillEntry struct {
	IngredientID string `json:"ingredient_id,omitempty" db:"ingredient_id"`
	Name         string `json:"name" db:"ingredient_name"`
	Quantity     int    `json:"quantity" db:"quantity"`
	Unit         string `json:"unit" db:"unit"`
}

// SetBillEntry adds an entry or, when the ingredient is already listed,
// replaces its quantity and unit in place.
func (m *MenuItem) SetBillEntry(entry BillEntry) {
	entry.Name = NormalizeIngredientName(entry.Name)
	for i := range m.Ingredients {
		if m.Ingredients[i].Name == entry.Name {
			m.Ingredients[i].Quantity = entry.Quantity
			m.Ingredients[i].Unit = entry.Unit
			if entry.IngredientID != "" {
				m.Ingredients[i].IngredientID = entry.IngredientID
			}
			return
		}
	}
	m.Ingredients = append(m.Ingredients, entry)
}

// Clone returns a deep copy.
func (m *MenuItem) Clone() *MenuItem {
	out := *m
	out.Ingredients = append([]BillEntry(nil), m.Ingredients...)
	return &out
}
