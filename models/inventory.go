package models

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is applied to a freshly created inventory.
var DefaultTaxRate = decimal.NewFromInt(2)

// Stock movement reasons recorded in the inventory journal.
const (
	MovementOrderFulfillment = "order_fulfillment"
	MovementRestock          = "restock"
	MovementAdjustment       = "adjustment"
)

// MaxQuantity bounds every ledger quantity and delta. It matches the
// INTEGER column the ledgers are stored in.
const MaxQuantity = math.MaxInt32

// NormalizeIngredientName returns the key ingredient ledgers are matched by.
func NormalizeIngredientName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Ingredient is a single stock ledger. Name is always normalized.
type Ingredient struct {
	ID       string `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Quantity int    `json:"quantity" db:"quantity"`
}

// Inventory owns every ingredient ledger and the tax rate. There is one per system.
type Inventory struct {
	ID          string          `json:"id" db:"id"`
	Ingredients []Ingredient    `json:"ingredients"`
	TaxRate     decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// StockMovement is one journal line describing a persisted ledger change.
type StockMovement struct {
	ID         string    `json:"id" db:"id"`
	Ingredient string    `json:"ingredient" db:"ingredient_name"`
	Delta      int       `json:"delta" db:"delta"`
	Reason     string    `json:"reason" db:"reason"`
	Reference  string    `json:"reference,omitempty" db:"reference_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

func (inv *Inventory) index(name string) int {
	key := NormalizeIngredientName(name)
	for i := range inv.Ingredients {
		if inv.Ingredients[i].Name == key {
			return i
		}
	}
	return -1
}

// Ingredient looks a ledger up by name, case-insensitively.
func (inv *Inventory) Ingredient(name string) (Ingredient, bool) {
	i := inv.index(name)
	if i < 0 {
		return Ingredient{}, false
	}
	return inv.Ingredients[i], true
}

// Quantity returns the stock for name, or 0 when there is no ledger.
func (inv *Inventory) Quantity(name string) int {
	if ing, ok := inv.Ingredient(name); ok {
		return ing.Quantity
	}
	return 0
}

// Quantities snapshots every ledger by name.
func (inv *Inventory) Quantities() map[string]int {
	out := make(map[string]int, len(inv.Ingredients))
	for _, ing := range inv.Ingredients {
		out[ing.Name] = ing.Quantity
	}
	return out
}

// ApplyDelta adds delta to the named ledger. A failed call changes nothing.
func (inv *Inventory) ApplyDelta(name string, delta int) error {
	i := inv.index(name)
	if i < 0 {
		return &NotFoundError{Entity: "ingredient", Key: NormalizeIngredientName(name)}
	}
	if delta > MaxQuantity || delta < -MaxQuantity {
		return NewValidationError("delta", "must be between -%d and %d, got %d", MaxQuantity, MaxQuantity, delta)
	}
	ing := &inv.Ingredients[i]
	if ing.Quantity+delta > MaxQuantity {
		return NewValidationError("quantity", "ingredient %q would exceed %d", ing.Name, MaxQuantity)
	}
	if ing.Quantity+delta < 0 {
		return &InsufficientStockError{Ingredient: ing.Name, Required: -delta, Available: ing.Quantity}
	}
	ing.Quantity += delta
	return nil
}

// SetAbsolute replaces the quantity of an existing ledger.
func (inv *Inventory) SetAbsolute(name string, quantity int) error {
	if quantity < 0 {
		return NewValidationError("quantity", "must not be negative, got %d", quantity)
	}
	if quantity > MaxQuantity {
		return NewValidationError("quantity", "must not exceed %d, got %d", MaxQuantity, quantity)
	}
	i := inv.index(name)
	if i < 0 {
		return &NotFoundError{Entity: "ingredient", Key: NormalizeIngredientName(name)}
	}
	inv.Ingredients[i].Quantity = quantity
	return nil
}

// ApplyBulkUpdate resyncs ledgers to absolute quantities. A nil quantity means 0.
// Unknown names become new ledgers and names not present in targets are untouched.
// The whole call is validated before anything changes.
func (inv *Inventory) ApplyBulkUpdate(targets map[string]*int) error {
	resolved := make(map[string]int, len(targets))
	for raw, qty := range targets {
		name := NormalizeIngredientName(raw)
		if name == "" {
			return NewValidationError("name", "ingredient name must not be blank")
		}
		if _, dup := resolved[name]; dup {
			return NewValidationError("name", "ingredient %q listed more than once", name)
		}
		value := 0
		if qty != nil {
			value = *qty
		}
		if value < 0 {
			return NewValidationError("quantity", "ingredient %q must not be negative, got %d", name, value)
		}
		if value > MaxQuantity {
			return NewValidationError("quantity", "ingredient %q must not exceed %d, got %d", name, MaxQuantity, value)
		}
		resolved[name] = value
	}

	for name, value := range resolved {
		if i := inv.index(name); i >= 0 {
			inv.Ingredients[i].Quantity = value
			continue
		}
		inv.Ingredients = append(inv.Ingredients, Ingredient{Name: name, Quantity: value})
	}
	inv.sortIngredients()
	return nil
}

// HasSufficientStock reports whether every demanded quantity is on hand.
func (inv *Inventory) HasSufficientStock(demand Demand) bool {
	return inv.shortage(demand.Folded()) == nil
}

// shortage expects a folded demand.
func (inv *Inventory) shortage(demand Demand) *InsufficientStockError {
	for _, name := range demand.Names() {
		required := demand[name]
		if available := inv.Quantity(name); available < required {
			return &InsufficientStockError{Ingredient: name, Required: required, Available: available}
		}
	}
	return nil
}

// Debit subtracts the whole demand vector or nothing at all. Keys naming the
// same ledger are summed before the check.
func (inv *Inventory) Debit(demand Demand) error {
	for name, qty := range demand {
		if qty < 0 {
			return NewValidationError("demand", "ingredient %q has negative demand %d", name, qty)
		}
		if qty > MaxQuantity {
			return NewValidationError("demand", "ingredient %q demand %d exceeds %d", name, qty, MaxQuantity)
		}
	}
	folded := demand.Folded()
	if short := inv.shortage(folded); short != nil {
		return short
	}
	for _, name := range folded.Names() {
		if folded[name] == 0 {
			continue
		}
		inv.Ingredients[inv.index(name)].Quantity -= folded[name]
	}
	return nil
}

// Clone returns a deep copy.
func (inv *Inventory) Clone() *Inventory {
	out := *inv
	out.Ingredients = append([]Ingredient(nil), inv.Ingredients...)
	return &out
}

func (inv *Inventory) sortIngredients() {
	sort.Slice(inv.Ingredients, func(i, j int) bool {
		return inv.Ingredients[i].Name < inv.Ingredients[j].Name
	})
}

// DiffMovements turns two quantity snapshots into journal lines, one per changed ledger.
func DiffMovements(before, after map[string]int, reason, reference string) []StockMovement {
	names := make([]string, 0, len(after))
	for name := range after {
		names = append(names, name)
	}
	sort.Strings(names)

	var movements []StockMovement
	for _, name := range names {
		delta := after[name] - before[name]
		if delta == 0 {
			continue
		}
		movements = append(movements, StockMovement{
			Ingredient: name,
			Delta:      delta,
			Reason:     reason,
			Reference:  reference,
		})
	}
	return movements
}
