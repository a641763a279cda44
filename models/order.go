package models

import (
	"fmt"
	"sort"
	"time"
)

// OrderStatus is the lifecycle state of an order. The string values are the
// wire representation and must not change.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusFulfilled OrderStatus = "fulfilled"
	StatusCanceled  OrderStatus = "canceled"
	StatusPickedUp  OrderStatus = "picked up"
)

// transitions lists every allowed edge. Anything absent is rejected.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusFulfilled, StatusCanceled},
	StatusFulfilled: {StatusPickedUp},
}

// ParseOrderStatus accepts only the four wire strings, exactly as spelled.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(s); status {
	case StatusPending, StatusFulfilled, StatusCanceled, StatusPickedUp:
		return status, nil
	}
	return "", NewValidationError("status", "unknown order status %q", s)
}

func (s OrderStatus) String() string { return string(s) }

// CanTransitionTo reports whether the lifecycle permits s -> to.
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

func (s OrderStatus) MarshalText() ([]byte, error) {
	return []byte(s), nil
}

func (s *OrderStatus) UnmarshalText(text []byte) error {
	status, err := ParseOrderStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Scan implements sql.Scanner so status columns are validated on read.
func (s *OrderStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	}
	return fmt.Errorf("cannot scan %T into OrderStatus", src)
}

type Order struct {
	ID           string      `json:"id" db:"id"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	Status       OrderStatus `json:"status" db:"status"`
	Subtotal     int         `json:"subtotal" db:"subtotal"`
	Tax          int         `json:"tax" db:"tax"`
	Tip          int         `json:"tip" db:"tip"`
	CustomerID   string      `json:"customer_id,omitempty" db:"customer_id"`
	CustomerName string      `json:"customer_name,omitempty" db:"customer_name"`
	ItemSummary  string      `json:"item_summary" db:"item_summary"`
	Items        []OrderItem `json:"items"`
}

type OrderItem struct {
	ID         string `json:"id" db:"id"`
	MenuItemID string `json:"menu_item_id" db:"menu_item_id"`
	ItemName   string `json:"item_name" db:"item_name"`
	Quantity   int    `json:"quantity" db:"quantity"`
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	out := *o
	out.Items = append([]OrderItem(nil), o.Items...)
	return &out
}

// Customer is what the user directory resolves a customer id to.
type Customer struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Demand maps normalized ingredient names to the quantity a fulfillment consumes.
type Demand map[string]int

// Add accumulates qty under the normalized form of name.
func (d Demand) Add(name string, qty int) {
	d[NormalizeIngredientName(name)] += qty
}

// Folded returns a copy keyed by normalized name, summing keys that name
// the same ledger.
func (d Demand) Folded() Demand {
	out := make(Demand, len(d))
	for name, qty := range d {
		out.Add(name, qty)
	}
	return out
}

// Names returns the demanded ingredient names in sorted order.
func (d Demand) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DemandFor sums line quantity times per-unit bill quantity across an order.
// bills maps menu item id to its bill of materials.
func DemandFor(items []OrderItem, bills map[string][]BillEntry) (Demand, error) {
	demand := Demand{}
	for _, line := range items {
		bill, ok := bills[line.MenuItemID]
		if !ok {
			return nil, &NotFoundError{Entity: "menu item", Key: line.MenuItemID}
		}
		for _, entry := range bill {
			demand.Add(entry.Name, line.Quantity*entry.Quantity)
		}
	}
	return demand, nil
}
