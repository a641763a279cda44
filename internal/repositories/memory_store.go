package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"wolfcafe/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memoryData struct {
	inventory *models.Inventory
	menu      map[string]*models.MenuItem
	orders    map[string]*models.Order
	movements []models.StockMovement
	users     map[string]models.Customer
}

func (d *memoryData) clone() *memoryData {
	out := &memoryData{
		menu:      make(map[string]*models.MenuItem, len(d.menu)),
		orders:    make(map[string]*models.Order, len(d.orders)),
		movements: append([]models.StockMovement(nil), d.movements...),
		users:     make(map[string]models.Customer, len(d.users)),
	}
	if d.inventory != nil {
		out.inventory = d.inventory.Clone()
	}
	for id, item := range d.menu {
		out.menu[id] = item.Clone()
	}
	for id, order := range d.orders {
		out.orders[id] = order.Clone()
	}
	for id, user := range d.users {
		out.users[id] = user
	}
	return out
}

// MemoryStore keeps everything in process. A single mutex serializes
// Atomic units against each other and against plain calls, and a failed
// unit is undone by restoring a snapshot taken when it started.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memoryData
	inTx bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &memoryData{
			menu:   map[string]*models.MenuItem{},
			orders: map[string]*models.Order{},
			users:  map[string]models.Customer{},
		},
	}
}

func (s *MemoryStore) Inventory() InventoryRepositoryInterface { return memoryInventory{s} }
func (s *MemoryStore) Menu() MenuRepositoryInterface           { return memoryMenu{s} }
func (s *MemoryStore) Orders() OrderRepositoryInterface        { return memoryOrders{s} }
func (s *MemoryStore) Users() UserRepositoryInterface          { return memoryUsers{s} }

func (s *MemoryStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &MemoryStore{mu: s.mu, data: s.data, inTx: true}

	committed := false
	defer func() {
		if !committed {
			*s.data = *snapshot
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	committed = true
	return nil
}

// AddCustomer registers a customer the user directory can resolve.
func (s *MemoryStore) AddCustomer(customer models.Customer) {
	s.with(func(d *memoryData) error {
		d.users[customer.ID] = customer
		return nil
	})
}

func (s *MemoryStore) with(fn func(d *memoryData) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

type memoryInventory struct{ s *MemoryStore }

func (r memoryInventory) Ensure(ctx context.Context, taxRate decimal.Decimal) (*models.Inventory, error) {
	var out *models.Inventory
	err := r.s.with(func(d *memoryData) error {
		if d.inventory == nil {
			d.inventory = &models.Inventory{ID: uuid.NewString(), TaxRate: taxRate, UpdatedAt: time.Now()}
		}
		out = d.inventory.Clone()
		return nil
	})
	return out, err
}

func (r memoryInventory) Get(ctx context.Context) (*models.Inventory, error) {
	var out *models.Inventory
	err := r.s.with(func(d *memoryData) error {
		if d.inventory == nil {
			return &models.NotFoundError{Entity: "inventory", Key: "singleton"}
		}
		out = d.inventory.Clone()
		return nil
	})
	return out, err
}

func (r memoryInventory) GetForUpdate(ctx context.Context) (*models.Inventory, error) {
	return r.Get(ctx)
}

func (r memoryInventory) Save(ctx context.Context, inv *models.Inventory) error {
	return r.s.with(func(d *memoryData) error {
		if d.inventory == nil || d.inventory.ID != inv.ID {
			return &models.NotFoundError{Entity: "inventory", Key: inv.ID}
		}
		for i := range inv.Ingredients {
			if inv.Ingredients[i].Quantity < 0 {
				return models.NewValidationError("quantity", "ingredient %q would be negative", inv.Ingredients[i].Name)
			}
			if inv.Ingredients[i].ID == "" {
				inv.Ingredients[i].ID = uuid.NewString()
			}
		}
		inv.UpdatedAt = time.Now()
		d.inventory = inv.Clone()
		return nil
	})
}

func (r memoryInventory) AppendMovements(ctx context.Context, movements []models.StockMovement) error {
	return r.s.with(func(d *memoryData) error {
		now := time.Now()
		for i := range movements {
			movements[i].ID = uuid.NewString()
			movements[i].CreatedAt = now
			d.movements = append(d.movements, movements[i])
		}
		return nil
	})
}

func (r memoryInventory) ListMovements(ctx context.Context, limit int) ([]models.StockMovement, error) {
	out := []models.StockMovement{}
	err := r.s.with(func(d *memoryData) error {
		for i := len(d.movements) - 1; i >= 0 && len(out) < limit; i-- {
			out = append(out, d.movements[i])
		}
		return nil
	})
	return out, err
}

type memoryMenu struct{ s *MemoryStore }

func (r memoryMenu) GetAll(ctx context.Context) ([]*models.MenuItem, error) {
	items := []*models.MenuItem{}
	err := r.s.with(func(d *memoryData) error {
		for _, item := range d.menu {
			items = append(items, item.Clone())
		}
		return nil
	})
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, err
}

func (r memoryMenu) GetByID(ctx context.Context, id string) (*models.MenuItem, error) {
	var out *models.MenuItem
	err := r.s.with(func(d *memoryData) error {
		item, ok := d.menu[id]
		if !ok {
			return &models.NotFoundError{Entity: "menu item", Key: id}
		}
		out = item.Clone()
		return nil
	})
	return out, err
}

func (r memoryMenu) GetByName(ctx context.Context, name string) (*models.MenuItem, error) {
	var out *models.MenuItem
	err := r.s.with(func(d *memoryData) error {
		for _, item := range d.menu {
			if item.Name == name {
				out = item.Clone()
				return nil
			}
		}
		return &models.NotFoundError{Entity: "menu item", Key: name}
	})
	return out, err
}

func (r memoryMenu) check(d *memoryData, item *models.MenuItem) error {
	for id, other := range d.menu {
		if id != item.ID && other.Name == item.Name {
			return &models.DuplicateNameError{Entity: "menu item", Name: item.Name}
		}
	}
	for _, entry := range item.Ingredients {
		if d.inventory == nil {
			return &models.NotFoundError{Entity: "ingredient", Key: entry.Name}
		}
		ing, ok := d.inventory.Ingredient(entry.Name)
		if !ok || ing.ID != entry.IngredientID {
			return &models.NotFoundError{Entity: "ingredient", Key: entry.Name}
		}
	}
	return nil
}

func (r memoryMenu) Create(ctx context.Context, item *models.MenuItem) error {
	return r.s.with(func(d *memoryData) error {
		candidate := item.Clone()
		candidate.ID = uuid.NewString()
		if err := r.check(d, candidate); err != nil {
			return err
		}
		now := time.Now()
		candidate.CreatedAt, candidate.UpdatedAt = now, now
		d.menu[candidate.ID] = candidate
		item.ID, item.CreatedAt, item.UpdatedAt = candidate.ID, now, now
		return nil
	})
}

func (r memoryMenu) Update(ctx context.Context, item *models.MenuItem) error {
	return r.s.with(func(d *memoryData) error {
		existing, ok := d.menu[item.ID]
		if !ok {
			return &models.NotFoundError{Entity: "menu item", Key: item.ID}
		}
		if err := r.check(d, item); err != nil {
			return err
		}
		item.CreatedAt = existing.CreatedAt
		item.UpdatedAt = time.Now()
		d.menu[item.ID] = item.Clone()
		return nil
	})
}

func (r memoryMenu) Delete(ctx context.Context, id string) error {
	return r.s.with(func(d *memoryData) error {
		if _, ok := d.menu[id]; !ok {
			return &models.NotFoundError{Entity: "menu item", Key: id}
		}
		for _, order := range d.orders {
			for _, line := range order.Items {
				if line.MenuItemID == id {
					return models.NewValidationError("id", "menu item %s is referenced by existing orders", id)
				}
			}
		}
		delete(d.menu, id)
		return nil
	})
}

type memoryOrders struct{ s *MemoryStore }

// view copies an order and fills line item names from the current menu.
func (r memoryOrders) view(d *memoryData, order *models.Order) *models.Order {
	out := order.Clone()
	for i := range out.Items {
		if item, ok := d.menu[out.Items[i].MenuItemID]; ok {
			out.Items[i].ItemName = item.Name
		}
	}
	return out
}

func (r memoryOrders) Create(ctx context.Context, order *models.Order) error {
	return r.s.with(func(d *memoryData) error {
		for _, line := range order.Items {
			if _, ok := d.menu[line.MenuItemID]; !ok {
				return &models.NotFoundError{Entity: "menu item", Key: line.MenuItemID}
			}
		}
		order.ID = uuid.NewString()
		for i := range order.Items {
			order.Items[i].ID = uuid.NewString()
		}
		d.orders[order.ID] = order.Clone()
		return nil
	})
}

func (r memoryOrders) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var out *models.Order
	err := r.s.with(func(d *memoryData) error {
		order, ok := d.orders[id]
		if !ok {
			return &models.NotFoundError{Entity: "order", Key: id}
		}
		out = r.view(d, order)
		return nil
	})
	return out, err
}

func (r memoryOrders) GetForUpdate(ctx context.Context, id string) (*models.Order, error) {
	return r.GetByID(ctx, id)
}

func (r memoryOrders) list(match func(*models.Order) bool) ([]*models.Order, error) {
	orders := []*models.Order{}
	err := r.s.with(func(d *memoryData) error {
		for _, order := range d.orders {
			if match(order) {
				orders = append(orders, r.view(d, order))
			}
		}
		return nil
	})
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
	return orders, err
}

func (r memoryOrders) GetAll(ctx context.Context) ([]*models.Order, error) {
	return r.list(func(*models.Order) bool { return true })
}

func (r memoryOrders) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]*models.Order, error) {
	return r.list(func(o *models.Order) bool {
		return !o.CreatedAt.Before(start) && o.CreatedAt.Before(end)
	})
}

func (r memoryOrders) ListByCustomer(ctx context.Context, customerID string) ([]*models.Order, error) {
	return r.list(func(o *models.Order) bool {
		return o.CustomerID != "" && o.CustomerID == customerID
	})
}

func (r memoryOrders) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	return r.s.with(func(d *memoryData) error {
		order, ok := d.orders[id]
		if !ok {
			return &models.NotFoundError{Entity: "order", Key: id}
		}
		order.Status = status
		return nil
	})
}

func (r memoryOrders) Delete(ctx context.Context, id string) error {
	return r.s.with(func(d *memoryData) error {
		if _, ok := d.orders[id]; !ok {
			return &models.NotFoundError{Entity: "order", Key: id}
		}
		delete(d.orders, id)
		return nil
	})
}

func (r memoryOrders) CountByMenuItem(ctx context.Context, menuItemID string) (int, error) {
	count := 0
	err := r.s.with(func(d *memoryData) error {
		for _, order := range d.orders {
			for _, line := range order.Items {
				if line.MenuItemID == menuItemID {
					count++
				}
			}
		}
		return nil
	})
	return count, err
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) LookupCustomer(ctx context.Context, id string) (*models.Customer, error) {
	var out *models.Customer
	err := r.s.with(func(d *memoryData) error {
		customer, ok := d.users[id]
		if !ok {
			return &models.NotFoundError{Entity: "customer", Key: id}
		}
		out = &customer
		return nil
	})
	return out, err
}
