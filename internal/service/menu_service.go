package service

import (
	"context"
	"strings"

	"wolfcafe/internal/repositories"
	"wolfcafe/models"
	"wolfcafe/pkg/logger"
)

type MenuItemRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Price       int                `json:"price"`
	Ingredients []BillEntryRequest `json:"ingredients"`
}

type BillEntryRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

type MenuServiceInterface interface {
	AddItem(ctx context.Context, req MenuItemRequest) (*models.MenuItem, error)
	UpdateItem(ctx context.Context, id string, req MenuItemRequest) (*models.MenuItem, error)
	GetItem(ctx context.Context, id string) (*models.MenuItem, error)
	GetItemByName(ctx context.Context, name string) (*models.MenuItem, error)
	IsDuplicateName(ctx context.Context, name string) (bool, error)
	ListAll(ctx context.Context) ([]*models.MenuItem, error)
	DeleteItem(ctx context.Context, id string) error
}

type MenuService struct {
	store  repositories.Store
	logger *logger.Logger
}

func NewMenuService(store repositories.Store, logger *logger.Logger) *MenuService {
	return &MenuService{
		store:  store,
		logger: logger.WithComponent("menu_service"),
	}
}

// AddItem validates and stores a new menu item
func (s *MenuService) AddItem(ctx context.Context, req MenuItemRequest) (*models.MenuItem, error) {
	s.logger.Info("Adding menu item", "name", req.Name)

	var created *models.MenuItem
	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		item, err := s.buildItem(ctx, tx, "", req)
		if err != nil {
			return err
		}
		if err := tx.Menu().Create(ctx, item); err != nil {
			return err
		}
		created = item
		return nil
	})
	if err != nil {
		logFailure(s.logger, "Add menu item failed", err, "name", req.Name)
		return nil, err
	}

	s.logger.Info("Menu item added", "item_id", created.ID, "name", created.Name)
	return created, nil
}

// UpdateItem replaces an item's fields and its whole bill of materials
func (s *MenuService) UpdateItem(ctx context.Context, id string, req MenuItemRequest) (*models.MenuItem, error) {
	s.logger.Info("Updating menu item", "item_id", id)

	var updated *models.MenuItem
	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		if _, err := tx.Menu().GetByID(ctx, id); err != nil {
			return err
		}
		item, err := s.buildItem(ctx, tx, id, req)
		if err != nil {
			return err
		}
		item.ID = id
		if err := tx.Menu().Update(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		logFailure(s.logger, "Update menu item failed", err, "item_id", id)
		return nil, err
	}

	s.logger.Info("Menu item updated", "item_id", id)
	return updated, nil
}

// buildItem validates req and resolves its bill against the ingredient
// ledgers. selfID is the item being updated, empty when adding.
func (s *MenuService) buildItem(ctx context.Context, tx repositories.Store, selfID string, req MenuItemRequest) (*models.MenuItem, error) {
	if err := validateMenuItem(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	existing, err := tx.Menu().GetByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return nil, &models.DuplicateNameError{Entity: "menu item", Name: name}
	case err != nil && !models.IsNotFound(err):
		return nil, err
	}

	inv, err := tx.Inventory().Get(ctx)
	if err != nil && !models.IsNotFound(err) {
		return nil, err
	}

	item := &models.MenuItem{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
	}
	for _, entry := range req.Ingredients {
		var ing models.Ingredient
		found := false
		if inv != nil {
			ing, found = inv.Ingredient(entry.Name)
		}
		if !found {
			return nil, &models.NotFoundError{Entity: "ingredient", Key: models.NormalizeIngredientName(entry.Name)}
		}

		unit := strings.TrimSpace(entry.Unit)
		if unit == "" {
			unit = models.DefaultUnit
		}
		item.SetBillEntry(models.BillEntry{
			IngredientID: ing.ID,
			Name:         ing.Name,
			Quantity:     entry.Quantity,
			Unit:         unit,
		})
	}
	return item, nil
}

func validateMenuItem(req MenuItemRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return models.NewValidationError("name", "menu item name is required")
	}
	if req.Price <= 0 {
		return models.NewValidationError("price", "must be greater than zero, got %d", req.Price)
	}
	if len(req.Ingredients) == 0 {
		return models.NewValidationError("ingredients", "menu item must use at least one ingredient")
	}
	for _, entry := range req.Ingredients {
		if models.NormalizeIngredientName(entry.Name) == "" {
			return models.NewValidationError("ingredients", "ingredient name is required")
		}
		if entry.Quantity < 0 {
			return models.NewValidationError("ingredients", "quantity of %q must not be negative, got %d", entry.Name, entry.Quantity)
		}
	}
	return nil
}

func (s *MenuService) GetItem(ctx context.Context, id string) (*models.MenuItem, error) {
	item, err := s.store.Menu().GetByID(ctx, id)
	if err != nil {
		logFailure(s.logger, "Menu item lookup failed", err, "item_id", id)
		return nil, err
	}
	return item, nil
}

// GetItemByName returns nil without an error when no item has that name
func (s *MenuService) GetItemByName(ctx context.Context, name string) (*models.MenuItem, error) {
	item, err := s.store.Menu().GetByName(ctx, name)
	if models.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		logFailure(s.logger, "Menu item lookup failed", err, "name", name)
		return nil, err
	}
	return item, nil
}

func (s *MenuService) IsDuplicateName(ctx context.Context, name string) (bool, error) {
	item, err := s.GetItemByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

func (s *MenuService) ListAll(ctx context.Context) ([]*models.MenuItem, error) {
	items, err := s.store.Menu().GetAll(ctx)
	if err != nil {
		logFailure(s.logger, "Failed to list menu items", err)
		return nil, err
	}
	return items, nil
}

// DeleteItem removes an item no order refers to
func (s *MenuService) DeleteItem(ctx context.Context, id string) error {
	s.logger.Info("Deleting menu item", "item_id", id)

	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		if _, err := tx.Menu().GetByID(ctx, id); err != nil {
			return err
		}
		count, err := tx.Orders().CountByMenuItem(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return models.NewValidationError("id", "menu item %s is referenced by %d order lines", id, count)
		}
		return tx.Menu().Delete(ctx, id)
	})
	if err != nil {
		logFailure(s.logger, "Delete menu item failed", err, "item_id", id)
		return err
	}

	s.logger.Info("Menu item deleted", "item_id", id)
	return nil
}
