package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wolfcafe/models"
	"wolfcafe/pkg/database"
	"wolfcafe/pkg/logger"

	"github.com/google/uuid"
)

// MenuRepository stores menu items and their bills of materials. Multi-statement
// writes rely on being called inside Store.Atomic.
type MenuRepository struct {
	logger *logger.Logger
	q      Querier
}

func NewMenuRepository(logger *logger.Logger, q Querier) *MenuRepository {
	return &MenuRepository{
		logger: logger.WithComponent("menu_repository"),
		q:      q,
	}
}

const selectMenuItems = `
	SELECT m.id, m.name, m.description, m.price, m.created_at, m.updated_at,
	       COALESCE(
	           json_agg(
	               json_build_object(
	                   'ingredient_id', mi.ingredient_id,
	                   'name', i.name,
	                   'quantity', mi.quantity,
	                   'unit', mi.unit
	               ) ORDER BY mi.position
	           ) FILTER (WHERE mi.ingredient_id IS NOT NULL), '[]'::json
	       ) AS ingredients
	FROM menu_items m
	LEFT JOIN menu_item_ingredients mi ON m.id = mi.menu_item_id
	LEFT JOIN ingredients i ON i.id = mi.ingredient_id
`

// GetAll retrieves all menu items ordered by name
func (r *MenuRepository) GetAll(ctx context.Context) ([]*models.MenuItem, error) {
	r.logger.Debug("Retrieving all menu items from database")

	items, err := r.query(ctx, selectMenuItems+` GROUP BY m.id ORDER BY m.name`)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Retrieved all menu items", "count", len(items))
	return items, nil
}

func (r *MenuRepository) GetByID(ctx context.Context, id string) (*models.MenuItem, error) {
	r.logger.Debug("Retrieving menu item", "item_id", id)
	if !validID(id) {
		return nil, &models.NotFoundError{Entity: "menu item", Key: id}
	}

	items, err := r.query(ctx, selectMenuItems+` WHERE m.id = $1 GROUP BY m.id`, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &models.NotFoundError{Entity: "menu item", Key: id}
	}
	return items[0], nil
}

// GetByName matches the name exactly, case included
func (r *MenuRepository) GetByName(ctx context.Context, name string) (*models.MenuItem, error) {
	r.logger.Debug("Retrieving menu item by name", "name", name)

	items, err := r.query(ctx, selectMenuItems+` WHERE m.name = $1 GROUP BY m.id`, name)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &models.NotFoundError{Entity: "menu item", Key: name}
	}
	return items[0], nil
}

func (r *MenuRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.MenuItem, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query menu items", "error", err)
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := []*models.MenuItem{}
	for rows.Next() {
		item := &models.MenuItem{}
		var ingredientsJSON []byte

		err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price, &item.CreatedAt, &item.UpdatedAt, &ingredientsJSON)
		if err != nil {
			r.logger.Error("Failed to scan menu item", "error", err)
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}

		if err := json.Unmarshal(ingredientsJSON, &item.Ingredients); err != nil {
			r.logger.Error("Failed to parse ingredients", "error", err, "item_id", item.ID)
			return nil, fmt.Errorf("failed to parse ingredients for item %s: %w", item.ID, err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating menu rows", "error", err)
		return nil, fmt.Errorf("error iterating menu rows: %w", err)
	}
	return items, nil
}

// Create inserts a new menu item and its bill of materials
func (r *MenuRepository) Create(ctx context.Context, item *models.MenuItem) error {
	r.logger.Debug("Adding new menu item", "item_name", item.Name)

	now := time.Now()
	item.ID = uuid.NewString()
	item.CreatedAt, item.UpdatedAt = now, now

	query := `
		INSERT INTO menu_items (id, name, description, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query, item.ID, item.Name, item.Description, item.Price, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Warn("Attempted to add duplicate menu item", "item_name", item.Name)
			return &models.DuplicateNameError{Entity: "menu item", Name: item.Name}
		}
		r.logger.Error("Failed to add menu item", "error", err, "item_name", item.Name)
		return fmt.Errorf("failed to add menu item: %w", err)
	}

	if err := r.insertIngredients(ctx, item.ID, item.Ingredients); err != nil {
		return err
	}

	r.logger.Info("Added new menu item", "item_id", item.ID, "name", item.Name)
	return nil
}

// Update replaces an item's fields and its whole bill of materials
func (r *MenuRepository) Update(ctx context.Context, item *models.MenuItem) error {
	r.logger.Debug("Updating menu item in database", "item_id", item.ID)
	if !validID(item.ID) {
		return &models.NotFoundError{Entity: "menu item", Key: item.ID}
	}

	item.UpdatedAt = time.Now()
	query := `
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.q.ExecContext(ctx, query, item.Name, item.Description, item.Price, item.UpdatedAt, item.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Warn("Menu item rename collides", "item_id", item.ID, "item_name", item.Name)
			return &models.DuplicateNameError{Entity: "menu item", Name: item.Name}
		}
		r.logger.Error("Failed to update menu item", "error", err, "item_id", item.ID)
		return fmt.Errorf("failed to update menu item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("Attempted to update non-existent menu item", "item_id", item.ID)
		return &models.NotFoundError{Entity: "menu item", Key: item.ID}
	}

	if _, err := r.q.ExecContext(ctx, `DELETE FROM menu_item_ingredients WHERE menu_item_id = $1`, item.ID); err != nil {
		r.logger.Error("Failed to delete existing ingredients", "error", err, "item_id", item.ID)
		return fmt.Errorf("failed to delete existing ingredients: %w", err)
	}

	if err := r.insertIngredients(ctx, item.ID, item.Ingredients); err != nil {
		return err
	}

	r.logger.Info("Updated menu item", "item_id", item.ID, "name", item.Name)
	return nil
}

// Delete removes an item; its bill goes with it
func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debug("Deleting menu item", "item_id", id)
	if !validID(id) {
		return &models.NotFoundError{Entity: "menu item", Key: id}
	}

	result, err := r.q.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			r.logger.Warn("Menu item still referenced by orders", "item_id", id)
			return models.NewValidationError("id", "menu item %s is referenced by existing orders", id)
		}
		r.logger.Error("Failed to delete menu item", "error", err, "item_id", id)
		return fmt.Errorf("failed to delete menu item: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return &models.NotFoundError{Entity: "menu item", Key: id}
	}

	r.logger.Info("Deleted menu item", "item_id", id)
	return nil
}

func (r *MenuRepository) insertIngredients(ctx context.Context, itemID string, entries []models.BillEntry) error {
	query := `
		INSERT INTO menu_item_ingredients (menu_item_id, ingredient_id, position, quantity, unit)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i, entry := range entries {
		if _, err := r.q.ExecContext(ctx, query, itemID, entry.IngredientID, i, entry.Quantity, entry.Unit); err != nil {
			if database.IsForeignKeyViolation(err) {
				return &models.NotFoundError{Entity: "ingredient", Key: entry.Name}
			}
			r.logger.Error("Failed to add menu item ingredient", "error", err, "item_id", itemID, "ingredient", entry.Name)
			return fmt.Errorf("failed to add menu item ingredient %s: %w", entry.Name, err)
		}
	}
	return nil
}
