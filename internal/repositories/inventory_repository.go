package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wolfcafe/models"
	"wolfcafe/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InventoryRepository struct {
	logger *logger.Logger
	q      Querier
}

func NewInventoryRepository(logger *logger.Logger, q Querier) *InventoryRepository {
	return &InventoryRepository{
		logger: logger.WithComponent("inventory_repository"),
		q:      q,
	}
}

// Ensure inserts the singleton row unless it already exists
func (r *InventoryRepository) Ensure(ctx context.Context, taxRate decimal.Decimal) (*models.Inventory, error) {
	r.logger.Debug("Ensuring inventory exists")

	query := `
		INSERT INTO inventory (id, tax_rate)
		VALUES ($1, $2)
		ON CONFLICT (singleton) DO NOTHING
	`

	result, err := r.q.ExecContext(ctx, query, uuid.NewString(), taxRate)
	if err != nil {
		r.logger.Error("Failed to create inventory", "error", err)
		return nil, fmt.Errorf("failed to create inventory: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		r.logger.Info("Created inventory", "tax_rate", taxRate.String())
	}

	return r.Get(ctx)
}

func (r *InventoryRepository) Get(ctx context.Context) (*models.Inventory, error) {
	return r.get(ctx, false)
}

func (r *InventoryRepository) GetForUpdate(ctx context.Context) (*models.Inventory, error) {
	return r.get(ctx, true)
}

func (r *InventoryRepository) get(ctx context.Context, lock bool) (*models.Inventory, error) {
	r.logger.Debug("Retrieving inventory", "for_update", lock)

	query := `SELECT id, tax_rate, updated_at FROM inventory WHERE singleton`
	if lock {
		query += ` FOR UPDATE`
	}

	inv := &models.Inventory{}
	err := r.q.QueryRowContext(ctx, query).Scan(&inv.ID, &inv.TaxRate, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Entity: "inventory", Key: "singleton"}
		}
		r.logger.Error("Failed to query inventory", "error", err)
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT id, name, quantity
		FROM ingredients
		WHERE inventory_id = $1
		ORDER BY name
	`, inv.ID)
	if err != nil {
		r.logger.Error("Failed to query ingredients", "error", err)
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ing models.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Quantity); err != nil {
			r.logger.Error("Failed to scan ingredient", "error", err)
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		inv.Ingredients = append(inv.Ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingredient rows: %w", err)
	}

	r.logger.Debug("Retrieved inventory", "ingredients", len(inv.Ingredients))
	return inv, nil
}

// Save writes the tax rate and every ledger of inv
func (r *InventoryRepository) Save(ctx context.Context, inv *models.Inventory) error {
	r.logger.Debug("Saving inventory", "ingredients", len(inv.Ingredients))

	result, err := r.q.ExecContext(ctx,
		`UPDATE inventory SET tax_rate = $1, updated_at = now() WHERE id = $2`,
		inv.TaxRate, inv.ID)
	if err != nil {
		r.logger.Error("Failed to update inventory", "error", err)
		return fmt.Errorf("failed to update inventory: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &models.NotFoundError{Entity: "inventory", Key: inv.ID}
	}

	for i := range inv.Ingredients {
		ing := &inv.Ingredients[i]
		if ing.ID == "" {
			ing.ID = uuid.NewString()
			_, err = r.q.ExecContext(ctx,
				`INSERT INTO ingredients (id, inventory_id, name, quantity) VALUES ($1, $2, $3, $4)`,
				ing.ID, inv.ID, ing.Name, ing.Quantity)
		} else {
			_, err = r.q.ExecContext(ctx,
				`UPDATE ingredients SET quantity = $1 WHERE id = $2`,
				ing.Quantity, ing.ID)
		}
		if err != nil {
			r.logger.Error("Failed to save ingredient", "error", err, "ingredient", ing.Name)
			return fmt.Errorf("failed to save ingredient %s: %w", ing.Name, err)
		}
	}

	r.logger.Info("Saved inventory", "ingredients", len(inv.Ingredients))
	return nil
}

func (r *InventoryRepository) AppendMovements(ctx context.Context, movements []models.StockMovement) error {
	query := `
		INSERT INTO inventory_transactions (id, ingredient_name, delta, reason, reference_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i := range movements {
		m := &movements[i]
		m.ID = uuid.NewString()
		if _, err := r.q.ExecContext(ctx, query, m.ID, m.Ingredient, m.Delta, m.Reason, m.Reference); err != nil {
			r.logger.Error("Failed to record stock movement", "error", err, "ingredient", m.Ingredient)
			return fmt.Errorf("failed to record stock movement: %w", err)
		}
	}
	return nil
}

func (r *InventoryRepository) ListMovements(ctx context.Context, limit int) ([]models.StockMovement, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, ingredient_name, delta, reason, reference_id, created_at
		FROM inventory_transactions
		ORDER BY created_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		r.logger.Error("Failed to query stock movements", "error", err)
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}
	defer rows.Close()

	movements := []models.StockMovement{}
	for rows.Next() {
		var m models.StockMovement
		if err := rows.Scan(&m.ID, &m.Ingredient, &m.Delta, &m.Reason, &m.Reference, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
