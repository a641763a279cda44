package service

import (
	"context"

	"wolfcafe/internal/repositories"
	"wolfcafe/models"
	"wolfcafe/pkg/logger"

	"github.com/shopspring/decimal"
)

const defaultMovementLimit = 50

type InventoryServiceInterface interface {
	Initialize(ctx context.Context) (*models.Inventory, error)
	GetInventory(ctx context.Context) (*models.Inventory, error)
	ApplyBulkUpdate(ctx context.Context, targets map[string]*int) (*models.Inventory, error)
	ApplyDelta(ctx context.Context, name string, delta int) (*models.Inventory, error)
	SetAbsolute(ctx context.Context, name string, quantity int) (*models.Inventory, error)
	SetTaxRate(ctx context.Context, rate *decimal.Decimal) (decimal.Decimal, error)
	GetTaxRate(ctx context.Context) (decimal.Decimal, error)
	HasSufficientStock(ctx context.Context, demand models.Demand) (bool, error)
	Debit(ctx context.Context, demand models.Demand) error
	ListMovements(ctx context.Context, limit int) ([]models.StockMovement, error)
}

type InventoryService struct {
	store          repositories.Store
	defaultTaxRate decimal.Decimal
	logger         *logger.Logger
}

func NewInventoryService(store repositories.Store, defaultTaxRate decimal.Decimal, logger *logger.Logger) *InventoryService {
	return &InventoryService{
		store:          store,
		defaultTaxRate: defaultTaxRate,
		logger:         logger.WithComponent("inventory_service"),
	}
}

// Initialize creates the inventory if it does not exist yet. Run it once at startup.
func (s *InventoryService) Initialize(ctx context.Context) (*models.Inventory, error) {
	s.logger.Info("Initializing inventory")

	inv, err := s.store.Inventory().Ensure(ctx, s.defaultTaxRate)
	if err != nil {
		logFailure(s.logger, "Failed to initialize inventory", err)
		return nil, err
	}

	s.logger.Info("Inventory ready", "inventory_id", inv.ID, "ingredients", len(inv.Ingredients))
	return inv, nil
}

// GetInventory returns the singleton, creating it if Initialize never ran.
func (s *InventoryService) GetInventory(ctx context.Context) (*models.Inventory, error) {
	inv, err := s.store.Inventory().Get(ctx)
	if models.IsNotFound(err) {
		s.logger.Warn("Inventory missing on read, creating it")
		return s.Initialize(ctx)
	}
	if err != nil {
		logFailure(s.logger, "Failed to fetch inventory", err)
		return nil, err
	}
	return inv, nil
}

// lockInventory returns the inventory locked for the rest of tx.
func (s *InventoryService) lockInventory(ctx context.Context, tx repositories.Store) (*models.Inventory, error) {
	inv, err := tx.Inventory().GetForUpdate(ctx)
	if models.IsNotFound(err) {
		if _, err := tx.Inventory().Ensure(ctx, s.defaultTaxRate); err != nil {
			return nil, err
		}
		return tx.Inventory().GetForUpdate(ctx)
	}
	return inv, err
}

// mutate runs change against the locked inventory and persists the result
// together with one journal line per changed ledger.
func (s *InventoryService) mutate(ctx context.Context, tx repositories.Store, reason, reference string, change func(inv *models.Inventory) error) (*models.Inventory, error) {
	inv, err := s.lockInventory(ctx, tx)
	if err != nil {
		return nil, err
	}

	before := inv.Quantities()
	if err := change(inv); err != nil {
		return nil, err
	}

	if err := tx.Inventory().Save(ctx, inv); err != nil {
		return nil, err
	}
	if movements := models.DiffMovements(before, inv.Quantities(), reason, reference); len(movements) > 0 {
		if err := tx.Inventory().AppendMovements(ctx, movements); err != nil {
			return nil, err
		}
	}
	return inv, nil
}

func (s *InventoryService) update(ctx context.Context, reason string, change func(inv *models.Inventory) error) (*models.Inventory, error) {
	var updated *models.Inventory
	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		inv, err := s.mutate(ctx, tx, reason, "", change)
		updated = inv
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ApplyBulkUpdate resyncs the named ledgers to absolute quantities
func (s *InventoryService) ApplyBulkUpdate(ctx context.Context, targets map[string]*int) (*models.Inventory, error) {
	s.logger.Info("Applying bulk inventory update", "ingredients", len(targets))

	inv, err := s.update(ctx, models.MovementRestock, func(inv *models.Inventory) error {
		return inv.ApplyBulkUpdate(targets)
	})
	if err != nil {
		logFailure(s.logger, "Bulk inventory update rejected", err)
		return nil, err
	}

	s.logger.Info("Bulk inventory update applied", "ingredients", len(inv.Ingredients))
	return inv, nil
}

func (s *InventoryService) ApplyDelta(ctx context.Context, name string, delta int) (*models.Inventory, error) {
	s.logger.Info("Applying inventory delta", "ingredient", name, "delta", delta)

	inv, err := s.update(ctx, models.MovementAdjustment, func(inv *models.Inventory) error {
		return inv.ApplyDelta(name, delta)
	})
	if err != nil {
		logFailure(s.logger, "Inventory delta rejected", err, "ingredient", name)
		return nil, err
	}
	return inv, nil
}

func (s *InventoryService) SetAbsolute(ctx context.Context, name string, quantity int) (*models.Inventory, error) {
	s.logger.Info("Setting ingredient quantity", "ingredient", name, "quantity", quantity)

	inv, err := s.update(ctx, models.MovementRestock, func(inv *models.Inventory) error {
		return inv.SetAbsolute(name, quantity)
	})
	if err != nil {
		logFailure(s.logger, "Set quantity rejected", err, "ingredient", name)
		return nil, err
	}
	return inv, nil
}

// SetTaxRate stores rate and returns the rate now in effect. A nil rate
// changes nothing.
func (s *InventoryService) SetTaxRate(ctx context.Context, rate *decimal.Decimal) (decimal.Decimal, error) {
	if rate == nil {
		return s.GetTaxRate(ctx)
	}
	if rate.IsNegative() {
		err := models.NewValidationError("tax_rate", "must not be negative, got %s", rate.String())
		s.logger.Warn("Tax rate rejected", "error", err)
		return decimal.Zero, err
	}

	inv, err := s.update(ctx, models.MovementAdjustment, func(inv *models.Inventory) error {
		inv.TaxRate = *rate
		return nil
	})
	if err != nil {
		logFailure(s.logger, "Failed to set tax rate", err)
		return decimal.Zero, err
	}

	s.logger.Info("Tax rate updated", "tax_rate", inv.TaxRate.String())
	return inv.TaxRate, nil
}

func (s *InventoryService) GetTaxRate(ctx context.Context) (decimal.Decimal, error) {
	inv, err := s.GetInventory(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return inv.TaxRate, nil
}

// HasSufficientStock is a read-only check; the answer can be stale by the
// time the caller acts on it. Use Debit to check and consume together.
func (s *InventoryService) HasSufficientStock(ctx context.Context, demand models.Demand) (bool, error) {
	inv, err := s.GetInventory(ctx)
	if err != nil {
		return false, err
	}
	return inv.HasSufficientStock(demand), nil
}

// Debit consumes the whole demand vector or nothing
func (s *InventoryService) Debit(ctx context.Context, demand models.Demand) error {
	s.logger.Info("Debiting inventory", "ingredients", len(demand))

	err := s.store.Atomic(ctx, func(tx repositories.Store) error {
		return s.debit(ctx, tx, demand, models.MovementAdjustment, "")
	})
	if err != nil {
		logFailure(s.logger, "Inventory debit rejected", err)
		return err
	}
	return nil
}

// debit is the check-then-consume step shared with order fulfillment. The
// inventory lock taken here is what serializes concurrent fulfillments.
func (s *InventoryService) debit(ctx context.Context, tx repositories.Store, demand models.Demand, reason, reference string) error {
	_, err := s.mutate(ctx, tx, reason, reference, func(inv *models.Inventory) error {
		return inv.Debit(demand)
	})
	return err
}

func (s *InventoryService) ListMovements(ctx context.Context, limit int) ([]models.StockMovement, error) {
	if limit <= 0 {
		limit = defaultMovementLimit
	}
	movements, err := s.store.Inventory().ListMovements(ctx, limit)
	if err != nil {
		logFailure(s.logger, "Failed to list stock movements", err)
		return nil, err
	}
	return movements, nil
}
