package handler

import (
	"context"
	"strconv"
	"strings"

	"wolfcafe/internal/service"
	"wolfcafe/pkg/logger"

	"github.com/shopspring/decimal"
)

type InventoryHandler struct {
	inventoryService service.InventoryServiceInterface
	w                *writer
	logger           *logger.Logger
}

func NewInventoryHandler(inventoryService service.InventoryServiceInterface, w *writer, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		w:                w,
		logger:           log.WithComponent("inventory_handler"),
	}
}

// Run handles inventory, inventory set, inventory add and inventory history.
func (h *InventoryHandler) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return h.show(ctx)
	}
	switch args[0] {
	case "set":
		return h.set(ctx, args[1:])
	case "add":
		return h.add(ctx, args[1:])
	case "history":
		return h.history(ctx, args[1:])
	}
	return usageError("unknown inventory command %q", args[0])
}

func (h *InventoryHandler) Initialize(ctx context.Context) error {
	inv, err := h.inventoryService.Initialize(ctx)
	if err != nil {
		return err
	}
	return h.w.JSON(inv)
}

func (h *InventoryHandler) show(ctx context.Context) error {
	inv, err := h.inventoryService.GetInventory(ctx)
	if err != nil {
		return err
	}
	return h.w.JSON(inv)
}

// set parses name=qty pairs. An empty quantity resets the ledger to zero.
func (h *InventoryHandler) set(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("inventory set <name=qty>...")
	}

	targets := make(map[string]*int, len(args))
	for _, pair := range args {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return usageError("expected name=qty, got %q", pair)
		}
		if _, dup := targets[name]; dup {
			return usageError("ingredient %q given more than once", name)
		}
		if raw == "" {
			targets[name] = nil
			continue
		}
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return usageError("quantity for %q is not an integer: %q", name, raw)
		}
		targets[name] = &qty
	}

	inv, err := h.inventoryService.ApplyBulkUpdate(ctx, targets)
	if err != nil {
		return err
	}
	return h.w.JSON(inv)
}

func (h *InventoryHandler) add(ctx context.Context, args []string) error {
	if err := requireArgs(args, 2, "inventory add <name> <delta>"); err != nil {
		return err
	}
	delta, err := strconv.Atoi(args[1])
	if err != nil {
		return usageError("delta is not an integer: %q", args[1])
	}

	inv, err := h.inventoryService.ApplyDelta(ctx, args[0], delta)
	if err != nil {
		return err
	}
	return h.w.JSON(inv)
}

func (h *InventoryHandler) history(ctx context.Context, args []string) error {
	limit, err := parseLimit(args)
	if err != nil {
		return err
	}
	movements, err := h.inventoryService.ListMovements(ctx, limit)
	if err != nil {
		return err
	}
	return h.w.JSON(movements)
}

// Tax shows the tax rate, or sets it when a rate is given.
func (h *InventoryHandler) Tax(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return usageError("tax [rate]")
	}

	var rate *decimal.Decimal
	if len(args) == 1 {
		parsed, err := decimal.NewFromString(args[0])
		if err != nil {
			return usageError("tax rate is not a number: %q", args[0])
		}
		rate = &parsed
	}

	current, err := h.inventoryService.SetTaxRate(ctx, rate)
	if err != nil {
		return err
	}
	return h.w.JSON(map[string]decimal.Decimal{"tax_rate": current})
}
