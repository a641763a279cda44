package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"wolfcafe/internal/service"
	"wolfcafe/models"
	"wolfcafe/pkg/logger"
)

// Exit codes returned by ExitCode.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitNotFound = 3
	ExitInvalid  = 4
	ExitConflict = 5
	ExitUsage    = 64
)

// ErrUsage marks a malformed command line.
var ErrUsage = errors.New("usage")

func usageError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// Database is the schema and health surface of the storage backend. It is
// nil when running without a database.
type Database interface {
	EnsureSchema(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	LogStats() sql.DBStats
}

type Services struct {
	Inventory service.InventoryServiceInterface
	Menu      service.MenuServiceInterface
	Orders    service.OrderServiceInterface
	Reports   service.AggregationServiceInterface
}

// Handler runs one command line against the services and writes the
// result as JSON.
type Handler struct {
	inventory *InventoryHandler
	menu      *MenuHandler
	orders    *OrderHandler
	reports   *AggregationHandler
	db        Database
	out       io.Writer
	logger    *logger.Logger
}

func New(svc Services, db Database, in io.Reader, out io.Writer, log *logger.Logger) *Handler {
	w := &writer{out: out}
	return &Handler{
		inventory: NewInventoryHandler(svc.Inventory, w, log),
		menu:      NewMenuHandler(svc.Menu, w, in, log),
		orders:    NewOrderHandler(svc.Orders, w, in, log),
		reports:   NewAggregationHandler(svc.Reports, w, log),
		db:        db,
		out:       out,
		logger:    log.WithComponent("handler"),
	}
}

// Run dispatches args[0] to its command.
func (h *Handler) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("no command given")
	}
	h.logger.Debug("Dispatching command", "command", args[0], "args", len(args)-1)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "init":
		return h.initialize(ctx)
	case "health":
		return h.health(ctx)
	case "inventory":
		return h.inventory.Run(ctx, rest)
	case "tax":
		return h.inventory.Tax(ctx, rest)
	case "menu":
		return h.menu.Run(ctx, rest)
	case "orders":
		return h.orders.List(ctx, rest)
	case "order":
		return h.orders.Run(ctx, rest)
	case "report":
		return h.reports.Run(ctx, rest)
	}
	return usageError("unknown command %q", cmd)
}

func (h *Handler) initialize(ctx context.Context) error {
	if h.db != nil {
		if err := h.db.EnsureSchema(ctx); err != nil {
			return err
		}
	}
	return h.inventory.Initialize(ctx)
}

// healthStatus is the health command's output. Pool is set for Postgres only.
type healthStatus struct {
	Status  string     `json:"status"`
	Storage string     `json:"storage"`
	Pool    *poolStats `json:"pool,omitempty"`
}

type poolStats struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

func (h *Handler) health(ctx context.Context) error {
	status := healthStatus{Status: "ok", Storage: "memory"}
	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			return err
		}
		stats := h.db.LogStats()
		status.Storage = "postgres"
		status.Pool = &poolStats{
			OpenConnections: stats.OpenConnections,
			InUse:           stats.InUse,
			Idle:            stats.Idle,
			WaitCount:       stats.WaitCount,
		}
	}
	return writeJSONResponse(h.out, status)
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case models.IsNotFound(err):
		return ExitNotFound
	case models.IsValidation(err), models.IsDuplicateName(err):
		return ExitInvalid
	case models.IsInsufficientStock(err), models.IsInvalidTransition(err):
		return ExitConflict
	}
	return ExitFailure
}

// WriteError writes err as a JSON error body.
func WriteError(w io.Writer, err error) {
	body := map[string]interface{}{"error": err.Error()}

	var short *models.InsufficientStockError
	if errors.As(err, &short) {
		body["ingredient"] = short.Ingredient
		body["required"] = short.Required
		body["available"] = short.Available
	}
	var invalid *models.InvalidTransitionError
	if errors.As(err, &invalid) {
		body["from"] = invalid.From
		body["to"] = invalid.To
	}
	_ = writeJSONResponse(w, body)
}

type writer struct{ out io.Writer }

func (w *writer) JSON(v interface{}) error { return writeJSONResponse(w.out, v) }

func writeJSONResponse(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// decodeBody reads a single JSON document from r and rejects unknown fields.
func decodeBody(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return models.NewValidationError("body", "invalid JSON: %v", err)
	}
	return nil
}

func parseLimit(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	if len(args) > 1 {
		return 0, usageError("expected at most one limit, got %d arguments", len(args))
	}
	limit, err := strconv.Atoi(args[0])
	if err != nil || limit < 0 {
		return 0, usageError("limit must be a non-negative integer, got %q", args[0])
	}
	return limit, nil
}

func requireArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return usageError("%s", usage)
	}
	return nil
}
