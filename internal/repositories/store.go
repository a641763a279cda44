package repositories

import (
	"context"
	"database/sql"
	"time"

	"wolfcafe/models"
	"wolfcafe/pkg/database"
	"wolfcafe/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InventoryRepositoryInterface interface {
	// Ensure creates the singleton inventory when none exists and returns it.
	Ensure(ctx context.Context, taxRate decimal.Decimal) (*models.Inventory, error)
	// Get returns the singleton or a NotFoundError.
	Get(ctx context.Context) (*models.Inventory, error)
	// GetForUpdate is Get holding the inventory lock until the surrounding
	// Atomic call returns.
	GetForUpdate(ctx context.Context) (*models.Inventory, error)
	// Save writes the tax rate and every ledger. New ledgers get an ID.
	Save(ctx context.Context, inv *models.Inventory) error
	AppendMovements(ctx context.Context, movements []models.StockMovement) error
	ListMovements(ctx context.Context, limit int) ([]models.StockMovement, error)
}

type MenuRepositoryInterface interface {
	GetAll(ctx context.Context) ([]*models.MenuItem, error)
	GetByID(ctx context.Context, id string) (*models.MenuItem, error)
	GetByName(ctx context.Context, name string) (*models.MenuItem, error)
	Create(ctx context.Context, item *models.MenuItem) error
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id string) error
}

type OrderRepositoryInterface interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// GetForUpdate is GetByID holding the order's row lock until the
	// surrounding Atomic call returns.
	GetForUpdate(ctx context.Context, id string) (*models.Order, error)
	GetAll(ctx context.Context) ([]*models.Order, error)
	// ListCreatedBetween returns orders with start <= created_at < end.
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]*models.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	Delete(ctx context.Context, id string) error
	CountByMenuItem(ctx context.Context, menuItemID string) (int, error)
}

type UserRepositoryInterface interface {
	LookupCustomer(ctx context.Context, id string) (*models.Customer, error)
}

// Store groups the repositories that share one consistency boundary.
type Store interface {
	Inventory() InventoryRepositoryInterface
	Menu() MenuRepositoryInterface
	Orders() OrderRepositoryInterface
	// Atomic runs fn against repositories bound to a single unit of work.
	// Everything fn writes commits if it returns nil and is discarded
	// otherwise. Nested calls join the outer unit.
	Atomic(ctx context.Context, fn func(tx Store) error) error
}

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// PostgresStore is the database/sql backed Store.
type PostgresStore struct {
	db     *database.DB
	q      Querier
	inTx   bool
	logger *logger.Logger
}

func NewPostgresStore(db *database.DB, logger *logger.Logger) *PostgresStore {
	return &PostgresStore{db: db, q: db, logger: logger}
}

func (s *PostgresStore) Inventory() InventoryRepositoryInterface {
	return NewInventoryRepository(s.logger, s.q)
}

func (s *PostgresStore) Menu() MenuRepositoryInterface {
	return NewMenuRepository(s.logger, s.q)
}

func (s *PostgresStore) Orders() OrderRepositoryInterface {
	return NewOrderRepository(s.logger, s.q)
}

func (s *PostgresStore) Users() UserRepositoryInterface {
	return NewUserRepository(s.logger, s.q)
}

func (s *PostgresStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		return fn(&PostgresStore{db: s.db, q: tx, inTx: true, logger: s.logger})
	})
}

// validID reports whether id can be used against a UUID column. Anything
// else cannot match a row and is treated as not found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
