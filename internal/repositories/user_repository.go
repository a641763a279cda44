package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wolfcafe/models"
	"wolfcafe/pkg/logger"
)

// UserRepository resolves customer ids against the users table. Account
// management lives elsewhere; this is a read-only view.
type UserRepository struct {
	logger *logger.Logger
	q      Querier
}

func NewUserRepository(logger *logger.Logger, q Querier) *UserRepository {
	return &UserRepository{
		logger: logger.WithComponent("user_repository"),
		q:      q,
	}
}

func (r *UserRepository) LookupCustomer(ctx context.Context, id string) (*models.Customer, error) {
	customer := &models.Customer{}
	err := r.q.QueryRowContext(ctx, `SELECT id, display_name FROM users WHERE id = $1`, id).
		Scan(&customer.ID, &customer.DisplayName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Entity: "customer", Key: id}
		}
		r.logger.Error("Failed to look up customer", "error", err, "customer_id", id)
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	return customer, nil
}
