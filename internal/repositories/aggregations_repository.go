package repositories

import (
	"context"

	"wolfcafe/models"
	"wolfcafe/pkg/logger"
)

type AggregationRepositoryInterface interface {
	GetAggregationData(ctx context.Context) (orders []*models.Order, menuItems []*models.MenuItem, err error)
}

// AggregationRepository reads orders and the menu from one snapshot of a Store.
type AggregationRepository struct {
	store  Store
	logger *logger.Logger
}

func NewAggregationRepository(store Store, log *logger.Logger) *AggregationRepository {
	return &AggregationRepository{
		store:  store,
		logger: log.WithComponent("aggregation_repository"),
	}
}

func (r *AggregationRepository) GetAggregationData(ctx context.Context) (orders []*models.Order, menuItems []*models.MenuItem, err error) {
	r.logger.Debug("Fetching data for aggregation reports")

	err = r.store.Atomic(ctx, func(tx Store) error {
		var err error
		if orders, err = tx.Orders().GetAll(ctx); err != nil {
			r.logger.Error("Failed to get orders for aggregation", "error", err)
			return err
		}
		if menuItems, err = tx.Menu().GetAll(ctx); err != nil {
			r.logger.Error("Failed to get menu items for aggregation", "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return orders, menuItems, nil
}
