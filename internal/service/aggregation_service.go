package service

import (
	"context"
	"sort"

	"wolfcafe/internal/repositories"
	"wolfcafe/models"
	"wolfcafe/pkg/logger"
)

type AggregationServiceInterface interface {
	GetTotalSales(ctx context.Context) (*TotalSales, error)
	GetPopularItems(ctx context.Context, limit int) ([]PopularItem, error)
}

// TotalSales sums the recorded pricing of every order that reached the
// counter. Amounts are in cents as the caller supplied them.
type TotalSales struct {
	Orders    int        `json:"orders"`
	Subtotal  int        `json:"subtotal"`
	Tax       int        `json:"tax"`
	Tip       int        `json:"tip"`
	Total     int        `json:"total"`
	ItemSales []ItemSale `json:"item_sales"`
}

type ItemSale struct {
	MenuItemID   string `json:"menu_item_id"`
	ItemName     string `json:"item_name"`
	QuantitySold int    `json:"quantity_sold"`
}

type PopularItem struct {
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	Price      int    `json:"price"`
	SalesCount int    `json:"sales_count"`
}

type AggregationService struct {
	aggregationRepo repositories.AggregationRepositoryInterface
	logger          *logger.Logger
}

func NewAggregationService(aggregationRepo repositories.AggregationRepositoryInterface, log *logger.Logger) *AggregationService {
	return &AggregationService{
		aggregationRepo: aggregationRepo,
		logger:          log.WithComponent("aggregation_service"),
	}
}

// sold reports whether an order counts toward sales.
func sold(order *models.Order) bool {
	return order.Status == models.StatusFulfilled || order.Status == models.StatusPickedUp
}

func (s *AggregationService) GetTotalSales(ctx context.Context) (*TotalSales, error) {
	s.logger.Info("Calculating total sales report")

	orders, _, err := s.aggregationRepo.GetAggregationData(ctx)
	if err != nil {
		s.logger.Error("Failed to get aggregation data for sales report", "error", err)
		return nil, err
	}

	report := &TotalSales{ItemSales: make([]ItemSale, 0)}
	itemSalesMap := make(map[string]*ItemSale)

	for _, order := range orders {
		if !sold(order) {
			continue
		}
		report.Orders++
		report.Subtotal += order.Subtotal
		report.Tax += order.Tax
		report.Tip += order.Tip

		for _, line := range order.Items {
			if sale, exists := itemSalesMap[line.MenuItemID]; exists {
				sale.QuantitySold += line.Quantity
				continue
			}
			itemSalesMap[line.MenuItemID] = &ItemSale{
				MenuItemID:   line.MenuItemID,
				ItemName:     line.ItemName,
				QuantitySold: line.Quantity,
			}
		}
	}
	report.Total = report.Subtotal + report.Tax + report.Tip

	for _, sale := range itemSalesMap {
		report.ItemSales = append(report.ItemSales, *sale)
	}
	sort.Slice(report.ItemSales, func(i, j int) bool {
		return report.ItemSales[i].ItemName < report.ItemSales[j].ItemName
	})

	s.logger.Info("Total sales report calculated", "orders", report.Orders, "total", report.Total)
	return report, nil
}

// GetPopularItems ranks every menu item by units sold. A limit of zero or
// less returns the whole menu.
func (s *AggregationService) GetPopularItems(ctx context.Context, limit int) ([]PopularItem, error) {
	s.logger.Info("Calculating popular items report")

	orders, menuItems, err := s.aggregationRepo.GetAggregationData(ctx)
	if err != nil {
		s.logger.Error("Failed to get aggregation data for popular items report", "error", err)
		return nil, err
	}

	salesCount := make(map[string]int)
	for _, order := range orders {
		if !sold(order) {
			continue
		}
		for _, line := range order.Items {
			salesCount[line.MenuItemID] += line.Quantity
		}
	}

	popularItems := make([]PopularItem, 0, len(menuItems))
	for _, item := range menuItems {
		popularItems = append(popularItems, PopularItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			Price:      item.Price,
			SalesCount: salesCount[item.ID],
		})
	}

	sort.SliceStable(popularItems, func(i, j int) bool {
		if popularItems[i].SalesCount != popularItems[j].SalesCount {
			return popularItems[i].SalesCount > popularItems[j].SalesCount
		}
		return popularItems[i].Name < popularItems[j].Name
	})
	if limit > 0 && len(popularItems) > limit {
		popularItems = popularItems[:limit]
	}

	s.logger.Info("Popular items report calculated", "item_count", len(popularItems))
	return popularItems, nil
}
