package handler

import (
	"context"

	"wolfcafe/internal/service"
	"wolfcafe/pkg/logger"
)

type AggregationHandler struct {
	aggregationService service.AggregationServiceInterface
	w                  *writer
	logger             *logger.Logger
}

func NewAggregationHandler(s service.AggregationServiceInterface, w *writer, log *logger.Logger) *AggregationHandler {
	return &AggregationHandler{
		aggregationService: s,
		w:                  w,
		logger:             log.WithComponent("aggregation_handler"),
	}
}

// Run handles report sales and report popular [limit].
func (h *AggregationHandler) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("report <sales|popular [limit]>")
	}

	switch args[0] {
	case "sales":
		if err := requireArgs(args[1:], 0, "report sales"); err != nil {
			return err
		}
		report, err := h.aggregationService.GetTotalSales(ctx)
		if err != nil {
			return err
		}
		return h.w.JSON(report)

	case "popular":
		limit, err := parseLimit(args[1:])
		if err != nil {
			return err
		}
		items, err := h.aggregationService.GetPopularItems(ctx, limit)
		if err != nil {
			return err
		}
		return h.w.JSON(items)
	}
	return usageError("unknown report %q", args[0])
}
