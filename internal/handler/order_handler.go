package handler

import (
	"context"
	"io"
	"time"

	"wolfcafe/internal/service"
	"wolfcafe/pkg/logger"
)

type OrderHandler struct {
	orderService service.OrderServiceInterface
	w            *writer
	in           io.Reader
	logger       *logger.Logger
	now          func() time.Time
}

func NewOrderHandler(orderService service.OrderServiceInterface, w *writer, in io.Reader, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		w:            w,
		in:           in,
		logger:       log.WithComponent("order_handler"),
		now:          time.Now,
	}
}

// List handles orders, orders today, orders on <date> and orders customer <id>.
func (h *OrderHandler) List(ctx context.Context, args []string) error {
	if len(args) == 0 {
		orders, err := h.orderService.GetAllOrders(ctx)
		if err != nil {
			return err
		}
		return h.w.JSON(orders)
	}

	switch args[0] {
	case "today":
		if err := requireArgs(args[1:], 0, "orders today"); err != nil {
			return err
		}
		orders, err := h.orderService.ListOrdersCreatedOn(ctx, h.now())
		if err != nil {
			return err
		}
		return h.w.JSON(orders)

	case "on":
		if err := requireArgs(args[1:], 1, "orders on <YYYY-MM-DD>"); err != nil {
			return err
		}
		date, err := time.ParseInLocation(time.DateOnly, args[1], time.Local)
		if err != nil {
			return usageError("date must be YYYY-MM-DD, got %q", args[1])
		}
		orders, err := h.orderService.ListOrdersCreatedOn(ctx, date)
		if err != nil {
			return err
		}
		return h.w.JSON(orders)

	case "customer":
		if err := requireArgs(args[1:], 1, "orders customer <id>"); err != nil {
			return err
		}
		orders, err := h.orderService.ListOrdersByCustomer(ctx, args[1])
		if err != nil {
			return err
		}
		return h.w.JSON(orders)
	}
	return usageError("unknown orders filter %q", args[0])
}

// Run handles order <id>, order create, order status, order demand and
// order delete. create reads a JSON order from standard input.
func (h *OrderHandler) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("order <id> | order <create|status|demand|delete> ...")
	}

	switch args[0] {
	case "create":
		if err := requireArgs(args[1:], 0, "order create < order.json"); err != nil {
			return err
		}
		var req service.CreateOrderRequest
		if err := decodeBody(h.in, &req); err != nil {
			return err
		}
		order, err := h.orderService.CreateOrder(ctx, req)
		if err != nil {
			return err
		}
		return h.w.JSON(order)

	case "status":
		if err := requireArgs(args[1:], 2, "order status <id> <status>"); err != nil {
			return err
		}
		order, err := h.orderService.UpdateStatus(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		return h.w.JSON(order)

	case "demand":
		if err := requireArgs(args[1:], 1, "order demand <id>"); err != nil {
			return err
		}
		demand, err := h.orderService.Demand(ctx, args[1])
		if err != nil {
			return err
		}
		return h.w.JSON(demand)

	case "delete":
		if err := requireArgs(args[1:], 1, "order delete <id>"); err != nil {
			return err
		}
		if err := h.orderService.DeleteOrder(ctx, args[1]); err != nil {
			return err
		}
		return h.w.JSON(map[string]string{"order_id": args[1], "message": "Order deleted"})
	}

	if err := requireArgs(args, 1, "order <id>"); err != nil {
		return err
	}
	order, err := h.orderService.GetOrderByID(ctx, args[0])
	if err != nil {
		return err
	}
	return h.w.JSON(order)
}
