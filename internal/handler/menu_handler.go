package handler

import (
	"context"
	"io"

	"wolfcafe/internal/service"
	"wolfcafe/models"
	"wolfcafe/pkg/logger"
)

type MenuHandler struct {
	menuService service.MenuServiceInterface
	w           *writer
	in          io.Reader
	logger      *logger.Logger
}

func NewMenuHandler(menuService service.MenuServiceInterface, w *writer, in io.Reader, log *logger.Logger) *MenuHandler {
	return &MenuHandler{
		menuService: menuService,
		w:           w,
		in:          in,
		logger:      log.WithComponent("menu_handler"),
	}
}

// Run handles menu, menu show, menu add, menu update and menu delete.
// add and update read a JSON menu item from standard input.
func (h *MenuHandler) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		items, err := h.menuService.ListAll(ctx)
		if err != nil {
			return err
		}
		return h.w.JSON(items)
	}

	switch args[0] {
	case "show":
		if err := requireArgs(args[1:], 1, "menu show <name>"); err != nil {
			return err
		}
		item, err := h.menuService.GetItemByName(ctx, args[1])
		if err != nil {
			return err
		}
		if item == nil {
			return &models.NotFoundError{Entity: "menu item", Key: args[1]}
		}
		return h.w.JSON(item)

	case "add":
		if err := requireArgs(args[1:], 0, "menu add < item.json"); err != nil {
			return err
		}
		var req service.MenuItemRequest
		if err := decodeBody(h.in, &req); err != nil {
			return err
		}
		item, err := h.menuService.AddItem(ctx, req)
		if err != nil {
			return err
		}
		return h.w.JSON(item)

	case "update":
		if err := requireArgs(args[1:], 1, "menu update <id> < item.json"); err != nil {
			return err
		}
		var req service.MenuItemRequest
		if err := decodeBody(h.in, &req); err != nil {
			return err
		}
		item, err := h.menuService.UpdateItem(ctx, args[1], req)
		if err != nil {
			return err
		}
		return h.w.JSON(item)

	case "delete":
		if err := requireArgs(args[1:], 1, "menu delete <id>"); err != nil {
			return err
		}
		if err := h.menuService.DeleteItem(ctx, args[1]); err != nil {
			return err
		}
		return h.w.JSON(map[string]string{"menu_item_id": args[1], "message": "Menu item deleted"})
	}
	return usageError("unknown menu command %q", args[0])
}
