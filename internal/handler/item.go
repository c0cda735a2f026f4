package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/repository"
)

// ItemStore is the slice of the item repository the handlers depend on.
// *repository.ItemRepo satisfies it.
type ItemStore interface {
	Create(ctx context.Context, it *model.Item) error
	GetByID(ctx context.Context, id uint64) (model.Item, error)
	List(ctx context.Context, category string) ([]model.Item, error)
	Update(ctx context.Context, it *model.Item) error
	Delete(ctx context.Context, id uint64) error
}

// ItemHandler implements the items CRUD endpoints. Reads are public; writes
// are gated to admin/vendor roles by the router.
type ItemHandler struct {
	Items ItemStore
}

func NewItemHandler(items ItemStore) *ItemHandler {
	return &ItemHandler{Items: items}
}

type itemReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	InStock     *bool    `json:"in_stock"`
}

// itemResp exposes the price as a decimal value; internally it is stored in
// cents.
type itemResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	InStock     bool      `json:"in_stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toItemResp(it model.Item) itemResp {
	return itemResp{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       float64(it.PriceCents) / 100,
		Category:    it.Category,
		InStock:     it.InStock,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

// List handles GET /v1/items with an optional ?category= filter.
func (h *ItemHandler) List(c echo.Context) error {
	category := strings.ToLower(strings.TrimSpace(c.QueryParam("category")))
	if category != "" && !model.ValidCategory(category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "unknown category"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Items.List(ctx, category)
	if err != nil {
		c.Logger().Errorf("list items: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error", "message": "could not list items"})
	}

	out := make([]itemResp, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResp(it))
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(out), "items": out})
}

// Get handles GET /v1/items/:id.
func (h *ItemHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": "item not found"})
		}
		c.Logger().Errorf("get item: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error", "message": "could not load item"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toItemResp(it)})
}

// Create handles POST /v1/items.
func (h *ItemHandler) Create(c echo.Context) error {
	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "invalid body"})
	}
	it, msg := itemFromReq(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.Create(ctx, &it); err != nil {
		c.Logger().Errorf("create item: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error", "message": "could not create item"})
	}
	created, err := h.Items.GetByID(ctx, it.ID)
	if err != nil {
		created = it
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toItemResp(created)})
}

// Update handles PUT /v1/items/:id. All fields are required, as in a full
// replacement.
func (h *ItemHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "invalid id"})
	}
	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "invalid body"})
	}
	it, msg := itemFromReq(req)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": msg})
	}
	it.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Items.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": "item not found"})
		}
		c.Logger().Errorf("load item: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error", "message": "could not load item"})
	}
	if err := h.Items.Update(ctx, &it); err != nil {
		c.Logger().Errorf("update item: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error", "message": "could not update item"})
	}
	updated, err := h.Items.GetByID(ctx, id)
	if err != nil {
		updated = it
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toItemResp(updated)})
}

// Delete handles DELETE /v1/items/:id.
func (h *ItemHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "message": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": "item not found"})
		}
		c.Logger().Errorf("delete item: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server_error", "message": "could not delete item"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "item deleted"})
}

// itemFromReq validates the request body and converts it to a model.Item.
// The second return value is a non-empty message on validation failure.
func itemFromReq(req itemReq) (model.Item, string) {
	name := strings.TrimSpace(req.Name)
	desc := strings.TrimSpace(req.Description)
	category := strings.ToLower(strings.TrimSpace(req.Category))

	switch {
	case len(name) < 2 || len(name) > 50:
		return model.Item{}, "name must be 2-50 characters"
	case !itemNameRe.MatchString(name):
		return model.Item{}, "name can only contain letters, numbers, spaces, hyphens and underscores"
	case len(desc) < 10 || len(desc) > 500:
		return model.Item{}, "description must be 10-500 characters"
	case req.Price == nil:
		return model.Item{}, "price is required"
	case !model.ValidCategory(category):
		return model.Item{}, "category must be one of: electronics, clothing, books, home, other"
	}

	price := *req.Price
	if price < 0 || price > 100000 {
		return model.Item{}, "price must be between 0 and 100000"
	}
	cents := math.Round(price * 100)
	if math.Abs(price*100-cents) > 1e-6 {
		return model.Item{}, "price can have at most 2 decimal places"
	}

	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	return model.Item{
		Name:        name,
		Description: desc,
		PriceCents:  uint64(cents),
		Category:    category,
		InStock:     inStock,
	}, ""
}

// parseID parses the :id route parameter shared by item and user routes.
func parseID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
