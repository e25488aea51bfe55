package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
)

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type removeItemRequest struct {
	ProductID string `json:"product_id"`
}

func (h *Handler) viewCart(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		respondError(c, domain.ErrMissingToken)
		return
	}

	filter, err := filterFromQuery(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	view, err := h.carts.View(c.Request.Context(), identity.UserID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartView(view))
}

func (h *Handler) clearCart(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		respondError(c, domain.ErrMissingToken)
		return
	}

	if err := h.carts.Clear(c.Request.Context(), identity.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addItem(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		respondError(c, domain.ErrMissingToken)
		return
	}

	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.ProductID == "" {
		respondBadRequest(c, "product_id is required")
		return
	}

	updated, err := h.carts.AddItem(c.Request.Context(), identity.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMutationView(updated))
}

func (h *Handler) updateQuantity(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		respondError(c, domain.ErrMissingToken)
		return
	}

	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.ProductID == "" {
		respondBadRequest(c, "product_id is required")
		return
	}

	updated, err := h.carts.UpdateQuantity(c.Request.Context(), identity.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMutationView(updated))
}

func (h *Handler) removeItem(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		respondError(c, domain.ErrMissingToken)
		return
	}

	var req removeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.ProductID == "" {
		respondBadRequest(c, "product_id is required")
		return
	}

	updated, err := h.carts.RemoveItem(c.Request.Context(), identity.UserID, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMutationView(updated))
}

// filterFromQuery разбирает параметры чтения корзины.
// Границы цен принимаются в минорных единицах.
func filterFromQuery(c *gin.Context) (domain.ItemFilter, error) {
	filter := domain.ItemFilter{
		NameContains: c.Query("name"),
		Category:     c.Query("category"),
		SortBy:       domain.SortField(c.Query("sort_by")),
		SortOrder:    domain.SortOrder(c.Query("sort_order")),
	}

	var err error
	if filter.MinPriceMinor, err = queryInt64(c, "min_price"); err != nil {
		return domain.ItemFilter{}, err
	}
	if filter.MaxPriceMinor, err = queryInt64(c, "max_price"); err != nil {
		return domain.ItemFilter{}, err
	}

	minQty, err := queryInt64(c, "min_quantity")
	if err != nil {
		return domain.ItemFilter{}, err
	}
	maxQty, err := queryInt64(c, "max_quantity")
	if err != nil {
		return domain.ItemFilter{}, err
	}
	filter.MinQuantity = int32(minQty)
	filter.MaxQuantity = int32(maxQty)

	return filter, nil
}

func queryInt64(c *gin.Context, key string) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be an integer", key)
	}
	return value, nil
}
