package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
	"github.com/saraelainee/1023B-backend-novo/internal/service/product"
	"github.com/saraelainee/1023B-backend-novo/internal/service/user"
)

type updateUserRequest struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type productRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	PriceMinor  int64  `json:"price_minor"`
	Description string `json:"description"`
	PhotoURL    string `json:"photo_url"`
}

func (h *Handler) adminListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) adminUpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updated, err := h.users.Update(c.Request.Context(), c.Param("id"), user.UpdateInput{
		Name:  req.Name,
		Age:   req.Age,
		Email: req.Email,
		Role:  domain.Role(req.Role),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserView(updated))
}

func (h *Handler) adminDeleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) adminCreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	created, err := h.products.Create(c.Request.Context(), product.Input{
		Name:        req.Name,
		Category:    req.Category,
		PriceMinor:  req.PriceMinor,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductView(created))
}

func (h *Handler) adminUpdateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updated, err := h.products.Update(c.Request.Context(), c.Param("id"), product.Input{
		Name:        req.Name,
		Category:    req.Category,
		PriceMinor:  req.PriceMinor,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductView(updated))
}

func (h *Handler) adminDeleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) adminListCarts(c *gin.Context) {
	summaries, err := h.analytics.ListCarts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]cartSummaryView, 0, len(summaries))
	for _, s := range summaries {
		views = append(views, cartSummaryView{
			CartID:     s.CartID,
			OwnerID:    s.OwnerID,
			TotalMinor: s.TotalMinor,
			ItemCount:  s.ItemCount,
			UpdatedAt:  s.UpdatedAt,
			OwnerName:  s.OwnerName,
			OwnerEmail: s.OwnerEmail,
		})
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) adminDeleteCart(c *gin.Context) {
	if err := h.analytics.DeleteCart(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) adminAnalytics(c *gin.Context) {
	report, err := h.analytics.ComputeAnalytics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAnalyticsView(report))
}
