package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
	"github.com/saraelainee/1023B-backend-novo/internal/service/user"
)

type registerRequest struct {
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	created, err := h.users.Register(c.Request.Context(), user.RegisterInput{
		Name:     req.Name,
		Age:      req.Age,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserView(created))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondBadRequest(c, "email and password are required")
		return
	}

	account, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.gate.IssueToken(account)
	if err != nil {
		h.logger.WithError(err).Error("failed to issue token")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token, User: toUserView(account)})
}

func (h *Handler) listProducts(c *gin.Context) {
	filter := domain.ProductFilter{
		NameContains:     c.Query("name"),
		CategoryContains: c.Query("category"),
	}

	products, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	c.JSON(http.StatusOK, views)
}
