package httpapi

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
	"github.com/saraelainee/1023B-backend-novo/internal/service/analytics"
	"github.com/saraelainee/1023B-backend-novo/internal/service/auth"
	"github.com/saraelainee/1023B-backend-novo/internal/service/cart"
	"github.com/saraelainee/1023B-backend-novo/internal/service/product"
	"github.com/saraelainee/1023B-backend-novo/internal/service/user"
)

// Handler связывает HTTP-маршруты с сервисами.
type Handler struct {
	gate      auth.Service
	users     user.Service
	products  product.Service
	carts     cart.Service
	analytics analytics.Service
	logger    *log.Entry
}

// NewHandler собирает HTTP-обработчик поверх сервисного слоя.
func NewHandler(
	gate auth.Service,
	users user.Service,
	products product.Service,
	carts cart.Service,
	analyticsService analytics.Service,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "http_api")
	}
	return &Handler{
		gate:      gate,
		users:     users,
		products:  products,
		carts:     carts,
		analytics: analyticsService,
		logger:    logger,
	}
}

// Router строит gin-движок с тремя группами маршрутов:
// публичной, пользовательской и административной.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/register", h.register)
	router.POST("/login", h.login)
	router.GET("/products", h.listProducts)

	authed := router.Group("/", requireAuth(h.gate))
	{
		authed.GET("/cart", h.viewCart)
		authed.DELETE("/cart", h.clearCart)
		authed.POST("/cart/items", h.addItem)
		authed.PUT("/cart/items", h.updateQuantity)
		authed.POST("/cart/items/remove", h.removeItem)
	}

	admin := router.Group("/admin", requireAuth(h.gate), requireRoles(h.gate, domain.RoleAdmin))
	{
		admin.GET("/users", h.adminListUsers)
		admin.PUT("/users/:id", h.adminUpdateUser)
		admin.DELETE("/users/:id", h.adminDeleteUser)

		admin.POST("/products", h.adminCreateProduct)
		admin.PUT("/products/:id", h.adminUpdateProduct)
		admin.DELETE("/products/:id", h.adminDeleteProduct)

		admin.GET("/carts", h.adminListCarts)
		admin.DELETE("/carts/:id", h.adminDeleteCart)

		admin.GET("/analytics", h.adminAnalytics)
	}

	return router
}
