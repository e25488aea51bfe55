package httpapi

import (
	"time"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
	"github.com/saraelainee/1023B-backend-novo/internal/service/analytics"
)

// Денежные поля во всех ответах — целые минорные единицы (центы/копейки).

type userView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age,omitempty"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserView(user domain.User) userView {
	return userView{
		ID:        user.ID,
		Name:      user.Name,
		Age:       user.Age,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

type productView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	PriceMinor  int64     `json:"price_minor"`
	Description string    `json:"description,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProductView(product domain.Product) productView {
	return productView{
		ID:          product.ID,
		Name:        product.Name,
		Category:    product.Category,
		PriceMinor:  product.PriceMinor,
		Description: product.Description,
		PhotoURL:    product.PhotoURL,
		CreatedAt:   product.CreatedAt,
	}
}

type cartItemView struct {
	ProductID           string `json:"product_id"`
	Name                string `json:"name"`
	Quantity            int32  `json:"quantity"`
	UnitPriceMinor      int64  `json:"unit_price_minor"`
	EffectivePriceMinor int64  `json:"effective_price_minor"`
	Category            string `json:"category,omitempty"`
	PriceChanged        bool   `json:"price_changed"`
	Unavailable         bool   `json:"unavailable"`
}

type appliedFiltersView struct {
	NameContains  string `json:"name_contains,omitempty"`
	Category      string `json:"category,omitempty"`
	MinPriceMinor int64  `json:"min_price_minor,omitempty"`
	MaxPriceMinor int64  `json:"max_price_minor,omitempty"`
	MinQuantity   int32  `json:"min_quantity,omitempty"`
	MaxQuantity   int32  `json:"max_quantity,omitempty"`
	SortBy        string `json:"sort_by"`
	SortOrder     string `json:"sort_order"`
}

type cartView struct {
	ID             string             `json:"id"`
	OwnerID        string             `json:"owner_id"`
	Items          []cartItemView     `json:"items"`
	TotalMinor     int64              `json:"total_minor"`
	UpdatedAt      time.Time          `json:"updated_at"`
	AppliedFilters appliedFiltersView `json:"applied_filters"`
}

func toCartView(cart domain.ReconciledCart) cartView {
	items := make([]cartItemView, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, cartItemView{
			ProductID:           item.ProductID,
			Name:                item.Name,
			Quantity:            item.Quantity,
			UnitPriceMinor:      item.UnitPriceMinor,
			EffectivePriceMinor: item.EffectivePriceMinor,
			Category:            item.Category,
			PriceChanged:        item.PriceChanged,
			Unavailable:         item.Unavailable,
		})
	}
	return cartView{
		ID:         cart.ID,
		OwnerID:    cart.OwnerID,
		Items:      items,
		TotalMinor: cart.TotalMinor,
		UpdatedAt:  cart.UpdatedAt,
		AppliedFilters: appliedFiltersView{
			NameContains:  cart.AppliedFilters.NameContains,
			Category:      cart.AppliedFilters.Category,
			MinPriceMinor: cart.AppliedFilters.MinPriceMinor,
			MaxPriceMinor: cart.AppliedFilters.MaxPriceMinor,
			MinQuantity:   cart.AppliedFilters.MinQuantity,
			MaxQuantity:   cart.AppliedFilters.MaxQuantity,
			SortBy:        string(cart.AppliedFilters.SortBy),
			SortOrder:     string(cart.AppliedFilters.SortOrder),
		},
	}
}

// mutationView — сокращённый ответ на мутации корзины, без сверки с каталогом.
type mutationView struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	ItemCount  int       `json:"item_count"`
	TotalMinor int64     `json:"total_minor"`
	Version    int64     `json:"version"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toMutationView(cart domain.Cart) mutationView {
	return mutationView{
		ID:         cart.ID,
		OwnerID:    cart.OwnerID,
		ItemCount:  len(cart.Items),
		TotalMinor: cart.TotalMinor,
		Version:    cart.Version,
		UpdatedAt:  cart.UpdatedAt,
	}
}

type cartSummaryView struct {
	CartID     string    `json:"cart_id"`
	OwnerID    string    `json:"owner_id"`
	TotalMinor int64     `json:"total_minor"`
	ItemCount  int       `json:"item_count"`
	UpdatedAt  time.Time `json:"updated_at"`
	OwnerName  string    `json:"owner_name,omitempty"`
	OwnerEmail string    `json:"owner_email,omitempty"`
}

type analyticsView struct {
	ActiveUserCount int               `json:"active_user_count"`
	ActiveUserIDs   []string          `json:"active_user_ids"`
	CartStatistics  cartStatsView     `json:"cart_statistics"`
	PopularItems    []popularItemView `json:"popular_items"`
	TopUsers        []topUserView     `json:"top_users"`
}

type cartStatsView struct {
	CartCount       int   `json:"cart_count"`
	TotalValueMinor int64 `json:"total_value_minor"`
	AvgValueMinor   int64 `json:"avg_value_minor"`
}

type popularItemView struct {
	ProductID         string `json:"product_id"`
	Name              string `json:"name"`
	Category          string `json:"category,omitempty"`
	InCarts           int    `json:"in_carts"`
	TotalQuantity     int64  `json:"total_quantity"`
	TotalRevenueMinor int64  `json:"total_revenue_minor"`
}

type topUserView struct {
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	TotalSpentMinor int64  `json:"total_spent_minor"`
	ItemCount       int    `json:"item_count"`
}

func toAnalyticsView(report analytics.Report) analyticsView {
	view := analyticsView{
		ActiveUserCount: report.ActiveUserCount,
		ActiveUserIDs:   report.ActiveUserIDs,
		CartStatistics: cartStatsView{
			CartCount:       report.CartStatistics.CartCount,
			TotalValueMinor: report.CartStatistics.TotalValueMinor,
			AvgValueMinor:   report.CartStatistics.AvgValueMinor,
		},
		PopularItems: make([]popularItemView, 0, len(report.PopularItems)),
		TopUsers:     make([]topUserView, 0, len(report.TopUsers)),
	}
	for _, item := range report.PopularItems {
		view.PopularItems = append(view.PopularItems, popularItemView{
			ProductID:         item.ProductID,
			Name:              item.Name,
			Category:          item.Category,
			InCarts:           item.InCarts,
			TotalQuantity:     item.TotalQuantity,
			TotalRevenueMinor: item.TotalRevenueMinor,
		})
	}
	for _, user := range report.TopUsers {
		view.TopUsers = append(view.TopUsers, topUserView{
			UserID:          user.UserID,
			Name:            user.Name,
			Email:           user.Email,
			TotalSpentMinor: user.TotalSpentMinor,
			ItemCount:       user.ItemCount,
		})
	}
	return view
}
