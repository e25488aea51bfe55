package domain

import "time"

// CartItem представляет одну позицию корзины.
type CartItem struct {
	// ProductID — внешний идентификатор товара в каталоге; сам товар может быть удалён.
	ProductID string
	// Name — снимок названия товара на момент добавления.
	Name string
	// Quantity — количество единиц, всегда > 0 (нулевое количество означает удаление позиции).
	Quantity int32
	// UnitPriceMinor — цена за единицу на момент добавления, в минимальных денежных единицах.
	UnitPriceMinor int64
	// AddedAt фиксирует момент добавления позиции.
	AddedAt time.Time
}

// Cart агрегирует корзину одного пользователя.
// Инвариант: Items не содержит двух позиций с одинаковым ProductID,
// TotalMinor всегда пересчитывается из Items.
type Cart struct {
	ID         string
	OwnerID    string
	Items      []CartItem
	TotalMinor int64
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ItemsTotalMinor считает сумму корзины из позиций по ценам на момент добавления.
func ItemsTotalMinor(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.UnitPriceMinor * int64(item.Quantity)
	}
	return total
}

// RecomputeTotal пересчитывает производное поле TotalMinor.
// Вызывается после каждой мутации Items.
func (c *Cart) RecomputeTotal() {
	c.TotalMinor = ItemsTotalMinor(c.Items)
}

// FindItem возвращает индекс позиции с данным ProductID или -1.
func (c *Cart) FindItem(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// ReconciledItem — позиция корзины после сверки с каталогом.
type ReconciledItem struct {
	CartItem
	// EffectivePriceMinor — цена, участвующая в итоге: актуальная каталожная,
	// если товар доступен, иначе 0.
	EffectivePriceMinor int64
	// Category — актуальная категория из каталога; пустая для недоступных товаров.
	Category string
	// PriceChanged выставляется, когда каталожная цена разошлась с UnitPriceMinor.
	PriceChanged bool
	// Unavailable выставляется, когда товара больше нет в каталоге.
	// Позиция при этом остаётся в корзине и вносит 0 в итог.
	Unavailable bool
}

// ReconciledCart — результат чтения корзины со сверкой цен.
type ReconciledCart struct {
	ID         string
	OwnerID    string
	Items      []ReconciledItem
	TotalMinor int64
	UpdatedAt  time.Time
	// AppliedFilters — фактически применённые фильтры, возвращаются клиенту как есть.
	AppliedFilters ItemFilter
}

// CartOwnerSummary описывает корзину в административном списке вместе с владельцем.
type CartOwnerSummary struct {
	CartID     string
	OwnerID    string
	TotalMinor int64
	ItemCount  int
	UpdatedAt  time.Time
	// OwnerName/OwnerEmail пустые, если пользователь был удалён (left join).
	OwnerName  string
	OwnerEmail string
}
