package domain

import (
	"sort"
	"strings"
)

// SortField перечисляет поддерживаемые поля сортировки позиций корзины.
type SortField string

const (
	SortByName     SortField = "name"
	SortByPrice    SortField = "price"
	SortByQuantity SortField = "quantity"
)

// SortOrder задаёт направление сортировки.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ItemFilter — закрытый набор фильтров для чтения корзины.
// Нулевые значения означают "не фильтровать"; валидируется один раз на границе.
type ItemFilter struct {
	// NameContains — подстрока названия, без учёта регистра.
	NameContains string
	// Category — подстрока актуальной каталожной категории, без учёта регистра.
	Category string
	// Границы эффективной цены, в минимальных единицах. 0 = не задано.
	MinPriceMinor int64
	MaxPriceMinor int64
	// Границы количества. 0 = не задано.
	MinQuantity int32
	MaxQuantity int32
	SortBy      SortField
	SortOrder   SortOrder
}

// Normalize заполняет значения по умолчанию: сортировка по имени, по возрастанию.
func (f ItemFilter) Normalize() ItemFilter {
	if f.SortBy == "" {
		f.SortBy = SortByName
	}
	if f.SortOrder == "" {
		f.SortOrder = SortAsc
	}
	return f
}

// Validate проверяет, что поля фильтра относятся к поддерживаемым значениям.
func (f ItemFilter) Validate() error {
	switch f.SortBy {
	case SortByName, SortByPrice, SortByQuantity:
	default:
		return ErrFilterSortField
	}
	switch f.SortOrder {
	case SortAsc, SortDesc:
	default:
		return ErrFilterSortOrder
	}
	if f.MinPriceMinor < 0 || f.MaxPriceMinor < 0 || f.MinQuantity < 0 || f.MaxQuantity < 0 {
		return ErrFilterNegativeBound
	}
	return nil
}

// Matches проверяет сверенную позицию против фильтра.
// Фильтр категории сверяется с актуальной каталожной категорией, поэтому
// недоступные позиции проходят его только при пустом фильтре.
func (f ItemFilter) Matches(item ReconciledItem) bool {
	if f.NameContains != "" && !containsFold(item.Name, f.NameContains) {
		return false
	}
	if f.Category != "" && !containsFold(item.Category, f.Category) {
		return false
	}
	if f.MinPriceMinor > 0 && item.EffectivePriceMinor < f.MinPriceMinor {
		return false
	}
	if f.MaxPriceMinor > 0 && item.EffectivePriceMinor > f.MaxPriceMinor {
		return false
	}
	if f.MinQuantity > 0 && item.Quantity < f.MinQuantity {
		return false
	}
	if f.MaxQuantity > 0 && item.Quantity > f.MaxQuantity {
		return false
	}
	return true
}

// SortItems упорядочивает позиции по полю и направлению фильтра.
// Вторичный ключ — ProductID, чтобы порядок был детерминированным.
func (f ItemFilter) SortItems(items []ReconciledItem) {
	less := func(a, b ReconciledItem) bool {
		switch f.SortBy {
		case SortByPrice:
			if a.EffectivePriceMinor != b.EffectivePriceMinor {
				return a.EffectivePriceMinor < b.EffectivePriceMinor
			}
		case SortByQuantity:
			if a.Quantity != b.Quantity {
				return a.Quantity < b.Quantity
			}
		default:
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an != bn {
				return an < bn
			}
		}
		return a.ProductID < b.ProductID
	}

	sort.SliceStable(items, func(i, j int) bool {
		if f.SortOrder == SortDesc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
