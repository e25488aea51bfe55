package domain

import "time"

// Product — товар каталога. Ядро корзины каталог только читает.
type Product struct {
	ID          string
	Name        string
	Category    string
	PriceMinor  int64
	Description string
	PhotoURL    string
	CreatedAt   time.Time
}

// ProductFilter — фильтр публичного списка товаров.
// Подстроки сравниваются без учёта регистра.
type ProductFilter struct {
	NameContains     string
	CategoryContains string
}

// Validate проверяет обязательные поля товара перед записью в каталог.
func (p *Product) Validate() []error {
	var issues []error
	if p.Name == "" {
		issues = append(issues, ErrProductNameRequired)
	}
	if p.PriceMinor <= 0 {
		issues = append(issues, ErrProductPriceInvalid)
	}
	if p.Category == "" {
		issues = append(issues, ErrProductCategoryRequired)
	}
	return issues
}
