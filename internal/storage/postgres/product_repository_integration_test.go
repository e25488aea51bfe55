package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
)

func seedProductsForIntegrationTest(t *testing.T, repo domain.ProductRepository) {
	t.Helper()

	now := time.Now().UTC().Round(time.Microsecond)
	products := []domain.Product{
		{ID: "product-kb", Name: "Клавиатура механическая", Category: "периферия", PriceMinor: 450000, CreatedAt: now},
		{ID: "product-mouse", Name: "Мышь игровая", Category: "периферия", PriceMinor: 250000, CreatedAt: now},
		{ID: "product-desk", Name: "Стол офисный", Category: "мебель", PriceMinor: 1200000, CreatedAt: now},
	}
	for _, p := range products {
		if err := repo.Insert(p); err != nil {
			t.Fatalf("insert product %q: %v", p.ID, err)
		}
	}
}

func TestProductRepository_PostgresCRUD(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	product := domain.Product{
		ID:          "product-1",
		Name:        "Монитор",
		Category:    "периферия",
		PriceMinor:  1500000,
		Description: "27 дюймов",
		PhotoURL:    "https://example.com/monitor.jpg",
		CreatedAt:   now,
	}

	if err := repo.Insert(product); err != nil {
		t.Fatalf("insert product: %v", err)
	}

	got, err := repo.FindByID("product-1")
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if got.Name != product.Name || got.PriceMinor != product.PriceMinor {
		t.Fatalf("unexpected product payload: %+v", got)
	}

	got.PriceMinor = 1400000
	got.Description = "27 дюймов, IPS"
	if err := repo.Update(got); err != nil {
		t.Fatalf("update product: %v", err)
	}
	updated, err := repo.FindByID("product-1")
	if err != nil {
		t.Fatalf("find updated product: %v", err)
	}
	if updated.PriceMinor != 1400000 || updated.Description != "27 дюймов, IPS" {
		t.Fatalf("unexpected product after update: %+v", updated)
	}

	if err := repo.Delete("product-1"); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if _, err := repo.FindByID("product-1"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound after delete, got %v", err)
	}
	if err := repo.Delete("product-1"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound on repeated delete, got %v", err)
	}
	if err := repo.Update(product); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound on update missing, got %v", err)
	}
}

func TestProductRepository_PostgresListFilters(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)
	seedProductsForIntegrationTest(t, repo)

	all, err := repo.List(domain.ProductFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 products, got %d", len(all))
	}

	byName, err := repo.List(domain.ProductFilter{NameContains: "МЫШЬ"})
	if err != nil {
		t.Fatalf("list by name: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != "product-mouse" {
		t.Fatalf("unexpected name filter result: %+v", byName)
	}

	byCategory, err := repo.List(domain.ProductFilter{CategoryContains: "перифер"})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(byCategory) != 2 {
		t.Fatalf("expected 2 products in category, got %d", len(byCategory))
	}

	none, err := repo.List(domain.ProductFilter{NameContains: "ноутбук"})
	if err != nil {
		t.Fatalf("list with no matches: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty result, got %+v", none)
	}
}
