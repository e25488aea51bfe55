package memory

import (
	"errors"
	"testing"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
)

func seedCatalog(t *testing.T, repo domain.ProductRepository) {
	t.Helper()
	products := []domain.Product{
		{ID: "p1", Name: "Mechanical Keyboard", Category: "peripherals", PriceMinor: 15000},
		{ID: "p2", Name: "Gaming Mouse", Category: "peripherals", PriceMinor: 8000},
		{ID: "p3", Name: "Espresso Beans", Category: "food", PriceMinor: 2500},
	}
	for _, p := range products {
		if err := repo.Insert(p); err != nil {
			t.Fatalf("seed product %s: %v", p.ID, err)
		}
	}
}

func TestProductRepositoryFindByID(t *testing.T) {
	repo := NewProductRepository()
	seedCatalog(t, repo)

	product, err := repo.FindByID("p2")
	if err != nil || product.Name != "Gaming Mouse" {
		t.Fatalf("FindByID = %+v, %v", product, err)
	}
	if _, err := repo.FindByID("missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("FindByID(missing) = %v, want ErrProductNotFound", err)
	}
}

func TestProductRepositoryListFilters(t *testing.T) {
	repo := NewProductRepository()
	seedCatalog(t, repo)

	tests := []struct {
		name    string
		filter  domain.ProductFilter
		wantIDs []string
	}{
		{name: "no filter sorted by name", filter: domain.ProductFilter{}, wantIDs: []string{"p3", "p2", "p1"}},
		{name: "name substring", filter: domain.ProductFilter{NameContains: "mouse"}, wantIDs: []string{"p2"}},
		{name: "category substring", filter: domain.ProductFilter{CategoryContains: "PERIPH"}, wantIDs: []string{"p2", "p1"}},
		{name: "no match", filter: domain.ProductFilter{NameContains: "tv"}, wantIDs: []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			products, err := repo.List(tc.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(products) != len(tc.wantIDs) {
				t.Fatalf("List returned %d products, want %d", len(products), len(tc.wantIDs))
			}
			for i, id := range tc.wantIDs {
				if products[i].ID != id {
					t.Fatalf("List[%d] = %s, want %s", i, products[i].ID, id)
				}
			}
		})
	}
}

func TestProductRepositoryUpdateDelete(t *testing.T) {
	repo := NewProductRepository()
	seedCatalog(t, repo)

	if err := repo.Update(domain.Product{ID: "p1", Name: "Keyboard v2", Category: "peripherals", PriceMinor: 16000}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, _ := repo.FindByID("p1")
	if updated.PriceMinor != 16000 {
		t.Fatalf("PriceMinor = %d, want 16000", updated.PriceMinor)
	}

	if err := repo.Update(domain.Product{ID: "missing"}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("Update(missing) = %v, want ErrProductNotFound", err)
	}

	if err := repo.Delete("p3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID("p3"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("deleted product still found")
	}
	if err := repo.Delete("p3"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("second Delete = %v, want ErrProductNotFound", err)
	}
}
