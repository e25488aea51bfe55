package domain

import (
	"testing"
	"time"
)

func TestItemsTotalMinor(t *testing.T) {
	tests := []struct {
		name  string
		items []CartItem
		want  int64
	}{
		{name: "empty", items: nil, want: 0},
		{
			name: "single item",
			items: []CartItem{
				{ProductID: "p1", Quantity: 2, UnitPriceMinor: 1000},
			},
			want: 2000,
		},
		{
			name: "multiple items",
			items: []CartItem{
				{ProductID: "p1", Quantity: 2, UnitPriceMinor: 1000},
				{ProductID: "p2", Quantity: 3, UnitPriceMinor: 550},
			},
			want: 3650,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ItemsTotalMinor(tc.items); got != tc.want {
				t.Fatalf("ItemsTotalMinor() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCartRecomputeTotal(t *testing.T) {
	cart := Cart{
		OwnerID: "owner-1",
		Items: []CartItem{
			{ProductID: "p1", Quantity: 5, UnitPriceMinor: 1000},
		},
		// Заведомо неверное значение: производное поле никогда не доверяется.
		TotalMinor: 1,
	}

	cart.RecomputeTotal()
	if cart.TotalMinor != 5000 {
		t.Fatalf("TotalMinor = %d, want 5000", cart.TotalMinor)
	}

	cart.Items = nil
	cart.RecomputeTotal()
	if cart.TotalMinor != 0 {
		t.Fatalf("TotalMinor after clearing items = %d, want 0", cart.TotalMinor)
	}
}

func TestCartFindItem(t *testing.T) {
	cart := Cart{
		Items: []CartItem{
			{ProductID: "p1", AddedAt: time.Now()},
			{ProductID: "p2"},
		},
	}

	if idx := cart.FindItem("p2"); idx != 1 {
		t.Fatalf("FindItem(p2) = %d, want 1", idx)
	}
	if idx := cart.FindItem("missing"); idx != -1 {
		t.Fatalf("FindItem(missing) = %d, want -1", idx)
	}
}
