package app

import (
	"context"
	"testing"
)

func TestNewDependencies_Memory(t *testing.T) {
	deps, err := NewDependencies(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewDependencies: %v", err)
	}
	t.Cleanup(func() {
		if err := deps.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})

	if deps.CartRepo == nil {
		t.Error("CartRepo is nil")
	}
	if deps.AnalyticsRepo == nil {
		t.Error("AnalyticsRepo is nil")
	}
	if deps.ProductRepo == nil {
		t.Error("ProductRepo is nil")
	}
	if deps.UserRepo == nil {
		t.Error("UserRepo is nil")
	}
	if deps.OutboxRepo == nil {
		t.Error("OutboxRepo is nil")
	}
	if deps.Store() != nil {
		t.Error("expected nil postgres store for memory driver")
	}
}

func TestNewDependencies_UnknownDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = "cassandra"

	if _, err := NewDependencies(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for unknown storage driver")
	}
}
