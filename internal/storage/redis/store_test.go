package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/build-estimator/internal/budget"
)

// openTestStore connects to REDIS_ADDR and skips the test when it is unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store, err := Open(ctx, Options{Address: addr, KeyPrefix: "build-estimator-test:" + uuid.NewString() + ":", TTL: time.Minute})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	items := []budget.Item{
		{ID: "b", Name: "Camera", Quantity: 8, Unit: "unit", Category: "security", EstimatedPrice: 1440},
		{ID: "a", Name: "Recorder", Quantity: 1, Unit: "unit", Category: "security", EstimatedPrice: 480},
	}
	if err := store.Save(ctx, "s1", items); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != 2 || loaded[0] != items[0] || loaded[1] != items[1] {
		t.Errorf("Load() = %+v, expected %+v", loaded, items)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "s1"); !errors.Is(err, budget.ErrNotFound) {
		t.Errorf("Load() after Delete error = %v, expected ErrNotFound", err)
	}
}

func TestSaveEmptyBudget(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if err := store.Save(ctx, "empty", nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := store.Load(ctx, "empty")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected no items, got %+v", loaded)
	}
}

func TestOpenRequiresAddress(t *testing.T) {
	if _, err := Open(context.Background(), Options{}); err == nil {
		t.Error("expected error for missing address")
	}
}
