package budget_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/iwvelando/build-estimator/internal/budget"
	"github.com/iwvelando/build-estimator/pkg/testutil"
	"go.uber.org/zap"
)

type failingRepository struct {
	*budget.MemoryRepository
	failSave bool
}

func (r *failingRepository) Save(ctx context.Context, sessionID string, items []budget.Item) error {
	if r.failSave {
		return errors.New("disk full")
	}
	return r.MemoryRepository.Save(ctx, sessionID, items)
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	sessions := budget.NewSessions(nil, zap.NewNop(), budget.WithIDGenerator(testutil.SequentialIDs("item")))

	err := sessions.Update(ctx, "alice", func(s *budget.Store) error {
		s.Add(budget.Item{Name: "Paint", Category: "painting", EstimatedPrice: 350})
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	var aliceItems, bobItems int
	_ = sessions.View(ctx, "alice", func(s *budget.Store) error { aliceItems = s.TotalItems(); return nil })
	_ = sessions.View(ctx, "bob", func(s *budget.Store) error { bobItems = s.TotalItems(); return nil })
	if aliceItems != 1 || bobItems != 0 {
		t.Errorf("alice has %d items, bob %d; expected 1 and 0", aliceItems, bobItems)
	}
}

func TestSessionsRestoreFromRepository(t *testing.T) {
	ctx := context.Background()
	repo := budget.NewMemoryRepository()

	first := budget.NewSessions(repo, nil)
	err := first.Update(ctx, "s1", func(s *budget.Store) error {
		s.Add(budget.Item{Name: "Tiles", Category: "flooring", EstimatedPrice: 600})
		s.Add(budget.Item{Name: "Mortar", Category: "flooring", EstimatedPrice: 100})
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	second := budget.NewSessions(repo, nil)
	var snapshot budget.Snapshot
	err = second.View(ctx, "s1", func(s *budget.Store) error {
		snapshot = s.Snapshot()
		return nil
	})
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if snapshot.TotalItems != 2 || snapshot.TotalEstimatedValue != 700 || snapshot.Items[0].Name != "Tiles" {
		t.Errorf("unexpected restored snapshot: %+v", snapshot)
	}
}

func TestSessionsRollBackOnFailure(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepository{MemoryRepository: budget.NewMemoryRepository()}
	sessions := budget.NewSessions(repo, nil)

	_ = sessions.Update(ctx, "s1", func(s *budget.Store) error {
		s.Add(budget.Item{Name: "Solar panel", Category: "energy", EstimatedPrice: 1760})
		return nil
	})

	repo.failSave = true
	err := sessions.Update(ctx, "s1", func(s *budget.Store) error {
		s.Clear()
		return nil
	})
	if err == nil {
		t.Fatal("expected save error")
	}

	fnErr := errors.New("bad input")
	err = sessions.Update(ctx, "s1", func(s *budget.Store) error {
		s.Add(budget.Item{Name: "Inverter", Category: "energy", EstimatedPrice: 4000})
		return fnErr
	})
	if !errors.Is(err, fnErr) {
		t.Fatalf("Update() error = %v, expected %v", err, fnErr)
	}

	var total int
	_ = sessions.View(ctx, "s1", func(s *budget.Store) error { total = s.TotalItems(); return nil })
	if total != 1 {
		t.Errorf("store has %d items after failed updates, expected 1", total)
	}
}

func TestSessionsForget(t *testing.T) {
	ctx := context.Background()
	repo := budget.NewMemoryRepository()
	sessions := budget.NewSessions(repo, nil)

	_ = sessions.Update(ctx, "s1", func(s *budget.Store) error {
		s.Add(budget.Item{Name: "Beer", Category: "events", EstimatedPrice: 344})
		return nil
	})
	if err := sessions.Forget(ctx, "s1"); err != nil {
		t.Fatalf("Forget() error = %v", err)
	}
	if _, err := repo.Load(ctx, "s1"); !errors.Is(err, budget.ErrNotFound) {
		t.Errorf("Load() after Forget error = %v, expected ErrNotFound", err)
	}
}

func TestSessionsConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	sessions := budget.NewSessions(nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sessions.Update(ctx, "shared", func(s *budget.Store) error {
				s.Add(budget.Item{Name: "Block", Category: "masonry", EstimatedPrice: 3.5})
				return nil
			})
		}()
	}
	wg.Wait()

	var total int
	var value float64
	_ = sessions.View(ctx, "shared", func(s *budget.Store) error {
		total = s.TotalItems()
		value = s.TotalEstimatedValue()
		return nil
	})
	if total != 50 || value != 175 {
		t.Errorf("got %d items worth %v, expected 50 worth 175", total, value)
	}
}
