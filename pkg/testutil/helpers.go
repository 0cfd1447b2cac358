// Package testutil provides common utility functions for testing.
package testutil

import (
	"fmt"
	"sync"

	"github.com/iwvelando/build-estimator/internal/budget"
)

// FindGroup finds a budget group by category in the groups slice.
// Returns a pointer to the group if found, nil otherwise.
func FindGroup(groups []budget.Group, category string) *budget.Group {
	for i := range groups {
		if groups[i].Category == category {
			return &groups[i]
		}
	}
	return nil
}

// SequentialIDs returns a generator yielding prefix-1, prefix-2, ... so that
// budget ids are predictable in tests.
func SequentialIDs(prefix string) budget.IDGenerator {
	var mu sync.Mutex
	next := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		next++
		return fmt.Sprintf("%s-%d", prefix, next)
	}
}
