// Package budget holds the session budget: an ordered list of items
// contributed by calculators or entered by hand, with category grouping and
// totals.
package budget

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iwvelando/build-estimator/pkg/validation"
	"github.com/shopspring/decimal"
)

// Item is one line of the budget. EstimatedPrice is the line total and is
// never multiplied by Quantity again.
type Item struct {
	ID             string  `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	Description    string  `json:"description,omitempty" yaml:"description,omitempty"`
	Quantity       float64 `json:"quantity" yaml:"quantity"`
	Unit           string  `json:"unit" yaml:"unit"`
	Category       string  `json:"category" yaml:"category"`
	EstimatedPrice float64 `json:"estimatedPrice" yaml:"estimatedPrice"`
}

// ValidateItem checks an item entered by hand before it is added: a name, a
// positive quantity and a non-negative line total.
func ValidateItem(item Item) error {
	if strings.TrimSpace(item.Name) == "" {
		return validation.Invalid("name", "is required")
	}
	return validation.First(
		validation.Positive("quantity", item.Quantity),
		validation.NonNegative("estimatedPrice", item.EstimatedPrice),
	)
}

// Group is the items of one category with their subtotal.
type Group struct {
	Category string  `json:"category" yaml:"category"`
	Items    []Item  `json:"items" yaml:"items"`
	Subtotal float64 `json:"subtotal" yaml:"subtotal"`
}

// Snapshot is a read-only view of the store.
type Snapshot struct {
	Items               []Item  `json:"items" yaml:"items"`
	Groups              []Group `json:"groups" yaml:"groups"`
	TotalItems          int     `json:"totalItems" yaml:"totalItems"`
	TotalEstimatedValue float64 `json:"totalEstimatedValue" yaml:"totalEstimatedValue"`
}

// IDGenerator returns a fresh item id.
type IDGenerator func() string

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Store is an insertion-ordered budget. It is owned by a single session and
// is not safe for concurrent use; see Sessions.
type Store struct {
	items []Item
	newID IDGenerator
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends item under a fresh id and returns the stored copy. Any id on
// the argument is ignored.
func (s *Store) Add(item Item) Item {
	item.ID = s.newID()
	s.items = append(s.items, item)
	return item
}

// Remove deletes the item with the given id and reports whether it existed.
func (s *Store) Remove(id string) bool {
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every item.
func (s *Store) Clear() {
	s.items = nil
}

// List returns a copy of the items in insertion order.
func (s *Store) List() []Item {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// TotalItems returns the number of items.
func (s *Store) TotalItems() int {
	return len(s.items)
}

// TotalEstimatedValue returns the sum of the line totals.
func (s *Store) TotalEstimatedValue() float64 {
	return sum(s.items)
}

// Grouped returns the items by category. Categories appear in the order they
// were first added; items keep insertion order within their category.
func (s *Store) Grouped() []Group {
	var groups []Group
	index := make(map[string]int)
	for _, item := range s.items {
		i, ok := index[item.Category]
		if !ok {
			i = len(groups)
			index[item.Category] = i
			groups = append(groups, Group{Category: item.Category})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	for i := range groups {
		groups[i].Subtotal = sum(groups[i].Items)
	}
	return groups
}

// Snapshot returns the items, groups and totals at once.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Items:               s.List(),
		Groups:              s.Grouped(),
		TotalItems:          s.TotalItems(),
		TotalEstimatedValue: s.TotalEstimatedValue(),
	}
}

// Restore replaces the content with previously persisted items, keeping their
// ids and order.
func (s *Store) Restore(items []Item) error {
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if item.ID == "" {
			return fmt.Errorf("item %d (%s) has no id", i, item.Name)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("duplicate item id %s", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	s.items = make([]Item, len(items))
	copy(s.items, items)
	return nil
}

func sum(items []Item) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.EstimatedPrice))
	}
	value, _ := total.Float64()
	return value
}
