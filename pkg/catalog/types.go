// Package catalog holds the immutable item set a run optimizes over.
package catalog

import "fmt"

// Item is a single packable object.
type Item struct {
	ID     int `json:"id" yaml:"id"`
	Value  int `json:"value" yaml:"value"`
	Weight int `json:"weight" yaml:"weight"`
}

// String renders the item as (id, value, weight).
func (i Item) String() string {
	return fmt.Sprintf("(%d, %d, %d)", i.ID, i.Value, i.Weight)
}

// Catalog is the knapsack instance: a capacity and an ordered item list.
// It is read-only once built.
type Catalog struct {
	capacity int
	items    []Item
}

// New builds a catalog, rejecting duplicate ids and negative numbers.
func New(capacity int, items []Item) (*Catalog, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: capacity %d is negative", ErrMalformedCapacity, capacity)
	}

	c := &Catalog{
		capacity: capacity,
		items:    make([]Item, len(items)),
	}
	copy(c.items, items)

	seen := make(map[int]struct{}, len(items))
	for _, it := range c.items {
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrMalformedItem, it.ID)
		}
		if it.Value < 0 || it.Weight < 0 {
			return nil, fmt.Errorf("%w: item %d has negative value or weight", ErrMalformedItem, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return c, nil
}

// Capacity returns the knapsack capacity.
func (c *Catalog) Capacity() int { return c.capacity }

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.items) }

// At returns the item at position i in catalog order.
func (c *Catalog) At(i int) Item { return c.items[i] }

// Items returns a copy of the items in catalog order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// TotalWeight sums the weight of every item.
func (c *Catalog) TotalWeight() int {
	total := 0
	for _, it := range c.items {
		total += it.Weight
	}
	return total
}
