// Package genome implements the chromosome: a subset of catalog items with
// cached value and weight totals.
package genome

import (
	"sort"

	"github.com/DrSkyle/knapsack-ga/pkg/catalog"
)

// Individual represents one candidate item subset.
type Individual struct {
	capacity    int
	members     map[int]catalog.Item
	totalValue  int
	totalWeight int
}

// New returns an empty individual for a knapsack of the given capacity.
func New(capacity int) *Individual {
	return &Individual{
		capacity: capacity,
		members:  make(map[int]catalog.Item),
	}
}

// Add places an item inside the individual. Adding an item that is already
// present is a no-op and returns false, so totals are never double counted.
func (ind *Individual) Add(item catalog.Item) bool {
	if _, ok := ind.members[item.ID]; ok {
		return false
	}
	ind.members[item.ID] = item
	ind.totalValue += item.Value
	ind.totalWeight += item.Weight
	return true
}

// Remove takes an item out. Removing an absent item returns false.
func (ind *Individual) Remove(item catalog.Item) bool {
	held, ok := ind.members[item.ID]
	if !ok {
		return false
	}
	delete(ind.members, item.ID)
	ind.totalValue -= held.Value
	ind.totalWeight -= held.Weight
	return true
}

// Toggle flips membership of item and reports whether it is now present.
func (ind *Individual) Toggle(item catalog.Item) bool {
	if ind.Remove(item) {
		return false
	}
	ind.Add(item)
	return true
}

// Contains reports membership by item id.
func (ind *Individual) Contains(id int) bool {
	_, ok := ind.members[id]
	return ok
}

// Fitness is the total value when the weight fits the capacity, else zero.
func (ind *Individual) Fitness() int {
	if ind.totalWeight > ind.capacity {
		return 0
	}
	return ind.totalValue
}

// Feasible reports whether the individual respects the capacity.
func (ind *Individual) Feasible() bool { return ind.totalWeight <= ind.capacity }

func (ind *Individual) TotalValue() int  { return ind.totalValue }
func (ind *Individual) TotalWeight() int { return ind.totalWeight }
func (ind *Individual) Capacity() int    { return ind.capacity }
func (ind *Individual) Len() int         { return len(ind.members) }

// Clone returns an independent copy. Totals are rebuilt by replaying adds.
func (ind *Individual) Clone() *Individual {
	c := &Individual{
		capacity: ind.capacity,
		members:  make(map[int]catalog.Item, len(ind.members)),
	}
	for _, it := range ind.members {
		c.Add(it)
	}
	return c
}

// Items returns the members ordered by id.
func (ind *Individual) Items() []catalog.Item {
	out := make([]catalog.Item, 0, len(ind.members))
	for _, it := range ind.members {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Waste returns the unused capacity. Negative when overweight.
func (ind *Individual) Waste() int {
	return ind.capacity - ind.totalWeight
}

// Utilization is the fraction of capacity in use.
func (ind *Individual) Utilization() float64 {
	if ind.capacity == 0 {
		return 0
	}
	return float64(ind.totalWeight) / float64(ind.capacity)
}
