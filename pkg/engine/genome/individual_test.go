package genome

import (
	"math/rand/v2"
	"testing"

	"github.com/DrSkyle/knapsack-ga/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testItems = []catalog.Item{
	{ID: 1, Value: 1, Weight: 2},
	{ID: 2, Value: 3, Weight: 4},
	{ID: 3, Value: 5, Weight: 6},
	{ID: 4, Value: 7, Weight: 1},
}

func sums(ind *Individual) (value, weight int) {
	for _, it := range ind.Items() {
		value += it.Value
		weight += it.Weight
	}
	return value, weight
}

func TestIndividual_AggregatesFollowMembership(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	ind := New(10)

	for step := 0; step < 2000; step++ {
		it := testItems[r.IntN(len(testItems))]
		switch r.IntN(3) {
		case 0:
			ind.Add(it)
		case 1:
			ind.Remove(it)
		default:
			ind.Toggle(it)
		}

		value, weight := sums(ind)
		require.Equal(t, value, ind.TotalValue(), "step %d", step)
		require.Equal(t, weight, ind.TotalWeight(), "step %d", step)
	}
}

func TestIndividual_DuplicateAddIsIgnored(t *testing.T) {
	ind := New(10)
	assert.True(t, ind.Add(testItems[0]))
	assert.False(t, ind.Add(testItems[0]))

	assert.Equal(t, 1, ind.TotalValue())
	assert.Equal(t, 2, ind.TotalWeight())
	assert.Equal(t, 1, ind.Len())
}

func TestIndividual_RemoveAbsentIsNoop(t *testing.T) {
	ind := New(10)
	ind.Add(testItems[1])

	assert.False(t, ind.Remove(testItems[0]))
	assert.Equal(t, 3, ind.TotalValue())
	assert.Equal(t, 4, ind.TotalWeight())
}

func TestIndividual_Toggle(t *testing.T) {
	ind := New(10)
	assert.True(t, ind.Toggle(testItems[2]))
	assert.True(t, ind.Contains(3))
	assert.False(t, ind.Toggle(testItems[2]))
	assert.False(t, ind.Contains(3))
	assert.Equal(t, 0, ind.TotalWeight())
}

func TestIndividual_Fitness(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		items    []catalog.Item
		want     int
	}{
		{name: "empty", capacity: 10, want: 0},
		{name: "under capacity", capacity: 10, items: testItems[:2], want: 4},
		{name: "exactly at capacity", capacity: 6, items: testItems[:2], want: 4},
		{name: "over capacity", capacity: 5, items: testItems[:2], want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ind := New(tc.capacity)
			for _, it := range tc.items {
				ind.Add(it)
			}
			assert.Equal(t, tc.want, ind.Fitness())
			assert.Equal(t, ind.TotalWeight() <= tc.capacity, ind.Feasible())
		})
	}
}

func TestIndividual_CloneIsIndependent(t *testing.T) {
	orig := New(10)
	orig.Add(testItems[0])
	orig.Add(testItems[3])

	c := orig.Clone()
	assert.Equal(t, orig.Items(), c.Items())
	assert.Equal(t, orig.TotalValue(), c.TotalValue())
	assert.Equal(t, orig.TotalWeight(), c.TotalWeight())
	assert.Equal(t, orig.Capacity(), c.Capacity())

	c.Add(testItems[1])
	c.Remove(testItems[0])

	assert.True(t, orig.Contains(1))
	assert.False(t, orig.Contains(2))
	assert.Equal(t, 8, orig.TotalValue())
	assert.Equal(t, 3, orig.TotalWeight())
}

func TestIndividual_ItemsSortedByID(t *testing.T) {
	ind := New(100)
	for i := len(testItems) - 1; i >= 0; i-- {
		ind.Add(testItems[i])
	}
	items := ind.Items()
	for i := 1; i < len(items); i++ {
		assert.Less(t, items[i-1].ID, items[i].ID)
	}
}

func TestIndividual_Utilization(t *testing.T) {
	ind := New(8)
	ind.Add(testItems[1])
	assert.Equal(t, 4, ind.Waste())
	assert.InDelta(t, 0.5, ind.Utilization(), 1e-9)

	assert.Equal(t, 0.0, New(0).Utilization())
}
