package evolution

import (
	"errors"
	"fmt"

	"github.com/DrSkyle/knapsack-ga/pkg/catalog"
)

// MaxBruteForceItems bounds exhaustive enumeration (2^n subsets).
const MaxBruteForceItems = 24

// ErrCatalogTooLarge is returned by BruteForce for catalogs above the bound.
var ErrCatalogTooLarge = errors.New("catalog too large for exhaustive search")

// BruteForce enumerates every subset and returns the optimal value and one
// subset achieving it.
func BruteForce(cat *catalog.Catalog) (int, []catalog.Item, error) {
	n := cat.Len()
	if n > MaxBruteForceItems {
		return 0, nil, fmt.Errorf("%w: %d items (max %d)", ErrCatalogTooLarge, n, MaxBruteForceItems)
	}

	bestValue := 0
	var bestMask uint32
	for mask := uint32(0); mask < 1<<n; mask++ {
		value, weight := 0, 0
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				it := cat.At(i)
				value += it.Value
				weight += it.Weight
			}
		}
		if weight <= cat.Capacity() && value > bestValue {
			bestValue = value
			bestMask = mask
		}
	}

	var items []catalog.Item
	for i := 0; i < n; i++ {
		if bestMask&(1<<i) != 0 {
			items = append(items, cat.At(i))
		}
	}
	return bestValue, items, nil
}
