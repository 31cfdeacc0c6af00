package search

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Sort orders results in place by headline price. It is stable: equal
// prices keep their input order, and SortNone leaves the slice untouched.
// Prices that do not parse compare as zero.
func Sort(results []SearchResult, order SortOrder) {
	switch order {
	case SortLowToHigh, SortHighToLow:
	default:
		return
	}

	keys := make([]decimal.Decimal, len(results))
	for i := range results {
		keys[i] = ParsePrice(results[i].Price)
	}
	idx := make([]int, len(results))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if order == SortHighToLow {
			return ka.GreaterThan(kb)
		}
		return ka.LessThan(kb)
	})

	sorted := make([]SearchResult, len(results))
	for i, j := range idx {
		sorted[i] = results[j]
	}
	copy(results, sorted)
}

// ParsePrice parses a decimal rate string, tolerating a leading "$".
// Anything unparseable is zero.
func ParsePrice(s string) decimal.Decimal {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return v
}
