package generic

import (
	"slices"

	"github.com/shopspring/decimal"
)

// =============================================================================
// KEYED COLLECTIONS - Ordering, grouping and indexing helpers
// =============================================================================

// OrderBy returns a sorted copy of items. The sort is stable: items comparing
// equal keep their input order. items itself is not modified.
func OrderBy[T any](items []T, cmp func(a, b T) int) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, cmp)
	return sorted
}

// GroupBy buckets items by key. Each bucket preserves input order.
func GroupBy[T any, K comparable](items []T, key func(T) K) map[K][]T {
	groups := make(map[K][]T)
	for _, item := range items {
		k := key(item)
		groups[k] = append(groups[k], item)
	}
	return groups
}

// IndexBy maps each key to its item. When two items share a key the later
// one wins; duplicates are not reported.
func IndexBy[T any, K comparable](items []T, key func(T) K) map[K]T {
	index := make(map[K]T, len(items))
	for _, item := range items {
		index[key(item)] = item
	}
	return index
}

// SumBy adds up value(item) over items.
func SumBy[T any](items []T, value func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(value(item))
	}
	return total
}

// Descending flips a comparator.
func Descending[T any](cmp func(a, b T) int) func(a, b T) int {
	return func(a, b T) int { return cmp(b, a) }
}
