package generic_test

import (
	"cmp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/deposit-engine/generic"
)

type rated struct {
	name string
	rate int
}

func byRate(a, b rated) int { return cmp.Compare(a.rate, b.rate) }

func TestOrderBy_StableAndNonMutating(t *testing.T) {
	// GIVEN: Items with tied keys
	// WHEN: Ordering descending
	// THEN: Ties keep input order and the input is untouched

	items := []rated{{"a", 5}, {"b", 8}, {"c", 5}, {"d", 8}, {"e", 1}}
	input := append([]rated(nil), items...)

	sorted := generic.OrderBy(items, generic.Descending(byRate))

	assert.Equal(t, []rated{{"b", 8}, {"d", 8}, {"a", 5}, {"c", 5}, {"e", 1}}, sorted)
	assert.Equal(t, input, items)
}

func TestGroupBy_PreservesOrderWithinGroup(t *testing.T) {
	items := []rated{{"a", 1}, {"b", 2}, {"c", 1}, {"d", 2}, {"e", 1}}

	groups := generic.GroupBy(items, func(r rated) int { return r.rate })

	assert.Len(t, groups, 2)
	assert.Equal(t, []rated{{"a", 1}, {"c", 1}, {"e", 1}}, groups[1])
	assert.Equal(t, []rated{{"b", 2}, {"d", 2}}, groups[2])
}

func TestIndexBy_LaterDuplicateWins(t *testing.T) {
	// Duplicate keys are not an error: the last one silently replaces the first.
	items := []rated{{"x", 1}, {"y", 2}, {"x", 3}}

	index := generic.IndexBy(items, func(r rated) string { return r.name })

	assert.Len(t, index, 2)
	assert.Equal(t, rated{"x", 3}, index["x"])
}

func TestSumBy(t *testing.T) {
	items := []holding{{"A", dec("1.10")}, {"B", dec("2.25")}}

	total := generic.SumBy(items, func(h holding) decimal.Decimal { return h.amount })

	assert.True(t, total.Equal(dec("3.35")))
	assert.True(t, generic.SumBy([]holding(nil), func(h holding) decimal.Decimal { return h.amount }).IsZero())
}
