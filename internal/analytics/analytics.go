package analytics

import (
	"math"
	"sort"

	"finsight/internal/core"
)

// Round2 rounds a decimal amount to two places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// monthlyTotals sums valid transactions into per-month fixed and variable
// buckets. Records with malformed dates are dropped here, not propagated.
func monthlyTotals(txs []core.Transaction, policy Policy) (fixed, variable map[string]float64) {
	fixed = make(map[string]float64)
	variable = make(map[string]float64)
	for _, tx := range txs {
		month, ok := core.MonthOf(tx.Date)
		if !ok {
			continue
		}
		if policy.IsFixed(tx.Category) {
			fixed[month] += tx.Amount
		} else {
			variable[month] += tx.Amount
		}
	}
	return fixed, variable
}

// sortedMonths returns the union of keys of the given maps in chronological
// order. YYYY-MM strings sort correctly as plain strings.
func sortedMonths(maps ...map[string]float64) []string {
	seen := make(map[string]struct{})
	for _, m := range maps {
		for k := range m {
			seen[k] = struct{}{}
		}
	}
	months := make([]string, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}
