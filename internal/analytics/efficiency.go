package analytics

import (
	"sort"

	"finsight/internal/core"
)

// Efficiency levels. A low average spend per transaction in a discretionary
// category reads as efficient use of money.
const (
	EfficiencyFixed  = "Fixed"
	EfficiencyHigh   = "High"
	EfficiencyMedium = "Medium"
	EfficiencyLow    = "Low"
	EfficiencyNone   = "N/A"
)

const (
	highEfficiencyAvg   = 500
	mediumEfficiencyAvg = 1500
)

// CategoryEfficiency labels one category's spending efficiency.
type CategoryEfficiency struct {
	Category   string `json:"category"`
	Efficiency string `json:"efficiency"`
}

// EfficiencyByCategory rates each category present in the snapshot by its
// average spend per transaction. Fixed categories are labeled as such rather
// than rated. Results are sorted by category name.
func EfficiencyByCategory(txs []core.Transaction, policy Policy) []CategoryEfficiency {
	type stat struct {
		total float64
		count int
	}
	stats := make(map[string]*stat)
	for _, tx := range txs {
		s := stats[tx.Category]
		if s == nil {
			s = &stat{}
			stats[tx.Category] = s
		}
		s.total += tx.Amount
		s.count++
	}

	results := make([]CategoryEfficiency, 0, len(stats))
	for category, s := range stats {
		level := EfficiencyNone
		switch {
		case policy.IsFixed(category):
			level = EfficiencyFixed
		case s.total == 0 || s.count == 0:
			level = EfficiencyNone
		default:
			switch avg := s.total / float64(s.count); {
			case avg <= highEfficiencyAvg:
				level = EfficiencyHigh
			case avg <= mediumEfficiencyAvg:
				level = EfficiencyMedium
			default:
				level = EfficiencyLow
			}
		}
		results = append(results, CategoryEfficiency{Category: category, Efficiency: level})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Category < results[j].Category })
	return results
}
