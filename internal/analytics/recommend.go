package analytics

import "finsight/internal/core"

const (
	// recommendWindowMonths is the trailing-history window.
	recommendWindowMonths = 3

	// variableBuffer pads the recommended variable spend by 15%.
	variableBuffer = 1.15

	// bootstrapHeadroom pads a lopsided single-month history by 40%.
	bootstrapHeadroom = 1.4

	// lopsidedShare: a bucket under 20% of its counterpart marks a
	// single-month history as lopsided.
	lopsidedShare = 0.2
)

// RecommendBudget computes a suggested monthly budget from up to the last
// three calendar months of history: average fixed spend plus a 15%-buffered
// average variable spend.
//
// A user with a single, lopsided month of history (only recurring bills, or
// only discretionary spend) instead gets 1.4× the dominant bucket, leaving
// headroom for the side they have not recorded yet. Empty input yields 0.
func RecommendBudget(txs []core.Transaction, policy Policy) float64 {
	fixedByMonth, variableByMonth := monthlyTotals(txs, policy)
	months := sortedMonths(fixedByMonth, variableByMonth)
	if len(months) == 0 {
		return 0
	}
	if len(months) > recommendWindowMonths {
		months = months[len(months)-recommendWindowMonths:]
	}

	var fixedSum, variableSum float64
	for _, m := range months {
		fixedSum += fixedByMonth[m]
		variableSum += variableByMonth[m]
	}
	n := float64(len(months))
	avgFixed := fixedSum / n
	avgVariable := variableSum / n

	if len(months) == 1 {
		switch {
		case avgVariable < lopsidedShare*avgFixed:
			return Round2(bootstrapHeadroom * avgFixed)
		case avgFixed < lopsidedShare*avgVariable:
			return Round2(bootstrapHeadroom * avgVariable)
		}
	}

	return Round2(avgFixed + variableBuffer*avgVariable)
}
