package analytics

import (
	"math"
	"sort"

	"finsight/internal/core"
)

const (
	// zScoreMinSamples is the category size at which per-category statistics
	// take over from the global fallback.
	zScoreMinSamples = 3

	// largeTransactionCutoff bounds the transactions that feed the global
	// reference mean, so one huge rent payment does not poison it.
	largeTransactionCutoff = 10000

	// globalMeanMinSamples is how many sub-cutoff transactions are needed
	// before the global mean is considered meaningful.
	globalMeanMinSamples = 5

	// smallSampleMultiplier flags a small-sample transaction this many times
	// above the global mean.
	smallSampleMultiplier = 5

	// budgetEscapeShare: a flagged-by-multiplier amount still under this
	// share of the user's budget is not an anomaly.
	budgetEscapeShare = 0.5

	// fixedBudgetMultiplier flags a small-sample fixed-category transaction
	// this far above the latest budget.
	fixedBudgetMultiplier = 1.2
)

// DetectAnomalies flags outlier transaction ids per category.
//
// Categories with at least three transactions use their own mean and
// population standard deviation: anything above mean + 2σ is flagged, and a
// zero σ (all amounts equal) flags nothing. Thinner categories fall back to
// a global reference mean built from small transactions, except fixed
// categories, which are judged against the user's latest budget instead.
// latestBudget is the user's most recent budget amount, 0 when unset.
//
// The returned ids are unique and sorted ascending; an empty snapshot yields
// an empty result.
func DetectAnomalies(txs []core.Transaction, latestBudget float64, policy Policy) []int64 {
	if len(txs) == 0 {
		return nil
	}

	byCategory := make(map[string][]core.Transaction)
	var smallSum float64
	var smallCount int
	for _, tx := range txs {
		byCategory[tx.Category] = append(byCategory[tx.Category], tx)
		if tx.Amount < largeTransactionCutoff {
			smallSum += tx.Amount
			smallCount++
		}
	}

	var globalMean float64
	globalMeanOK := smallCount >= globalMeanMinSamples
	if globalMeanOK {
		globalMean = smallSum / float64(smallCount)
	}

	var anomalies []int64
	for category, group := range byCategory {
		if len(group) >= zScoreMinSamples {
			anomalies = append(anomalies, flagByZScore(group)...)
			continue
		}

		if policy.IsFixed(category) {
			// Large recurring costs are not judged against small-transaction
			// statistics; only an entry well above the budget is suspect.
			if latestBudget <= 0 {
				continue
			}
			for _, tx := range group {
				if tx.Amount > fixedBudgetMultiplier*latestBudget {
					anomalies = append(anomalies, tx.ID)
				}
			}
			continue
		}

		if !globalMeanOK {
			continue
		}
		for _, tx := range group {
			if tx.Amount <= smallSampleMultiplier*globalMean {
				continue
			}
			// A large one-off that is still reasonable relative to the
			// budget is not an anomaly.
			if latestBudget > 0 && tx.Amount < budgetEscapeShare*latestBudget {
				continue
			}
			anomalies = append(anomalies, tx.ID)
		}
	}

	sort.Slice(anomalies, func(i, j int) bool { return anomalies[i] < anomalies[j] })
	return anomalies
}

// flagByZScore returns ids above mean + 2σ for one category group.
func flagByZScore(group []core.Transaction) []int64 {
	var sum float64
	for _, tx := range group {
		sum += tx.Amount
	}
	mean := sum / float64(len(group))

	var sqDiff float64
	for _, tx := range group {
		d := tx.Amount - mean
		sqDiff += d * d
	}
	stddev := math.Sqrt(sqDiff / float64(len(group)))
	if stddev == 0 {
		return nil
	}

	threshold := mean + 2*stddev
	var flagged []int64
	for _, tx := range group {
		if tx.Amount > threshold {
			flagged = append(flagged, tx.ID)
		}
	}
	return flagged
}
