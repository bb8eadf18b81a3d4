package analytics

import (
	"fmt"
	"math"
	"sort"

	"finsight/internal/core"
)

const (
	// overspendMultiplier: recent spend this far above the historical
	// monthly average triggers an alert.
	overspendMultiplier = 1.2

	// budgetShareThreshold: one category consuming more than this share of
	// the total budget triggers an alert.
	budgetShareThreshold = 0.5
)

// Alert is a per-category advisory emitted by OptimizeBudget.
type Alert struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// OptimizeBudget compares each category's spend in the target month against
// its own historical monthly average and against the user's total budget.
//
// A category gets at most one alert. Overspend against its own history
// (needs more than one month of history) wins over the budget-share check;
// the latter skips fixed categories when the policy says so. totalBudget is
// the current month's budget, 0 when unset. No history, no alerts.
func OptimizeBudget(txs []core.Transaction, targetMonth string, totalBudget float64, policy Policy) []Alert {
	if len(txs) == 0 {
		return nil
	}

	// {category: {month: total}}
	sums := make(map[string]map[string]float64)
	for _, tx := range txs {
		month, ok := core.MonthOf(tx.Date)
		if !ok {
			continue
		}
		if sums[tx.Category] == nil {
			sums[tx.Category] = make(map[string]float64)
		}
		sums[tx.Category][month] += tx.Amount
	}

	categories := make([]string, 0, len(sums))
	for c := range sums {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var alerts []Alert
	for _, category := range categories {
		monthly := sums[category]
		var total float64
		for _, v := range monthly {
			total += v
		}
		avgMonthly := total / float64(len(monthly))
		recent := monthly[targetMonth]

		switch {
		case len(monthly) > 1 && avgMonthly > 0 && recent > overspendMultiplier*avgMonthly:
			alerts = append(alerts, Alert{
				Category: category,
				Message: fmt.Sprintf("Spending is %.0f above your monthly average. Try to scale back.",
					recent-avgMonthly),
			})
		case totalBudget > 0 && recent > budgetShareThreshold*totalBudget &&
			!(policy.ExemptFixedFromBudgetShare && policy.IsFixed(category)):
			alerts = append(alerts, Alert{
				Category: category,
				Message: fmt.Sprintf("This category accounts for %.0f%% of your total budget.",
					math.Round(recent/totalBudget*100)),
			})
		}
	}
	return alerts
}
