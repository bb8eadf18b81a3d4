package analytics

import (
	"sort"

	"finsight/internal/core"
)

// MonthSavings reconciles one fully-elapsed month's budget against actual spend.
type MonthSavings struct {
	Month   string  `json:"month"`
	Budget  float64 `json:"budget"`
	Spent   float64 `json:"spent"`
	Savings float64 `json:"savings"`
}

// SavingsReport is the historical budget-vs-spend reconciliation.
type SavingsReport struct {
	TotalSavings float64        `json:"total_savings"`
	History      []MonthSavings `json:"history"`
}

// SavingsHistory reconciles budgets against spend for every month appearing
// in either dataset, excluding currentMonth and anything after it: only
// fully-elapsed months count toward savings. budgets already carries replace
// semantics (one value per month). History is sorted by month descending.
// Empty inputs yield a zero report with an empty history.
func SavingsHistory(txs []core.Transaction, budgets map[string]float64, currentMonth string) SavingsReport {
	report := SavingsReport{History: []MonthSavings{}}

	spentByMonth := make(map[string]float64)
	for _, tx := range txs {
		month, ok := core.MonthOf(tx.Date)
		if !ok {
			continue
		}
		spentByMonth[month] += tx.Amount
	}

	months := sortedMonths(spentByMonth, budgets)
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	var total float64
	for _, m := range months {
		if m >= currentMonth {
			continue
		}
		budget := budgets[m]
		spent := spentByMonth[m]
		savings := budget - spent
		total += savings
		report.History = append(report.History, MonthSavings{
			Month:   m,
			Budget:  Round2(budget),
			Spent:   Round2(spent),
			Savings: Round2(savings),
		})
	}
	report.TotalSavings = Round2(total)
	return report
}
