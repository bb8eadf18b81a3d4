package analytics

import "finsight/internal/core"

const (
	// daysInMonth is a deliberate simplification; projections do not need
	// calendar-accurate month lengths.
	daysInMonth = 30

	// minVelocityDays floors the divisor of the daily variable rate, so one
	// early large purchase does not extrapolate into an inflated month-end
	// projection.
	minVelocityDays = 5
)

// PredictMonthSpend projects the current month's total spend from
// partial-month data: fixed costs are taken as already booked, variable
// spend continues at its damped daily velocity for the remaining days.
// txs must be the current month's transactions; dayOfMonth is today's
// day of month. No transactions yields 0.
func PredictMonthSpend(txs []core.Transaction, dayOfMonth int, policy Policy) float64 {
	if len(txs) == 0 {
		return 0
	}

	var fixedTotal, variableTotal float64
	for _, tx := range txs {
		if !core.ValidDate(tx.Date) {
			continue
		}
		if policy.IsFixed(tx.Category) {
			fixedTotal += tx.Amount
		} else {
			variableTotal += tx.Amount
		}
	}

	daysPassed := dayOfMonth
	if daysPassed < 1 {
		daysPassed = 1
	}
	effectiveDays := daysPassed
	if effectiveDays < minVelocityDays {
		effectiveDays = minVelocityDays
	}
	dailyVariableRate := variableTotal / float64(effectiveDays)

	remainingDays := daysInMonth - daysPassed
	if remainingDays < 0 {
		remainingDays = 0
	}
	projectedVariable := variableTotal + dailyVariableRate*float64(remainingDays)

	return Round2(fixedTotal + projectedVariable)
}
