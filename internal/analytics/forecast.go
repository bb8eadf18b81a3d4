package analytics

import (
	"time"

	"finsight/internal/core"
)

const (
	// forecastWindowDays is the trailing window the velocity is read from.
	forecastWindowDays = 60

	// forecastHorizonDays is how far ahead the daily curve extends.
	forecastHorizonDays = 30
)

// ForecastPoint is one day of the forward spend curve.
type ForecastPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// ForecastResult is a 30-day forward daily spend curve derived from a 60-day
// trailing window. The curve models discretionary velocity only; fixed costs
// are reported as a monthly average but deliberately not redistributed into
// the daily series.
type ForecastResult struct {
	AvgDailyVariable float64         `json:"avg_daily_variable"`
	AvgMonthlyFixed  float64         `json:"avg_monthly_fixed"`
	Daily            []ForecastPoint `json:"daily"`
}

// Forecast produces the forward curve from the trailing-window transactions.
// txs must already be limited to the 60 days before today. The series starts
// the day after today and is purely a function of its inputs: same window,
// same curve. An empty window yields an empty result.
func Forecast(txs []core.Transaction, today time.Time, policy Policy) ForecastResult {
	if len(txs) == 0 {
		return ForecastResult{}
	}

	var variableTotal float64
	fixedByMonth := make(map[string]float64)
	for _, tx := range txs {
		month, ok := core.MonthOf(tx.Date)
		if !ok {
			continue
		}
		if policy.IsFixed(tx.Category) {
			fixedByMonth[month] += tx.Amount
		} else {
			variableTotal += tx.Amount
		}
	}

	avgDailyVariable := variableTotal / forecastWindowDays

	var avgMonthlyFixed float64
	if len(fixedByMonth) > 0 {
		var fixedSum float64
		for _, v := range fixedByMonth {
			fixedSum += v
		}
		avgMonthlyFixed = fixedSum / float64(len(fixedByMonth))
	}

	daily := make([]ForecastPoint, 0, forecastHorizonDays)
	amount := Round2(avgDailyVariable)
	for i := 1; i <= forecastHorizonDays; i++ {
		daily = append(daily, ForecastPoint{
			Date:   today.AddDate(0, 0, i).Format(core.DateLayout),
			Amount: amount,
		})
	}

	return ForecastResult{
		AvgDailyVariable: avgDailyVariable,
		AvgMonthlyFixed:  avgMonthlyFixed,
		Daily:            daily,
	}
}
