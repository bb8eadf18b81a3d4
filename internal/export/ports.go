// Package export writes savings reports to external destinations.
package export

import "context"

// SavingsRow is one exported line of a user's savings history.
type SavingsRow struct {
	UserID  int64
	Month   string
	Budget  float64
	Spent   float64
	Savings float64
}

// ReportWriter is the outbound port for report destinations.
type ReportWriter interface {
	AppendSavings(ctx context.Context, rows []SavingsRow) error
}
