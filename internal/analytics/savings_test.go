package analytics

import (
	"testing"

	"finsight/internal/core"
)

func TestSavingsHistoryEmpty(t *testing.T) {
	got := SavingsHistory(nil, nil, "2025-03")
	if got.TotalSavings != 0 {
		t.Errorf("expected zero savings, got %v", got.TotalSavings)
	}
	if got.History == nil || len(got.History) != 0 {
		t.Errorf("expected empty (non-nil) history, got %v", got.History)
	}
}

func TestSavingsHistoryTwoMonths(t *testing.T) {
	txs := []core.Transaction{
		{ID: 1, UserID: 1, Date: "2025-01-10", Category: "Food", Amount: 55000},
		{ID: 2, UserID: 1, Date: "2025-02-10", Category: "Food", Amount: 62000},
	}
	budgets := map[string]float64{"2025-01": 60000, "2025-02": 60000}

	got := SavingsHistory(txs, budgets, "2025-03")
	if got.TotalSavings != 3000.00 {
		t.Fatalf("expected total 3000.00, got %v", got.TotalSavings)
	}
	if len(got.History) != 2 {
		t.Fatalf("expected two history rows, got %d", len(got.History))
	}
	// Sorted by month descending.
	if got.History[0].Month != "2025-02" || got.History[1].Month != "2025-01" {
		t.Errorf("history not sorted descending: %v", got.History)
	}
	if got.History[0].Savings != -2000.00 {
		t.Errorf("expected -2000.00 for overspent month, got %v", got.History[0].Savings)
	}
	if got.History[1].Savings != 5000.00 {
		t.Errorf("expected 5000.00, got %v", got.History[1].Savings)
	}
}

func TestSavingsHistoryExcludesCurrentAndFutureMonths(t *testing.T) {
	txs := []core.Transaction{
		{ID: 1, UserID: 1, Date: "2025-02-10", Category: "Food", Amount: 1000},
		{ID: 2, UserID: 1, Date: "2025-03-10", Category: "Food", Amount: 9999},
		{ID: 3, UserID: 1, Date: "2025-04-01", Category: "Food", Amount: 9999},
	}
	budgets := map[string]float64{"2025-02": 5000, "2025-03": 5000, "2025-05": 5000}

	got := SavingsHistory(txs, budgets, "2025-03")
	if len(got.History) != 1 || got.History[0].Month != "2025-02" {
		t.Fatalf("expected only 2025-02 in history, got %v", got.History)
	}
	if got.TotalSavings != 4000.00 {
		t.Errorf("expected 4000.00, got %v", got.TotalSavings)
	}
}

func TestSavingsHistoryMonthsFromEitherDataset(t *testing.T) {
	// A budget-only month and a spend-only month both appear.
	txs := []core.Transaction{
		{ID: 1, UserID: 1, Date: "2025-01-10", Category: "Food", Amount: 3000},
	}
	budgets := map[string]float64{"2025-02": 10000}

	got := SavingsHistory(txs, budgets, "2025-06")
	if len(got.History) != 2 {
		t.Fatalf("expected two rows, got %v", got.History)
	}
	if got.History[0].Month != "2025-02" || got.History[0].Savings != 10000.00 {
		t.Errorf("budget-only month wrong: %+v", got.History[0])
	}
	if got.History[1].Month != "2025-01" || got.History[1].Savings != -3000.00 {
		t.Errorf("spend-only month wrong: %+v", got.History[1])
	}
	if got.TotalSavings != 7000.00 {
		t.Errorf("expected 7000.00, got %v", got.TotalSavings)
	}
}
