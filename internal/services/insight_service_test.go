package services

import (
	"context"
	"testing"
	"time"

	"finsight/internal/analytics"
	"finsight/internal/core"
)

func newTestInsightService(store *fakeStore, now time.Time) *InsightService {
	svc := NewInsightService(store, analytics.DefaultPolicy(), testLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func TestAnomaliesUsesLatestBudget(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	// A single fixed-category transaction is anomalous when it exceeds
	// 1.2x the most recent budget.
	store.txs = []core.Transaction{
		{ID: 1, UserID: 1, Date: "2026-08-01", Category: "Rent", Amount: 25000},
	}
	store.budgets[1] = map[string]float64{"2026-08": 20000}

	svc := newTestInsightService(store, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	ids, err := svc.Anomalies(ctx, 1)
	if err != nil {
		t.Fatalf("anomalies: %v", err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("expected [1], got %v", ids)
	}
}

func TestPredictMonthSpendScopesToCurrentMonth(t *testing.T) {
	store := newFakeStore()
	store.txs = []core.Transaction{
		{ID: 1, UserID: 1, Date: "2026-08-05", Category: "Food", Amount: 1000},
		{ID: 2, UserID: 1, Date: "2026-07-05", Category: "Food", Amount: 99999},
	}

	svc := newTestInsightService(store, time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC))
	got, err := svc.PredictMonthSpend(context.Background(), 1)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}

	want := analytics.PredictMonthSpend([]core.Transaction{
		{ID: 1, UserID: 1, Date: "2026-08-05", Category: "Food", Amount: 1000},
	}, 10, analytics.DefaultPolicy())
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestForecastFiltersTrailingWindow(t *testing.T) {
	store := newFakeStore()
	store.txs = []core.Transaction{
		{ID: 1, UserID: 1, Date: "2026-08-10", Category: "Food", Amount: 600},
		{ID: 2, UserID: 1, Date: "2026-05-01", Category: "Food", Amount: 90000},  // before window
		{ID: 3, UserID: 1, Date: "2026-09-01", Category: "Food", Amount: 90000},  // future
	}

	svc := newTestInsightService(store, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	result, err := svc.Forecast(context.Background(), 1)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}

	if result.AvgDailyVariable != 600.0/60 {
		t.Errorf("expected avg daily 10, got %v", result.AvgDailyVariable)
	}
	if len(result.Daily) != 30 {
		t.Fatalf("expected 30 daily points, got %d", len(result.Daily))
	}
	if result.Daily[0].Date != "2026-08-16" {
		t.Errorf("expected series to start tomorrow, got %s", result.Daily[0].Date)
	}
}

func TestOptimizeBudgetFallsBackToLatestBudget(t *testing.T) {
	store := newFakeStore()
	// One month of history: a category above half the budget triggers the
	// budget-share alert.
	store.txs = []core.Transaction{
		{ID: 1, UserID: 1, Date: "2026-08-05", Category: "Dining", Amount: 6300},
		{ID: 2, UserID: 1, Date: "2026-08-12", Category: "Food", Amount: 1000},
	}
	store.budgets[1] = map[string]float64{"2026-07": 10000}

	svc := newTestInsightService(store, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	alerts, err := svc.OptimizeBudget(context.Background(), 1, "2026-08")
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}

	found := false
	for _, a := range alerts {
		if a.Category == "Dining" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected alert for Dining, got %v", alerts)
	}
}

func TestOptimizeBudgetRejectsBadMonth(t *testing.T) {
	svc := newTestInsightService(newFakeStore(), time.Now())
	if _, err := svc.OptimizeBudget(context.Background(), 1, "08-2026"); err == nil {
		t.Fatalf("expected error for malformed month")
	}
}

func TestSavingsExcludesCurrentMonth(t *testing.T) {
	store := newFakeStore()
	store.txs = []core.Transaction{
		{ID: 1, UserID: 1, Date: "2026-07-10", Category: "Food", Amount: 7000},
		{ID: 2, UserID: 1, Date: "2026-08-10", Category: "Food", Amount: 5000},
	}
	store.budgets[1] = map[string]float64{"2026-07": 10000, "2026-08": 10000}

	svc := newTestInsightService(store, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	report, err := svc.Savings(context.Background(), 1)
	if err != nil {
		t.Fatalf("savings: %v", err)
	}

	if len(report.History) != 1 {
		t.Fatalf("expected only July in history, got %v", report.History)
	}
	if report.History[0].Month != "2026-07" || report.History[0].Savings != 3000 {
		t.Errorf("unexpected history entry: %+v", report.History[0])
	}
}

func TestNecessityScoreFillsBudgetFromStore(t *testing.T) {
	store := newFakeStore()
	store.budgets[1] = map[string]float64{"2026-08": 10000}

	svc := newTestInsightService(store, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	score, err := svc.NecessityScore(context.Background(), 1, analytics.PurchaseRequest{
		Type:      "need",
		Frequency: "high",
		Amount:    400,
	})
	if err != nil {
		t.Fatalf("necessity: %v", err)
	}

	// 50 (need) + 30 (high) + 40 (ratio 0.04) capped at 100.
	if score.Score != 100 || score.Decision != analytics.DecisionBuy {
		t.Errorf("expected 100/BUY, got %+v", score)
	}
}

func TestCategoryEfficiency(t *testing.T) {
	store := newFakeStore()
	store.txs = []core.Transaction{
		{ID: 1, UserID: 1, Date: "2026-08-01", Category: "Coffee", Amount: 120},
		{ID: 2, UserID: 1, Date: "2026-08-02", Category: "Rent", Amount: 12000},
	}

	svc := newTestInsightService(store, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))
	grades, err := svc.CategoryEfficiency(context.Background(), 1)
	if err != nil {
		t.Fatalf("efficiency: %v", err)
	}
	if len(grades) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(grades))
	}
}
