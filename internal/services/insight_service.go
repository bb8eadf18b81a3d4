package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finsight/internal/analytics"
	"finsight/internal/core"
	"finsight/internal/log"
	"finsight/internal/storage"
)

// InsightService computes analytics over a user's ledger. All heavy lifting
// lives in the pure analytics package; this layer loads the right snapshot
// from storage and hands back the result.
type InsightService struct {
	store  Store
	policy analytics.Policy
	logger *log.Logger

	// now is injectable for tests.
	now func() time.Time
}

func NewInsightService(store Store, policy analytics.Policy, logger *log.Logger) *InsightService {
	return &InsightService{
		store:  store,
		policy: policy,
		logger: logger.WithComponent(log.ComponentInsights),
		now:    time.Now,
	}
}

// Anomalies returns the IDs of transactions that look out of pattern for
// their category.
func (s *InsightService) Anomalies(ctx context.Context, userID int64) ([]int64, error) {
	txs, err := s.store.ListTransactions(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	budget, err := s.store.LatestBudget(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load latest budget: %w", err)
	}

	ids := analytics.DetectAnomalies(txs, budget, s.policy)
	s.logger.DebugContext(ctx, "anomaly scan complete",
		log.FieldUserID, userID,
		log.FieldAnomalyCount, len(ids))
	return ids, nil
}

// RecommendBudget suggests a monthly budget from recent spending history.
func (s *InsightService) RecommendBudget(ctx context.Context, userID int64) (float64, error) {
	txs, err := s.store.ListTransactions(ctx, userID, "")
	if err != nil {
		return 0, fmt.Errorf("load transactions: %w", err)
	}
	return analytics.RecommendBudget(txs, s.policy), nil
}

// PredictMonthSpend projects the current month's total from spend so far.
func (s *InsightService) PredictMonthSpend(ctx context.Context, userID int64) (float64, error) {
	now := s.now()
	month := now.Format(core.MonthLayout)

	txs, err := s.store.ListTransactions(ctx, userID, month)
	if err != nil {
		return 0, fmt.Errorf("load transactions: %w", err)
	}
	return analytics.PredictMonthSpend(txs, now.Day(), s.policy), nil
}

// Forecast builds the 30-day forward daily spend curve from the trailing
// 60 days of transactions.
func (s *InsightService) Forecast(ctx context.Context, userID int64) (analytics.ForecastResult, error) {
	txs, err := s.store.ListTransactions(ctx, userID, "")
	if err != nil {
		return analytics.ForecastResult{}, fmt.Errorf("load transactions: %w", err)
	}

	today := s.now()
	todayStr := today.Format(core.DateLayout)
	cutoff := today.AddDate(0, 0, -60).Format(core.DateLayout)

	// ISO dates compare correctly as strings.
	window := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date > cutoff && tx.Date <= todayStr {
			window = append(window, tx)
		}
	}

	return analytics.Forecast(window, today, s.policy), nil
}

// OptimizeBudget returns per-category alerts for the given month. The budget
// for that month is used when set, otherwise the most recent one.
func (s *InsightService) OptimizeBudget(ctx context.Context, userID int64, month string) ([]analytics.Alert, error) {
	if !core.ValidMonth(month) {
		return nil, core.ErrInvalidMonth
	}

	txs, err := s.store.ListTransactions(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	budget, err := s.monthOrLatestBudget(ctx, userID, month)
	if err != nil {
		return nil, err
	}

	return analytics.OptimizeBudget(txs, month, budget, s.policy), nil
}

// Savings reconciles budgets against spending for past months.
func (s *InsightService) Savings(ctx context.Context, userID int64) (analytics.SavingsReport, error) {
	txs, err := s.store.ListTransactions(ctx, userID, "")
	if err != nil {
		return analytics.SavingsReport{}, fmt.Errorf("load transactions: %w", err)
	}

	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return analytics.SavingsReport{}, fmt.Errorf("load budgets: %w", err)
	}

	currentMonth := s.now().Format(core.MonthLayout)
	return analytics.SavingsHistory(txs, budgets, currentMonth), nil
}

// CategoryEfficiency grades each variable category by its average transaction
// size.
func (s *InsightService) CategoryEfficiency(ctx context.Context, userID int64) ([]analytics.CategoryEfficiency, error) {
	txs, err := s.store.ListTransactions(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return analytics.EfficiencyByCategory(txs, s.policy), nil
}

// NecessityScore scores a proposed purchase. When the request carries no
// budget the user's most recent one is filled in.
func (s *InsightService) NecessityScore(ctx context.Context, userID int64, req analytics.PurchaseRequest) (analytics.PurchaseScore, error) {
	if req.Budget == 0 {
		budget, err := s.store.LatestBudget(ctx, userID)
		if err != nil {
			return analytics.PurchaseScore{}, fmt.Errorf("load latest budget: %w", err)
		}
		req.Budget = budget
	}
	return analytics.ScorePurchase(req), nil
}

func (s *InsightService) monthOrLatestBudget(ctx context.Context, userID int64, month string) (float64, error) {
	b, err := s.store.GetBudget(ctx, userID, month)
	if err == nil {
		return b.Amount, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("load budget: %w", err)
	}

	latest, err := s.store.LatestBudget(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load latest budget: %w", err)
	}
	return latest, nil
}
