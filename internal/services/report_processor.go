package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finsight/internal/analytics"
	"finsight/internal/core"
	"finsight/internal/export"
	"finsight/internal/log"
)

// ReportProcessorConfig holds configuration for the report processor.
type ReportProcessorConfig struct {
	// PollInterval is how often savings reports are exported (default: 1h).
	PollInterval time.Duration
}

// DefaultReportProcessorConfig returns sensible defaults.
func DefaultReportProcessorConfig() ReportProcessorConfig {
	return ReportProcessorConfig{
		PollInterval: time.Hour,
	}
}

// ReportProcessor periodically exports every user's closed savings months to
// a report destination. Months already exported in this process are skipped,
// a month's savings only change when past transactions are edited.
type ReportProcessor struct {
	store  Store
	writer export.ReportWriter
	config ReportProcessorConfig
	logger *log.Logger
	now    func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	exported map[string]struct{}
}

func NewReportProcessor(store Store, writer export.ReportWriter, config ReportProcessorConfig, logger *log.Logger) *ReportProcessor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultReportProcessorConfig().PollInterval
	}
	return &ReportProcessor{
		store:    store,
		writer:   writer,
		config:   config,
		logger:   logger.WithComponent(log.ComponentReports),
		now:      time.Now,
		exported: make(map[string]struct{}),
	}
}

// Start begins the export loop. Returns an error if already running.
func (p *ReportProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("report processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "report processor started",
		"poll_interval", p.config.PollInterval)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *ReportProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		p.logger.InfoContext(ctx, "report processor stopped")
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "report processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running.
func (p *ReportProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ReportProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// Export immediately on startup.
	p.ExportOnce(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ExportOnce(ctx)
		}
	}
}

// ExportOnce runs a single export cycle over all users.
func (p *ReportProcessor) ExportOnce(ctx context.Context) {
	userIDs, err := p.store.ListUserIDs(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to list users", log.FieldError, err)
		return
	}

	for _, userID := range userIDs {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := p.exportUser(ctx, userID); err != nil {
			p.logger.ErrorContext(ctx, "failed to export savings report",
				log.FieldUserID, userID, log.FieldError, err)
		}
	}
}

func (p *ReportProcessor) exportUser(ctx context.Context, userID int64) error {
	txs, err := p.store.ListTransactions(ctx, userID, "")
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	budgets, err := p.store.ListBudgets(ctx, userID)
	if err != nil {
		return fmt.Errorf("load budgets: %w", err)
	}

	currentMonth := p.now().Format(core.MonthLayout)
	report := analytics.SavingsHistory(txs, budgets, currentMonth)

	var rows []export.SavingsRow
	for _, m := range report.History {
		key := fmt.Sprintf("%d|%s", userID, m.Month)
		if _, done := p.exported[key]; done {
			continue
		}
		rows = append(rows, export.SavingsRow{
			UserID:  userID,
			Month:   m.Month,
			Budget:  m.Budget,
			Spent:   m.Spent,
			Savings: m.Savings,
		})
	}

	if len(rows) == 0 {
		return nil
	}

	if err := p.writer.AppendSavings(ctx, rows); err != nil {
		return fmt.Errorf("append savings rows: %w", err)
	}

	for _, r := range rows {
		p.exported[fmt.Sprintf("%d|%s", userID, r.Month)] = struct{}{}
	}

	p.logger.InfoContext(ctx, "exported savings rows",
		log.FieldUserID, userID, "rows", len(rows))

	return nil
}
