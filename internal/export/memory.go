package export

import (
	"context"
	"sync"
)

// MemoryWriter keeps exported rows in memory. Useful for tests and for running
// without Google credentials.
type MemoryWriter struct {
	mu   sync.Mutex
	rows []SavingsRow
}

var _ ReportWriter = (*MemoryWriter)(nil)

func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

func (w *MemoryWriter) AppendSavings(_ context.Context, rows []SavingsRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = append(w.rows, rows...)
	return nil
}

// Rows returns a copy of everything written so far.
func (w *MemoryWriter) Rows() []SavingsRow {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]SavingsRow, len(w.rows))
	copy(out, w.rows)
	return out
}
