package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"finsight/internal/amqp"
	"finsight/internal/core"
	"finsight/internal/log"
	"finsight/internal/storage"
)

// fakeStore is an in-memory Store for tests.
type fakeStore struct {
	mu      sync.Mutex
	txs     []core.Transaction
	budgets map[int64]map[string]float64
	nextID  int64
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{budgets: make(map[int64]map[string]float64)}
}

func (f *fakeStore) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return core.Transaction{}, f.err
	}
	f.nextID++
	tx.ID = f.nextID
	f.txs = append(f.txs, tx)
	return tx, nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, tx core.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, existing := range f.txs {
		if existing.ID == tx.ID && existing.UserID == tx.UserID {
			f.txs[i] = tx
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) DeleteTransaction(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, existing := range f.txs {
		if existing.ID == id && existing.UserID == userID {
			f.txs = append(f.txs[:i], f.txs[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) GetTransaction(_ context.Context, userID, id int64) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.txs {
		if tx.ID == id && tx.UserID == userID {
			return tx, nil
		}
	}
	return core.Transaction{}, storage.ErrNotFound
}

func (f *fakeStore) ListTransactions(_ context.Context, userID int64, month string) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []core.Transaction
	for _, tx := range f.txs {
		if tx.UserID != userID {
			continue
		}
		if month != "" && !strings.HasPrefix(tx.Date, month) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (f *fakeStore) SetBudget(_ context.Context, b core.Budget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.budgets[b.UserID] == nil {
		f.budgets[b.UserID] = make(map[string]float64)
	}
	f.budgets[b.UserID][b.Month] = b.Amount
	return nil
}

func (f *fakeStore) GetBudget(_ context.Context, userID int64, month string) (core.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	amount, ok := f.budgets[userID][month]
	if !ok {
		return core.Budget{}, storage.ErrNotFound
	}
	return core.Budget{UserID: userID, Month: month, Amount: amount}, nil
}

func (f *fakeStore) ListBudgets(_ context.Context, userID int64) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]float64)
	for m, a := range f.budgets[userID] {
		out[m] = a
	}
	return out, nil
}

func (f *fakeStore) LatestBudget(_ context.Context, userID int64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latestMonth := ""
	var latest float64
	for m, a := range f.budgets[userID] {
		if m > latestMonth {
			latestMonth = m
			latest = a
		}
	}
	return latest, nil
}

func (f *fakeStore) ListUserIDs(_ context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[int64]struct{})
	var ids []int64
	for _, tx := range f.txs {
		if _, ok := seen[tx.UserID]; !ok {
			seen[tx.UserID] = struct{}{}
			ids = append(ids, tx.UserID)
		}
	}
	for userID := range f.budgets {
		if _, ok := seen[userID]; !ok {
			seen[userID] = struct{}{}
			ids = append(ids, userID)
		}
	}
	return ids, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.TransactionEvent
	err    error
}

func (f *fakePublisher) PublishTransactionEvent(_ context.Context, evt *amqp.TransactionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, evt)
	return nil
}

func testLogger() *log.Logger {
	return log.New(log.DefaultConfig())
}

func TestLedgerCreatePublishesEvent(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewLedgerService(store, pub, testLogger())

	tx, err := svc.CreateTransaction(context.Background(), core.Transaction{
		UserID: 1, Date: "2026-08-10", Category: "Food", Amount: 450,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.ID == 0 {
		t.Fatalf("expected assigned ID")
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	evt := pub.events[0]
	if evt.Op != amqp.OpCreated || evt.TransactionID != tx.ID || evt.UserID != 1 {
		t.Errorf("unexpected event: %+v", evt)
	}
}

func TestLedgerCreateRejectsInvalid(t *testing.T) {
	store := newFakeStore()
	svc := NewLedgerService(store, nil, testLogger())

	_, err := svc.CreateTransaction(context.Background(), core.Transaction{
		UserID: 1, Date: "10-08-2026", Category: "Food", Amount: 450,
	})
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if len(store.txs) != 0 {
		t.Errorf("invalid transaction must not be stored")
	}
}

func TestLedgerPublishFailureDoesNotFailWrite(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewLedgerService(store, pub, testLogger())

	if _, err := svc.CreateTransaction(context.Background(), core.Transaction{
		UserID: 1, Date: "2026-08-10", Category: "Food", Amount: 450,
	}); err != nil {
		t.Fatalf("create should succeed despite publish failure, got %v", err)
	}
	if len(store.txs) != 1 {
		t.Errorf("expected transaction stored")
	}
}

func TestLedgerUpdateAndDeletePublish(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewLedgerService(store, pub, testLogger())
	ctx := context.Background()

	tx, err := svc.CreateTransaction(ctx, core.Transaction{
		UserID: 1, Date: "2026-08-10", Category: "Food", Amount: 450,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tx.Amount = 500
	if err := svc.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, 1, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(pub.events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(pub.events))
	}
	if pub.events[1].Op != amqp.OpUpdated || pub.events[2].Op != amqp.OpDeleted {
		t.Errorf("unexpected ops: %s, %s", pub.events[1].Op, pub.events[2].Op)
	}
}

func TestLedgerSetBudgetValidates(t *testing.T) {
	svc := NewLedgerService(newFakeStore(), nil, testLogger())

	err := svc.SetBudget(context.Background(), core.Budget{UserID: 1, Month: "2026-13", Amount: 100})
	if !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}
