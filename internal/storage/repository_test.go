package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"finsight/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "finsight.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTransactionCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: 1, Date: "2026-08-10", Category: "Food", Amount: 450,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.ID == 0 {
		t.Fatalf("expected assigned ID")
	}

	tx.Amount = 500
	tx.Category = "Groceries"
	if err := repo.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetTransaction(ctx, 1, tx.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount != 500 || got.Category != "Groceries" {
		t.Errorf("unexpected transaction after update: %+v", got)
	}

	if err := repo.DeleteTransaction(ctx, 1, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, 1, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestUpdateForeignUserRejected(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: 1, Date: "2026-08-10", Category: "Food", Amount: 450,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tx.UserID = 2
	if err := repo.UpdateTransaction(ctx, tx); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign user, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, 2, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign user delete, got %v", err)
	}
}

func TestListTransactionsByMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []core.Transaction{
		{UserID: 1, Date: "2026-07-15", Category: "Food", Amount: 300},
		{UserID: 1, Date: "2026-08-01", Category: "Rent", Amount: 12000},
		{UserID: 1, Date: "2026-08-20", Category: "Food", Amount: 250},
		{UserID: 2, Date: "2026-08-05", Category: "Travel", Amount: 900},
	}
	for _, tx := range seed {
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	all, err := repo.ListTransactions(ctx, 1, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 transactions for user 1, got %d", len(all))
	}
	if all[0].Date != "2026-07-15" {
		t.Errorf("expected date ordering, got first date %s", all[0].Date)
	}

	aug, err := repo.ListTransactions(ctx, 1, "2026-08")
	if err != nil {
		t.Fatalf("list month: %v", err)
	}
	if len(aug) != 2 {
		t.Errorf("expected 2 transactions in 2026-08, got %d", len(aug))
	}
}

func TestBudgetReplaceAndLatest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SetBudget(ctx, core.Budget{UserID: 1, Month: "2026-07", Amount: 20000}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.SetBudget(ctx, core.Budget{UserID: 1, Month: "2026-08", Amount: 21000}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.SetBudget(ctx, core.Budget{UserID: 1, Month: "2026-08", Amount: 22000}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	b, err := repo.GetBudget(ctx, 1, "2026-08")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if b.Amount != 22000 {
		t.Errorf("expected replaced amount 22000, got %v", b.Amount)
	}

	budgets, err := repo.ListBudgets(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(budgets) != 2 {
		t.Errorf("expected 2 budget months, got %d", len(budgets))
	}

	latest, err := repo.LatestBudget(ctx, 1)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest != 22000 {
		t.Errorf("expected latest budget 22000, got %v", latest)
	}

	none, err := repo.LatestBudget(ctx, 42)
	if err != nil {
		t.Fatalf("latest for unknown user: %v", err)
	}
	if none != 0 {
		t.Errorf("expected 0 for user without budgets, got %v", none)
	}
}

func TestListUserIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateTransaction(ctx, core.Transaction{UserID: 3, Date: "2026-08-01", Category: "Food", Amount: 100}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := repo.SetBudget(ctx, core.Budget{UserID: 1, Month: "2026-08", Amount: 5000}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ids, err := repo.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []int64{1, 3}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("id %d: expected %d, got %d", i, want[i], ids[i])
		}
	}
}
