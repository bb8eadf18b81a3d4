// Package storage persists transactions and budgets in SQLite. The schema is
// managed with embedded golang-migrate migrations.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"finsight/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row the caller asked for does not exist.
var ErrNotFound = errors.New("storage: not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction inserts a transaction and returns it with the assigned ID.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, date, category, amount) VALUES (?, ?, ?, ?)`,
		tx.UserID, tx.Date, tx.Category, tx.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("last insert id: %w", err)
	}

	tx.ID = id
	return tx, nil
}

// UpdateTransaction replaces all mutable fields of a transaction. The row must
// belong to tx.UserID.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET date = ?, category = ?, amount = ? WHERE id = ? AND user_id = ?`,
		tx.Date, tx.Category, tx.Amount, tx.ID, tx.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTransaction removes a transaction owned by userID.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTransaction returns a single transaction owned by userID.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, date, category, amount FROM transactions WHERE id = ? AND user_id = ?`,
		id, userID)

	var tx core.Transaction
	if err := row.Scan(&tx.ID, &tx.UserID, &tx.Date, &tx.Category, &tx.Amount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// ListTransactions returns all of a user's transactions ordered by date. When
// month is non-empty only transactions in that YYYY-MM month are returned.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, month string) ([]core.Transaction, error) {
	query := `SELECT id, user_id, date, category, amount FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if month != "" {
		query += ` AND date LIKE ?`
		args = append(args, month+"%")
	}
	query += ` ORDER BY date, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		var tx core.Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Date, &tx.Category, &tx.Amount); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// SetBudget stores a user's budget for a month, replacing any existing value.
func (r *SQLiteRepository) SetBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, month, amount) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, month) DO UPDATE SET amount = excluded.amount`,
		b.UserID, b.Month, b.Amount)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}

// GetBudget returns the budget for a specific month.
func (r *SQLiteRepository) GetBudget(ctx context.Context, userID int64, month string) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, month, amount FROM budgets WHERE user_id = ? AND month = ?`,
		userID, month)

	var b core.Budget
	if err := row.Scan(&b.UserID, &b.Month, &b.Amount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Budget{}, ErrNotFound
		}
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// ListBudgets returns all of a user's budgets keyed by month.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64) (map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT month, amount FROM budgets WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := map[string]float64{}
	for rows.Next() {
		var month string
		var amount float64
		if err := rows.Scan(&month, &amount); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets[month] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return budgets, nil
}

// LatestBudget returns the budget for the most recent month a user has set one,
// or 0 when the user has never set a budget.
func (r *SQLiteRepository) LatestBudget(ctx context.Context, userID int64) (float64, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT amount FROM budgets WHERE user_id = ? ORDER BY month DESC LIMIT 1`, userID)

	var amount float64
	if err := row.Scan(&amount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("latest budget: %w", err)
	}
	return amount, nil
}

// ListUserIDs returns every user that has at least one transaction or budget.
func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM transactions UNION SELECT user_id FROM budgets ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return ids, nil
}
