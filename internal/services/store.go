// Package services orchestrates storage, messaging and analytics into the
// operations the HTTP layer and workers expose.
package services

import (
	"context"

	"finsight/internal/amqp"
	"finsight/internal/core"
)

// Store is the persistence surface the services depend on. Implemented by
// storage.SQLiteRepository.
type Store interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id int64) error
	GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID int64, month string) ([]core.Transaction, error)
	SetBudget(ctx context.Context, b core.Budget) error
	GetBudget(ctx context.Context, userID int64, month string) (core.Budget, error)
	ListBudgets(ctx context.Context, userID int64) (map[string]float64, error)
	LatestBudget(ctx context.Context, userID int64) (float64, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
}

// EventPublisher publishes ledger change events. Implemented by amqp.Client.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, evt *amqp.TransactionEvent) error
}
