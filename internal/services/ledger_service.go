package services

import (
	"context"
	"fmt"

	"finsight/internal/amqp"
	"finsight/internal/core"
	"finsight/internal/log"
)

// LedgerService owns transaction and budget writes. Every successful write is
// announced on AMQP so workers can react; publish failures are logged but do
// not fail the request, the row is already persisted.
type LedgerService struct {
	store     Store
	publisher EventPublisher
	logger    *log.Logger
}

func NewLedgerService(store Store, publisher EventPublisher, logger *log.Logger) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

func (s *LedgerService) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.publishEvent(ctx, created.ID, created.UserID, amqp.OpCreated)
	return created, nil
}

func (s *LedgerService) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if tx.ID <= 0 {
		return fmt.Errorf("update transaction: missing ID")
	}

	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	s.publishEvent(ctx, tx.ID, tx.UserID, amqp.OpUpdated)
	return nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publishEvent(ctx, id, userID, amqp.OpDeleted)
	return nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

func (s *LedgerService) ListTransactions(ctx context.Context, userID int64, month string) ([]core.Transaction, error) {
	if month != "" && !core.ValidMonth(month) {
		return nil, core.ErrInvalidMonth
	}
	return s.store.ListTransactions(ctx, userID, month)
}

func (s *LedgerService) SetBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := s.store.SetBudget(ctx, b); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}

func (s *LedgerService) GetBudget(ctx context.Context, userID int64, month string) (core.Budget, error) {
	if !core.ValidMonth(month) {
		return core.Budget{}, core.ErrInvalidMonth
	}
	return s.store.GetBudget(ctx, userID, month)
}

func (s *LedgerService) publishEvent(ctx context.Context, transactionID, userID int64, op string) {
	if s.publisher == nil {
		return
	}

	evt := amqp.NewTransactionEvent(transactionID, userID, op)
	if err := s.publisher.PublishTransactionEvent(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish transaction event",
			log.FieldError, err,
			log.FieldTransactionID, transactionID,
			log.FieldUserID, userID,
			log.FieldOperation, op)
	}
}
