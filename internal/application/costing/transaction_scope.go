package costing

import (
	"context"

	"github.com/erp/costing/internal/domain/costing"
)

// TransactionScope provides transactional access to costing repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the costing repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
//
// The critical section of a COGS recording runs entirely inside one scope:
// snapshot the layers, apply the plan's decrements, insert the record. Either
// all of it commits or none of it does.
type TransactionalRepositories interface {
	// LayerRepo returns the cost layer repository scoped to the current transaction
	LayerRepo() costing.CostLayerRepository
	// RecordRepo returns the COGS record repository scoped to the current transaction
	RecordRepo() costing.CogsRecordRepository
	// SummaryRepo returns the period summary repository scoped to the current transaction
	SummaryRepo() costing.PeriodSummaryRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	layerRepo   costing.CostLayerRepository
	recordRepo  costing.CogsRecordRepository
	summaryRepo costing.PeriodSummaryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	layerRepo costing.CostLayerRepository,
	recordRepo costing.CogsRecordRepository,
	summaryRepo costing.PeriodSummaryRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		layerRepo:   layerRepo,
		recordRepo:  recordRepo,
		summaryRepo: summaryRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LayerRepo returns the cost layer repository.
func (s *NoOpTransactionScope) LayerRepo() costing.CostLayerRepository {
	return s.layerRepo
}

// RecordRepo returns the COGS record repository.
func (s *NoOpTransactionScope) RecordRepo() costing.CogsRecordRepository {
	return s.recordRepo
}

// SummaryRepo returns the period summary repository.
func (s *NoOpTransactionScope) SummaryRepo() costing.PeriodSummaryRepository {
	return s.summaryRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
