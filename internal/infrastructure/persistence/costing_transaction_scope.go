package persistence

import (
	"context"

	appcosting "github.com/erp/costing/internal/application/costing"
	"github.com/erp/costing/internal/domain/costing"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcosting.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// LayerRepo returns the cost layer repository scoped to the current transaction.
func (r *gormTransactionalRepositories) LayerRepo() costing.CostLayerRepository {
	return NewGormCostLayerRepository(r.tx)
}

// RecordRepo returns the COGS record repository scoped to the current transaction.
func (r *gormTransactionalRepositories) RecordRepo() costing.CogsRecordRepository {
	return NewGormCogsRecordRepository(r.tx)
}

// SummaryRepo returns the period summary repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SummaryRepo() costing.PeriodSummaryRepository {
	return NewGormPeriodSummaryRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appcosting.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appcosting.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
