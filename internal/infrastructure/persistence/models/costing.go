package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostLayerModel is the persistence model for the CostLayer entity.
type CostLayerModel struct {
	BaseModel
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_cost_layers_product_acquired,priority:1"`
	AcquiredAt        time.Time       `gorm:"not null;index:idx_cost_layers_product_acquired,priority:2"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OriginalQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RemainingQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status            string          `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (CostLayerModel) TableName() string {
	return "cost_layers"
}

// ToDomain converts the persistence model to a domain CostLayer entity.
func (m *CostLayerModel) ToDomain() *costing.CostLayer {
	return &costing.CostLayer{
		BaseEntity:        m.BaseModel.ToDomain(),
		ProductID:         m.ProductID,
		AcquiredAt:        m.AcquiredAt,
		UnitCost:          m.UnitCost,
		OriginalQuantity:  m.OriginalQuantity,
		RemainingQuantity: m.RemainingQuantity,
		Status:            costing.LayerStatus(m.Status),
	}
}

// FromDomain populates the persistence model from a domain CostLayer entity.
func (m *CostLayerModel) FromDomain(l *costing.CostLayer) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.ProductID = l.ProductID
	m.AcquiredAt = l.AcquiredAt
	m.UnitCost = l.UnitCost
	m.OriginalQuantity = l.OriginalQuantity
	m.RemainingQuantity = l.RemainingQuantity
	m.Status = string(l.Status)
}

// CostLayerModelFromDomain creates a new persistence model from a domain CostLayer.
func CostLayerModelFromDomain(l *costing.CostLayer) *CostLayerModel {
	m := &CostLayerModel{}
	m.FromDomain(l)
	return m
}

// CostingConfigModel is the persistence model for per-product costing configuration.
type CostingConfigModel struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Method    string    `gorm:"type:varchar(32);not null"`
}

// TableName returns the table name for GORM
func (CostingConfigModel) TableName() string {
	return "costing_configs"
}

// ToDomain converts the persistence model to a domain CostingConfig.
func (m *CostingConfigModel) ToDomain() *costing.CostingConfig {
	return &costing.CostingConfig{
		BaseEntity: m.BaseModel.ToDomain(),
		ProductID:  m.ProductID,
		Method:     strategy.CostMethod(m.Method),
	}
}

// FromDomain populates the persistence model from a domain CostingConfig.
func (m *CostingConfigModel) FromDomain(c *costing.CostingConfig) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.ProductID = c.ProductID
	m.Method = c.Method.String()
}

// CogsRecordModel is the persistence model for the append-only CogsRecord.
// The layer breakdown is stored as a JSON document for audit.
type CogsRecordModel struct {
	BaseModel
	ProductID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_cogs_records_product_created,priority:1"`
	QuantitySold decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	UnitRevenue  *decimal.Decimal `gorm:"type:decimal(18,4)"`
	TotalRevenue *decimal.Decimal `gorm:"type:decimal(18,4)"`
	TotalCogs    decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	GrossMargin  *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Method       string           `gorm:"type:varchar(32);not null"`
	Breakdown    []byte           `gorm:"type:jsonb;not null"`
}

// TableName returns the table name for GORM
func (CogsRecordModel) TableName() string {
	return "cogs_records"
}

// ToDomain converts the persistence model to a domain CogsRecord.
func (m *CogsRecordModel) ToDomain() (*costing.CogsRecord, error) {
	var breakdown []costing.BreakdownEntry
	if len(m.Breakdown) > 0 {
		if err := json.Unmarshal(m.Breakdown, &breakdown); err != nil {
			return nil, fmt.Errorf("failed to decode layer breakdown: %w", err)
		}
	}
	return &costing.CogsRecord{
		BaseEntity:   m.BaseModel.ToDomain(),
		ProductID:    m.ProductID,
		QuantitySold: m.QuantitySold,
		UnitRevenue:  m.UnitRevenue,
		TotalRevenue: m.TotalRevenue,
		TotalCogs:    m.TotalCogs,
		GrossMargin:  m.GrossMargin,
		Method:       strategy.CostMethod(m.Method),
		Breakdown:    breakdown,
	}, nil
}

// FromDomain populates the persistence model from a domain CogsRecord.
func (m *CogsRecordModel) FromDomain(r *costing.CogsRecord) error {
	breakdown, err := json.Marshal(r.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode layer breakdown: %w", err)
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	m.ProductID = r.ProductID
	m.QuantitySold = r.QuantitySold
	m.UnitRevenue = r.UnitRevenue
	m.TotalRevenue = r.TotalRevenue
	m.TotalCogs = r.TotalCogs
	m.GrossMargin = r.GrossMargin
	m.Method = r.Method.String()
	m.Breakdown = breakdown
	return nil
}

// CogsPeriodSummaryModel is the persistence model for per-period COGS totals.
type CogsPeriodSummaryModel struct {
	BaseModel
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_period_summaries_product_period,priority:1"`
	Period       string          `gorm:"type:varchar(7);not null;uniqueIndex:idx_period_summaries_product_period,priority:2"`
	QuantitySold decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCogs    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RecordCount  int64           `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CogsPeriodSummaryModel) TableName() string {
	return "cogs_period_summaries"
}

// ToDomain converts the persistence model to a domain CogsPeriodSummary.
func (m *CogsPeriodSummaryModel) ToDomain() *costing.CogsPeriodSummary {
	return &costing.CogsPeriodSummary{
		BaseEntity:   m.BaseModel.ToDomain(),
		ProductID:    m.ProductID,
		Period:       m.Period,
		QuantitySold: m.QuantitySold,
		TotalCogs:    m.TotalCogs,
		RecordCount:  m.RecordCount,
	}
}

// FromDomain populates the persistence model from a domain CogsPeriodSummary.
func (m *CogsPeriodSummaryModel) FromDomain(s *costing.CogsPeriodSummary) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.ProductID = s.ProductID
	m.Period = s.Period
	m.QuantitySold = s.QuantitySold
	m.TotalCogs = s.TotalCogs
	m.RecordCount = s.RecordCount
}

// AllModels returns every persistence model for migration helpers
func AllModels() []any {
	return []any{
		&CostLayerModel{},
		&CostingConfigModel{},
		&CogsRecordModel{},
		&CogsPeriodSummaryModel{},
	}
}
