package costing

import (
	"time"

	"github.com/erp/costing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PeriodLayout is the bucket format for period summaries (calendar month)
const PeriodLayout = "2006-01"

// PeriodOf returns the period bucket a timestamp falls into
func PeriodOf(t time.Time) string {
	return t.UTC().Format(PeriodLayout)
}

// PeriodStart parses a period bucket and returns the UTC instant it begins.
// Returns ErrInvalidInput for anything that is not a "YYYY-MM" bucket.
func PeriodStart(period string) (time.Time, error) {
	t, err := time.ParseInLocation(PeriodLayout, period, time.UTC)
	if err != nil {
		return time.Time{}, shared.ErrInvalidInput
	}
	return t, nil
}

// CogsPeriodSummary holds running COGS totals for one product in one period
// bucket. Summaries are maintained by the aggregator and can always be
// rebuilt from the CogsRecord history.
type CogsPeriodSummary struct {
	shared.BaseEntity
	ProductID    uuid.UUID
	Period       string
	QuantitySold decimal.Decimal
	TotalCogs    decimal.Decimal
	RecordCount  int64
}

// NewCogsPeriodSummary creates an empty summary for a product and period
func NewCogsPeriodSummary(productID uuid.UUID, period string) *CogsPeriodSummary {
	return &CogsPeriodSummary{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		Period:       period,
		QuantitySold: decimal.Zero,
		TotalCogs:    decimal.Zero,
	}
}

// Accumulate folds one record into the running totals
func (s *CogsPeriodSummary) Accumulate(record *CogsRecord) {
	s.QuantitySold = s.QuantitySold.Add(record.QuantitySold)
	s.TotalCogs = s.TotalCogs.Add(record.TotalCogs)
	s.RecordCount++
	s.UpdatedAt = time.Now()
}
