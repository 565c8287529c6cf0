package costing

import (
	"testing"
	"time"

	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlan(productID uuid.UUID) strategy.ConsumptionPlan {
	return strategy.ConsumptionPlan{
		ProductID: productID,
		Method:    strategy.CostMethodFIFO,
		Entries: []strategy.PlanEntry{
			{LayerID: uuid.New(), Quantity: decimal.NewFromInt(20), UnitCost: decimal.NewFromInt(10)},
			{LayerID: uuid.New(), Quantity: decimal.NewFromInt(15), UnitCost: decimal.NewFromInt(12)},
		},
		TotalCost: decimal.NewFromInt(380),
	}
}

func TestNewCogsRecord(t *testing.T) {
	productID := uuid.New()
	plan := testPlan(productID)

	t.Run("without revenue", func(t *testing.T) {
		record := NewCogsRecord(productID, decimal.NewFromInt(35), plan, nil)

		assert.Equal(t, productID, record.ProductID)
		assert.True(t, record.TotalCogs.Equal(decimal.NewFromInt(380)))
		assert.Equal(t, strategy.CostMethodFIFO, record.Method)
		assert.Len(t, record.Breakdown, 2)
		assert.Nil(t, record.UnitRevenue)
		assert.Nil(t, record.TotalRevenue)
		assert.Nil(t, record.GrossMargin)
	})

	t.Run("with revenue derives margin", func(t *testing.T) {
		unitRevenue := decimal.NewFromInt(15)
		record := NewCogsRecord(productID, decimal.NewFromInt(35), plan, &unitRevenue)

		require.NotNil(t, record.TotalRevenue)
		require.NotNil(t, record.GrossMargin)
		assert.True(t, record.TotalRevenue.Equal(decimal.NewFromInt(525)))
		// 525 - 380 = 145
		assert.True(t, record.GrossMargin.Equal(decimal.NewFromInt(145)))
	})

	t.Run("negative margin is recorded as-is", func(t *testing.T) {
		unitRevenue := decimal.NewFromInt(1)
		record := NewCogsRecord(productID, decimal.NewFromInt(35), plan, &unitRevenue)

		require.NotNil(t, record.GrossMargin)
		assert.True(t, record.GrossMargin.IsNegative())
	})

	t.Run("breakdown mirrors the plan", func(t *testing.T) {
		record := NewCogsRecord(productID, decimal.NewFromInt(35), plan, nil)

		for i, entry := range plan.Entries {
			assert.Equal(t, entry.LayerID, record.Breakdown[i].LayerID)
			assert.True(t, record.Breakdown[i].Quantity.Equal(entry.Quantity))
			assert.True(t, record.Breakdown[i].UnitCost.Equal(entry.UnitCost))
		}
		assert.True(t, record.ConsumedQuantity().Equal(decimal.NewFromInt(35)))
	})
}

func TestPeriodOf(t *testing.T) {
	assert.Equal(t, "2026-03", PeriodOf(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)))
	// Bucketing is by UTC month, not local time
	loc := time.FixedZone("UTC+10", 10*3600)
	assert.Equal(t, "2026-02", PeriodOf(time.Date(2026, 3, 1, 5, 0, 0, 0, loc)))
}

func TestPeriodStart(t *testing.T) {
	start, err := PeriodStart("2026-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), start)

	_, err = PeriodStart("March 2026")
	assert.Error(t, err)
}

func TestCogsPeriodSummary_Accumulate(t *testing.T) {
	productID := uuid.New()
	summary := NewCogsPeriodSummary(productID, "2026-03")

	record := NewCogsRecord(productID, decimal.NewFromInt(35), testPlan(productID), nil)
	summary.Accumulate(record)
	summary.Accumulate(record)

	assert.True(t, summary.QuantitySold.Equal(decimal.NewFromInt(70)))
	assert.True(t, summary.TotalCogs.Equal(decimal.NewFromInt(760)))
	assert.Equal(t, int64(2), summary.RecordCount)
}
