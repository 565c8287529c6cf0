package cost

import (
	"context"
	"testing"
	"time"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoLayers returns the canonical two-layer fixture:
// L1 acquired first with 20 units at cost 10, L2 later with 30 units at 12.
func twoLayers() (strategy.LayerSnapshot, strategy.LayerSnapshot) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l1 := strategy.LayerSnapshot{
		LayerID:           uuid.New(),
		AcquiredAt:        base,
		UnitCost:          decimal.NewFromInt(10),
		RemainingQuantity: decimal.NewFromInt(20),
	}
	l2 := strategy.LayerSnapshot{
		LayerID:           uuid.New(),
		AcquiredAt:        base.AddDate(0, 0, 4),
		UnitCost:          decimal.NewFromInt(12),
		RemainingQuantity: decimal.NewFromInt(30),
	}
	return l1, l2
}

func TestNewFIFOStrategy(t *testing.T) {
	s := NewFIFOStrategy()

	assert.NotNil(t, s)
	assert.Equal(t, "fifo", s.Name())
	assert.Equal(t, strategy.CostMethodFIFO, s.Method())
	assert.NotEmpty(t, s.Description())
}

func TestFIFOStrategy_BuildPlan(t *testing.T) {
	s := NewFIFOStrategy()
	ctx := context.Background()
	l1, l2 := twoLayers()

	t.Run("consumes oldest layer first", func(t *testing.T) {
		plan, err := s.BuildPlan(ctx, decimal.NewFromInt(35), []strategy.LayerSnapshot{l1, l2})
		require.NoError(t, err)

		require.Len(t, plan.Entries, 2)
		assert.Equal(t, l1.LayerID, plan.Entries[0].LayerID)
		assert.True(t, plan.Entries[0].Quantity.Equal(decimal.NewFromInt(20)))
		assert.Equal(t, l2.LayerID, plan.Entries[1].LayerID)
		assert.True(t, plan.Entries[1].Quantity.Equal(decimal.NewFromInt(15)))
		// 20*10 + 15*12 = 380
		assert.True(t, plan.TotalCost.Equal(decimal.NewFromInt(380)),
			"expected 380 but got %s", plan.TotalCost)
	})

	t.Run("order independent of input slice order", func(t *testing.T) {
		plan, err := s.BuildPlan(ctx, decimal.NewFromInt(35), []strategy.LayerSnapshot{l2, l1})
		require.NoError(t, err)

		require.Len(t, plan.Entries, 2)
		assert.Equal(t, l1.LayerID, plan.Entries[0].LayerID)
		assert.True(t, plan.TotalCost.Equal(decimal.NewFromInt(380)))
	})

	t.Run("partial consumption touches only the oldest layer", func(t *testing.T) {
		plan, err := s.BuildPlan(ctx, decimal.NewFromInt(5), []strategy.LayerSnapshot{l1, l2})
		require.NoError(t, err)

		require.Len(t, plan.Entries, 1)
		assert.Equal(t, l1.LayerID, plan.Entries[0].LayerID)
		assert.True(t, plan.TotalCost.Equal(decimal.NewFromInt(50)))
	})

	t.Run("plan quantities sum exactly to the request", func(t *testing.T) {
		quantity := decimal.RequireFromString("33.7")
		plan, err := s.BuildPlan(ctx, quantity, []strategy.LayerSnapshot{l1, l2})
		require.NoError(t, err)
		assert.True(t, plan.TotalQuantity().Equal(quantity))
	})

	t.Run("zero quantity yields empty plan with zero cost", func(t *testing.T) {
		plan, err := s.BuildPlan(ctx, decimal.Zero, []strategy.LayerSnapshot{l1, l2})
		require.NoError(t, err)
		assert.True(t, plan.IsEmpty())
		assert.True(t, plan.TotalCost.IsZero())
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		_, err := s.BuildPlan(ctx, decimal.NewFromInt(-1), []strategy.LayerSnapshot{l1, l2})
		assert.Error(t, err)
	})

	t.Run("insufficient inventory", func(t *testing.T) {
		_, err := s.BuildPlan(ctx, decimal.NewFromInt(51), []strategy.LayerSnapshot{l1, l2})
		assert.ErrorIs(t, err, costing.ErrInsufficientInventory)
	})

	t.Run("no layers at all", func(t *testing.T) {
		_, err := s.BuildPlan(ctx, decimal.NewFromInt(1), nil)
		assert.ErrorIs(t, err, costing.ErrInsufficientInventory)
	})

	t.Run("ties broken by layer ID for determinism", func(t *testing.T) {
		same := l1.AcquiredAt
		a := strategy.LayerSnapshot{LayerID: uuid.New(), AcquiredAt: same, UnitCost: decimal.NewFromInt(1), RemainingQuantity: decimal.NewFromInt(5)}
		b := strategy.LayerSnapshot{LayerID: uuid.New(), AcquiredAt: same, UnitCost: decimal.NewFromInt(2), RemainingQuantity: decimal.NewFromInt(5)}

		plan1, err := s.BuildPlan(ctx, decimal.NewFromInt(5), []strategy.LayerSnapshot{a, b})
		require.NoError(t, err)
		plan2, err := s.BuildPlan(ctx, decimal.NewFromInt(5), []strategy.LayerSnapshot{b, a})
		require.NoError(t, err)

		assert.Equal(t, plan1.Entries, plan2.Entries)
	})
}
