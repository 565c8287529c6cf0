package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext(t *testing.T) {
	log := zap.NewNop()
	ctx := WithContext(context.Background(), log)

	assert.Same(t, log, FromContext(ctx))
}

func TestFromContext_MissingLogger(t *testing.T) {
	log := FromContext(context.Background())

	// No-op logger, never nil
	assert.NotNil(t, log)
}

func TestWithProductID(t *testing.T) {
	core, observed := observer.New(zap.InfoLevel)
	log := zap.New(core)

	ctx, enriched := WithProductID(context.Background(), log, "b2a7c91e")
	enriched.Info("consuming layers")

	assert.Equal(t, "b2a7c91e", GetProductID(ctx))

	entries := observed.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "b2a7c91e", entries[0].ContextMap()["product_id"])
}

func TestGetProductID_Missing(t *testing.T) {
	assert.Equal(t, "", GetProductID(context.Background()))
}
