package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// ProductIDKey is the context key for the product being costed
	ProductIDKey contextKey = "product_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if
// not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithProductID adds the product ID to context and returns an enriched logger
func WithProductID(ctx context.Context, logger *zap.Logger, productID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, ProductIDKey, productID)
	enriched := logger.With(zap.String("product_id", productID))
	return WithContext(ctx, enriched), enriched
}

// GetProductID retrieves the product ID from context
func GetProductID(ctx context.Context) string {
	if productID, ok := ctx.Value(ProductIDKey).(string); ok {
		return productID
	}
	return ""
}
