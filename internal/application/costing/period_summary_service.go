package costing

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/costing/internal/domain/costing"
	"github.com/erp/costing/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PeriodSummaryService maintains per-product monthly COGS summaries. It
// subscribes to CogsRecordedEvent and folds each committed record into the
// record's month bucket; Rebuild recomputes a product's summaries from the
// record history when the incremental path is in doubt.
type PeriodSummaryService struct {
	summaryRepo costing.PeriodSummaryRepository
	recordRepo  costing.CogsRecordRepository
	logger      *zap.Logger
}

// NewPeriodSummaryService creates a new PeriodSummaryService
func NewPeriodSummaryService(
	summaryRepo costing.PeriodSummaryRepository,
	recordRepo costing.CogsRecordRepository,
	logger *zap.Logger,
) *PeriodSummaryService {
	return &PeriodSummaryService{
		summaryRepo: summaryRepo,
		recordRepo:  recordRepo,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (s *PeriodSummaryService) EventTypes() []string {
	return []string{costing.EventTypeCogsRecorded}
}

// Handle folds a committed COGS record into its period summary
func (s *PeriodSummaryService) Handle(ctx context.Context, event shared.DomainEvent) error {
	recorded, ok := event.(*costing.CogsRecordedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return s.Apply(ctx, recorded.Record)
}

// Apply folds one record into the summary for the record's month bucket.
// The bucket is derived from the record's creation time in UTC.
func (s *PeriodSummaryService) Apply(ctx context.Context, record *costing.CogsRecord) error {
	period := costing.PeriodOf(record.CreatedAt)

	summary, err := s.summaryRepo.FindByProductAndPeriod(ctx, record.ProductID, period)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		summary = costing.NewCogsPeriodSummary(record.ProductID, period)
	}
	summary.Accumulate(record)

	if err := s.summaryRepo.Save(ctx, summary); err != nil {
		return err
	}
	s.logger.Debug("Period summary updated",
		zap.String("product_id", record.ProductID.String()),
		zap.String("period", period),
		zap.Int64("record_count", summary.RecordCount))
	return nil
}

// Rebuild drops a product's summaries and recomputes them from the full
// record history. The result is identical to what incremental application
// of every record would have produced.
func (s *PeriodSummaryService) Rebuild(ctx context.Context, productID uuid.UUID) ([]PeriodSummaryResponse, error) {
	periods, err := s.recordRepo.ListPeriods(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := s.summaryRepo.DeleteByProduct(ctx, productID); err != nil {
		return nil, err
	}

	responses := make([]PeriodSummaryResponse, 0, len(periods))
	for _, period := range periods {
		records, err := s.recordRepo.FindByProductAndPeriod(ctx, productID, period)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			continue
		}
		summary := costing.NewCogsPeriodSummary(productID, period)
		for i := range records {
			summary.Accumulate(&records[i])
		}
		if err := s.summaryRepo.Save(ctx, summary); err != nil {
			return nil, err
		}
		responses = append(responses, *toSummaryResponse(summary))
	}

	s.logger.Info("Period summaries rebuilt",
		zap.String("product_id", productID.String()),
		zap.Int("periods", len(responses)))
	return responses, nil
}

// GetSummary returns one product's summary for a month bucket
func (s *PeriodSummaryService) GetSummary(ctx context.Context, productID uuid.UUID, period string) (*PeriodSummaryResponse, error) {
	if _, err := costing.PeriodStart(period); err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period must be formatted as YYYY-MM")
	}
	summary, err := s.summaryRepo.FindByProductAndPeriod(ctx, productID, period)
	if err != nil {
		return nil, err
	}
	return toSummaryResponse(summary), nil
}

// ListSummaries returns all of a product's summaries ordered by period
func (s *PeriodSummaryService) ListSummaries(ctx context.Context, productID uuid.UUID) ([]PeriodSummaryResponse, error) {
	summaries, err := s.summaryRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	responses := make([]PeriodSummaryResponse, len(summaries))
	for i := range summaries {
		responses[i] = *toSummaryResponse(&summaries[i])
	}
	return responses, nil
}

// Ensure PeriodSummaryService can be subscribed to the event bus
var _ shared.EventHandler = (*PeriodSummaryService)(nil)
