package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/miniledger/easyexp-go/internal/domain"
	"github.com/miniledger/easyexp-go/internal/infra/observability"
	"github.com/miniledger/easyexp-go/internal/port"
)

var statsTracer = otel.Tracer("service/stats")

// StatsService computes financial summaries over a filtered set of
// expenses. The headline totals are accumulated in decimal arithmetic;
// the per-type and per-day breakdowns come from the store's group
// pipelines.
type StatsService struct {
	store   port.ExpenseStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(store port.ExpenseStore, metrics *observability.Metrics, logger *zap.Logger) *StatsService {
	return &StatsService{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// Summarize returns the totals and breakdowns for every expense of the
// user matching the filter. Pagination on the filter is ignored.
func (s *StatsService) Summarize(ctx context.Context, userID string, f domain.Filter) (*domain.StatsResponse, error) {
	ctx, span := statsTracer.Start(ctx, "StatsService.Summarize")
	defer span.End()
	defer func(start time.Time) {
		s.metrics.RecordRequestDuration("stats.summarize", time.Since(start))
	}(time.Now())

	f = f.Unpaginated()

	expenses, err := s.store.ListAll(ctx, userID, f)
	if err != nil {
		return nil, err
	}

	byReimburse, err := s.store.GroupByReimburseType(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	byPay, err := s.store.GroupByPayType(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	byDate, err := s.store.GroupByDate(ctx, userID, f)
	if err != nil {
		return nil, err
	}

	resp := &domain.StatsResponse{
		Stats:              domain.Aggregate(expenses),
		ReimburseTypeStats: byReimburse,
		PayTypeStats:       byPay,
		DateStats:          byDate,
	}

	s.logger.Debug("stats summarized",
		zap.String("user_id", userID),
		zap.Int("expenses", len(expenses)),
	)
	return resp, nil
}
