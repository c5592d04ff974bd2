package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/miniledger/easyexp-go/internal/domain"
	"github.com/miniledger/easyexp-go/internal/infra/observability"
	"github.com/miniledger/easyexp-go/internal/infra/xlsx"
	"github.com/miniledger/easyexp-go/internal/port"
)

var exportTracer = otel.Tracer("service/export")

// ExportFilename is the download filename for the workbook.
const ExportFilename = "expenses.xlsx"

// ExportService streams a user's filtered expenses into an Excel workbook.
type ExportService struct {
	store   port.ExpenseStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewExportService creates a new export service.
func NewExportService(store port.ExpenseStore, metrics *observability.Metrics, logger *zap.Logger) *ExportService {
	return &ExportService{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// Export renders every expense matching the filter, newest first, into a
// workbook. An empty result set exports a header-only sheet rather than
// failing.
func (s *ExportService) Export(ctx context.Context, userID string, f domain.Filter) ([]byte, error) {
	ctx, span := exportTracer.Start(ctx, "ExportService.Export")
	defer span.End()
	defer func(start time.Time) {
		s.metrics.RecordRequestDuration("expense.export", time.Since(start))
	}(time.Now())

	expenses, err := s.store.ListAll(ctx, userID, f.Unpaginated())
	if err != nil {
		return nil, err
	}

	data, err := xlsx.Render(expenses)
	if err != nil {
		return nil, err
	}

	s.metrics.AddExportedRows(len(expenses))
	s.logger.Info("expenses exported",
		zap.String("user_id", userID),
		zap.Int("rows", len(expenses)),
	)
	return data, nil
}
