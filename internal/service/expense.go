package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/miniledger/easyexp-go/internal/domain"
	"github.com/miniledger/easyexp-go/internal/infra/observability"
	"github.com/miniledger/easyexp-go/internal/port"
)

var expenseTracer = otel.Tracer("service/expense")

// ExpenseService implements create/read/update/delete of expense records
// scoped to one user. Beyond the field-level rules it validates the
// submitted types against the user's configured vocabularies, so a typo
// cannot silently mint a new status.
type ExpenseService struct {
	store   port.ExpenseStore
	config  *ConfigService
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewExpenseService creates a new expense service.
func NewExpenseService(store port.ExpenseStore, config *ConfigService, metrics *observability.Metrics, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		store:   store,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// ListResult is one page of expenses plus pagination metadata.
type ListResult struct {
	Expenses []domain.Expense `json:"expenses"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

// List returns expenses matching the filter, newest first, page-sliced.
func (s *ExpenseService) List(ctx context.Context, userID string, f domain.Filter) (*ListResult, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.List")
	defer span.End()
	defer s.observe("expense.list", time.Now())

	if f.Page < 1 {
		f.Page = domain.DefaultPage
	}
	if f.Limit < 1 || f.Limit > domain.MaxLimit {
		f.Limit = domain.DefaultLimit
	}

	expenses, total, err := s.store.List(ctx, userID, f)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Expenses: expenses,
		Total:    total,
		Page:     f.Page,
		Limit:    f.Limit,
	}, nil
}

// Get returns one record, verifying ownership.
func (s *ExpenseService) Get(ctx context.Context, id, userID string) (*domain.Expense, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.Get")
	defer span.End()

	return s.store.Get(ctx, id, userID)
}

// Create validates and persists a new record, returning it with the
// generated id and creation timestamp.
func (s *ExpenseService) Create(ctx context.Context, userID string, in *domain.ExpenseInput) (*domain.Expense, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.Create")
	defer span.End()
	defer s.observe("expense.create", time.Now())

	e, err := s.buildExpense(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	e.CreateTime = time.Now()

	id, err := s.store.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	e.ID = id

	s.logger.Info("expense created",
		zap.String("expense_id", id),
		zap.String("user_id", userID),
		zap.Float64("amount", e.Amount),
	)
	return e, nil
}

// Update validates and fully replaces the mutable fields of an existing
// record. Id and owner must both match or the record is reported missing.
func (s *ExpenseService) Update(ctx context.Context, id, userID string, in *domain.ExpenseInput) (*domain.Expense, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("expense_id", id))
	defer s.observe("expense.update", time.Now())

	e, err := s.buildExpense(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, id, userID, e); err != nil {
		return nil, err
	}

	s.logger.Info("expense updated",
		zap.String("expense_id", id),
		zap.String("user_id", userID),
	)
	return s.store.Get(ctx, id, userID)
}

// Delete removes one record, verifying ownership.
func (s *ExpenseService) Delete(ctx context.Context, id, userID string) error {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.Delete")
	defer span.End()
	defer s.observe("expense.delete", time.Now())

	if err := s.store.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.logger.Info("expense deleted",
		zap.String("expense_id", id),
		zap.String("user_id", userID),
	)
	return nil
}

// buildExpense runs field validation, checks the types against the user's
// vocabularies and converts the input into a storable record.
func (s *ExpenseService) buildExpense(ctx context.Context, userID string, in *domain.ExpenseInput) (*domain.Expense, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	cfg, err := s.config.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !domain.Contains(cfg.ReimburseTypes, in.ReimburseType) {
		return nil, &domain.ErrValidation{Field: "reimburseType", Message: "未知的报销类型: " + in.ReimburseType}
	}
	if !domain.Contains(cfg.PayTypes, in.PayType) {
		return nil, &domain.ErrValidation{Field: "payType", Message: "未知的支付类型: " + in.PayType}
	}

	date, err := domain.ParseDate(in.Date)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "date", Message: "日期格式无效"}
	}

	e := &domain.Expense{
		UserID:        userID,
		Amount:        in.Amount,
		ReimburseType: in.ReimburseType,
		PayType:       in.PayType,
		Date:          date,
		Other:         in.Other,
	}
	if in.ReimburseType == domain.StatusReimbursed {
		e.ReimburseAmount = in.ReimburseAmount
	}
	return e, nil
}

func (s *ExpenseService) observe(op string, start time.Time) {
	s.metrics.RecordRequestDuration(op, time.Since(start))
}
