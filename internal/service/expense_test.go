package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/miniledger/easyexp-go/internal/domain"
	"github.com/miniledger/easyexp-go/internal/infra/observability"
)

func newTestExpenseService(store *stubExpenseStore) *ExpenseService {
	metrics := observability.NewMetrics()
	cfg := NewConfigService(newStubConfigStore(), noopCache[domain.Config]{}, metrics, zap.NewNop())
	return NewExpenseService(store, cfg, metrics, zap.NewNop())
}

func validInput() *domain.ExpenseInput {
	return &domain.ExpenseInput{
		Amount:        45.5,
		ReimburseType: "待报销",
		PayType:       "微信",
		Date:          "2024-03-05",
		Other:         "打车",
	}
}

func TestExpenseCreateAndGet(t *testing.T) {
	store := &stubExpenseStore{}
	svc := newTestExpenseService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", validInput())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "user-1", created.UserID)
	assert.False(t, created.CreateTime.IsZero())

	got, err := svc.Get(ctx, created.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, created.Amount, got.Amount)
	assert.Equal(t, created.ReimburseType, got.ReimburseType)
	assert.True(t, created.Date.Equal(got.Date))
}

func TestExpenseCreateValidation(t *testing.T) {
	svc := newTestExpenseService(&stubExpenseStore{})
	ctx := context.Background()
	var ve *domain.ErrValidation

	in := validInput()
	in.Amount = 0
	_, err := svc.Create(ctx, "user-1", in)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount", ve.Field)

	in = validInput()
	in.ReimburseType = domain.StatusReimbursed
	in.ReimburseAmount = nil
	_, err = svc.Create(ctx, "user-1", in)
	require.ErrorAs(t, err, &ve)

	in = validInput()
	in.Date = "03/05/2024"
	_, err = svc.Create(ctx, "user-1", in)
	require.ErrorAs(t, err, &ve)
}

func TestExpenseCreateRejectsUnknownTypes(t *testing.T) {
	svc := newTestExpenseService(&stubExpenseStore{})
	ctx := context.Background()
	var ve *domain.ErrValidation

	in := validInput()
	in.ReimburseType = "出差报销"
	_, err := svc.Create(ctx, "user-1", in)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "reimburseType", ve.Field)

	in = validInput()
	in.PayType = "刷卡"
	_, err = svc.Create(ctx, "user-1", in)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "payType", ve.Field)
}

func TestExpenseCreateAcceptsCustomConfiguredType(t *testing.T) {
	store := &stubExpenseStore{}
	metrics := observability.NewMetrics()
	cfgStore := newStubConfigStore()
	cfgSvc := NewConfigService(cfgStore, noopCache[domain.Config]{}, metrics, zap.NewNop())
	svc := NewExpenseService(store, cfgSvc, metrics, zap.NewNop())
	ctx := context.Background()

	_, err := cfgSvc.Set(ctx, "user-1", domain.KindPayType, []string{"微信", "刷卡"})
	require.NoError(t, err)

	in := validInput()
	in.PayType = "刷卡"
	_, err = svc.Create(ctx, "user-1", in)
	require.NoError(t, err)
}

func TestExpenseCreateDropsReimburseAmountForPendingStatus(t *testing.T) {
	svc := newTestExpenseService(&stubExpenseStore{})
	ctx := context.Background()

	in := validInput()
	amt := 30.0
	in.ReimburseAmount = &amt

	created, err := svc.Create(ctx, "user-1", in)
	require.NoError(t, err)
	assert.Nil(t, created.ReimburseAmount)
}

func TestExpenseUpdateReplacesFields(t *testing.T) {
	store := &stubExpenseStore{}
	svc := newTestExpenseService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", validInput())
	require.NoError(t, err)

	amt := 45.5
	updated, err := svc.Update(ctx, created.ID, "user-1", &domain.ExpenseInput{
		Amount:          45.5,
		ReimburseType:   domain.StatusReimbursed,
		ReimburseAmount: &amt,
		PayType:         "支付宝",
		Date:            "2024-03-06",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReimbursed, updated.ReimburseType)
	require.NotNil(t, updated.ReimburseAmount)
	assert.Equal(t, amt, *updated.ReimburseAmount)
	assert.Empty(t, updated.Other)
}

func TestExpenseOwnershipIsolation(t *testing.T) {
	store := &stubExpenseStore{}
	svc := newTestExpenseService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", validInput())
	require.NoError(t, err)

	var nf *domain.ErrNotFound

	_, err = svc.Get(ctx, created.ID, "user-2")
	require.ErrorAs(t, err, &nf)

	_, err = svc.Update(ctx, created.ID, "user-2", validInput())
	require.ErrorAs(t, err, &nf)

	err = svc.Delete(ctx, created.ID, "user-2")
	require.ErrorAs(t, err, &nf)

	// the owner still sees the record
	_, err = svc.Get(ctx, created.ID, "user-1")
	require.NoError(t, err)
}

func TestExpenseListPagination(t *testing.T) {
	store := &stubExpenseStore{}
	svc := newTestExpenseService(store)
	ctx := context.Background()

	base := dateAt(2024, time.January, 1)
	for i := 0; i < 25; i++ {
		in := validInput()
		in.Date = base.AddDate(0, 0, i).Format("2006-01-02")
		in.Other = fmt.Sprintf("record %d", i)
		_, err := svc.Create(ctx, "user-1", in)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, "user-1", domain.Filter{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Expenses, 10)
	// newest first: page 2 starts at the 11th newest, day index 14
	assert.Equal(t, "record 14", page.Expenses[0].Other)
	assert.Equal(t, "record 5", page.Expenses[9].Other)
}

func TestExpenseListDefaultsPagination(t *testing.T) {
	svc := newTestExpenseService(&stubExpenseStore{})

	page, err := svc.List(context.Background(), "user-1", domain.Filter{Page: 0, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPage, page.Page)
	assert.Equal(t, domain.DefaultLimit, page.Limit)
}

func TestExpenseListDateFilter(t *testing.T) {
	store := &stubExpenseStore{}
	svc := newTestExpenseService(store)
	ctx := context.Background()

	for _, day := range []string{"2024-02-28", "2024-03-05", "2024-03-20"} {
		in := validInput()
		in.Date = day
		_, err := svc.Create(ctx, "user-1", in)
		require.NoError(t, err)
	}

	start := domain.StartOfDay(dateAt(2024, time.March, 1))
	end := domain.EndOfDay(dateAt(2024, time.March, 10))
	page, err := svc.List(ctx, "user-1", domain.Filter{StartDate: &start, EndDate: &end, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Expenses, 1)
	assert.Equal(t, int64(1), page.Total)
}
