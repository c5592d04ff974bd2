package domain

import (
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Filter is the ephemeral query shape scoping list, stats and export
// operations. Nil date bounds mean unbounded; empty type constraints mean
// no constraint. It is never persisted.
type Filter struct {
	StartDate     *time.Time
	EndDate       *time.Time
	ReimburseType string
	PayType       string
	Page          int
	Limit         int
}

// Unpaginated returns a copy of the filter with pagination cleared, for the
// stats and export paths which always see the full matching set.
func (f Filter) Unpaginated() Filter {
	f.Page = 0
	f.Limit = 0
	return f
}

// Skip returns the number of rows to skip for the current page.
func (f Filter) Skip() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit
}

// Query encodes the filter as URL query parameters, the exact shape the
// /api/expenses endpoints accept. Used by the client library so that the
// server and clients cannot drift apart on parameter names.
func (f Filter) Query() url.Values {
	q := url.Values{}
	if f.StartDate != nil {
		q.Set("startDate", f.StartDate.Format("2006-01-02"))
	}
	if f.EndDate != nil {
		q.Set("endDate", f.EndDate.Format("2006-01-02"))
	}
	if f.ReimburseType != "" {
		q.Set("reimburseType", f.ReimburseType)
	}
	if f.PayType != "" {
		q.Set("payType", f.PayType)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}
