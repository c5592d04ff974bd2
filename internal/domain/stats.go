package domain

import "github.com/shopspring/decimal"

// Stats is the derived aggregate over a filter-scoped expense set. Balance
// is reimbursed minus total expense, so it goes negative when spending
// outruns reimbursement.
type Stats struct {
	TotalExpense     float64 `json:"totalExpense"`
	PendingReimburse float64 `json:"pendingReimburse"`
	Reimbursed       float64 `json:"reimbursed"`
	Balance          float64 `json:"balance"`
}

// StatsResponse is the body of GET /api/expenses/stats: the core totals
// plus the per-type and per-day breakdowns the dashboard charts consume.
type StatsResponse struct {
	Stats
	ReimburseTypeStats []TypeStat `json:"reimburseTypeStats"`
	PayTypeStats       []TypeStat `json:"payTypeStats"`
	DateStats          []DateStat `json:"dateStats"`
}

// TypeStat is a per-type breakdown bucket.
type TypeStat struct {
	Type  string  `json:"type" bson:"_id"`
	Total float64 `json:"total" bson:"total"`
	Count int64   `json:"count" bson:"count"`
}

// DateStat is a per-day breakdown bucket.
type DateStat struct {
	Date  string  `json:"date" bson:"_id"`
	Total float64 `json:"total" bson:"total"`
	Count int64   `json:"count" bson:"count"`
}

// Aggregate computes the core totals over the given expense set.
// Accumulation runs in decimals and rounds to two places only at the end,
// so many small amounts cannot compound float error. A reimbursed record
// with a missing reimbursement amount contributes zero rather than failing.
func Aggregate(expenses []Expense) Stats {
	var total, pending, reimbursed decimal.Decimal

	for _, e := range expenses {
		amount := decimal.NewFromFloat(e.Amount)
		total = total.Add(amount)

		if e.ReimburseType == StatusReimbursed {
			if e.ReimburseAmount != nil {
				reimbursed = reimbursed.Add(decimal.NewFromFloat(*e.ReimburseAmount))
			}
		} else {
			pending = pending.Add(amount)
		}
	}

	return Stats{
		TotalExpense:     round2(total),
		PendingReimburse: round2(pending),
		Reimbursed:       round2(reimbursed),
		Balance:          round2(reimbursed.Sub(total)),
	}
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
