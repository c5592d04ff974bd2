// Package domain holds the core types and the logic shared between the
// server services and the terminal client: expense validation, vocabulary
// edits, date-range resolution and statistics bucketing.
package domain

import "time"

// StatusReimbursed is the one reimbursement status with special meaning:
// records carrying it contribute their reimbursement amount (not their
// expense amount) to the reimbursed total. Every other status (including
// user-defined ones) counts as "not yet fully reimbursed".
const StatusReimbursed = "已报销"

// Expense is a single recorded expense, owned by exactly one user.
type Expense struct {
	ID              string    `json:"id" bson:"-"`
	UserID          string    `json:"userId" bson:"userId"`
	Amount          float64   `json:"amount" bson:"amount"`
	ReimburseType   string    `json:"reimburseType" bson:"reimburseType"`
	ReimburseAmount *float64  `json:"reimburseAmount,omitempty" bson:"reimburseAmount,omitempty"`
	PayType         string    `json:"payType" bson:"payType"`
	Date            time.Time `json:"date" bson:"date"`
	Other           string    `json:"other,omitempty" bson:"other,omitempty"`
	CreateTime      time.Time `json:"createTime" bson:"createTime"`
}

// ExpenseInput carries the mutable fields of an expense as submitted by a
// client. Create and update share it; updates are a full replace, not a
// merge.
type ExpenseInput struct {
	Amount          float64  `json:"amount"`
	ReimburseType   string   `json:"reimburseType"`
	ReimburseAmount *float64 `json:"reimburseAmount,omitempty"`
	PayType         string   `json:"payType"`
	Date            string   `json:"date"`
	Other           string   `json:"other,omitempty"`
}

// Validate checks the field-level rules. Vocabulary membership is checked
// separately by the service because it needs the user's config.
func (in *ExpenseInput) Validate() error {
	if in.Amount <= 0 {
		return &ErrValidation{Field: "amount", Message: "金额必须为正数"}
	}
	if in.ReimburseType == "" {
		return &ErrValidation{Field: "reimburseType", Message: "报销类型不能为空"}
	}
	if in.PayType == "" {
		return &ErrValidation{Field: "payType", Message: "支付类型不能为空"}
	}
	if in.Date == "" {
		return &ErrValidation{Field: "date", Message: "日期不能为空"}
	}
	if _, err := ParseDate(in.Date); err != nil {
		return &ErrValidation{Field: "date", Message: "日期格式无效"}
	}
	if in.ReimburseType == StatusReimbursed {
		if in.ReimburseAmount == nil || *in.ReimburseAmount <= 0 {
			return &ErrValidation{Field: "reimburseAmount", Message: "已报销类型必须填写报销金额且为正数"}
		}
	}
	return nil
}

// ParseDate parses a calendar date as sent by clients. Plain dates are the
// common case; full timestamps are accepted for compatibility with the
// mobile client.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
