package domain

// VocabKind selects one of the two user-scoped vocabularies.
type VocabKind string

const (
	KindReimburseType VocabKind = "reimburseType"
	KindPayType       VocabKind = "payType"
)

// Valid reports whether k names a known vocabulary.
func (k VocabKind) Valid() bool {
	return k == KindReimburseType || k == KindPayType
}

// DefaultReimburseTypes returns the seed reimbursement statuses used until a
// user stores their own list.
func DefaultReimburseTypes() []string {
	return []string{"待报销", "报销中", StatusReimbursed}
}

// DefaultPayTypes returns the seed payment methods.
func DefaultPayTypes() []string {
	return []string{"微信", "支付宝", "现金", "网银"}
}

// Config is the pair of vocabularies returned to clients. Both lists are
// always present; config writes return the full refreshed pair so callers
// re-sync in one round trip.
type Config struct {
	ReimburseTypes []string `json:"reimburseTypes"`
	PayTypes       []string `json:"payTypes"`
}

// List returns the vocabulary selected by kind.
func (c Config) List(kind VocabKind) []string {
	if kind == KindPayType {
		return c.PayTypes
	}
	return c.ReimburseTypes
}

// Vocabulary edits are read-modify-write over the full options list; the
// stored document is always replaced wholesale. Values are matched by
// display string; there is no stable id behind a type name.

// AddOption appends value to the list. Adding a value that is already
// present is a conflict so a duplicate cannot be created by accident.
func AddOption(list []string, value string) ([]string, error) {
	if value == "" {
		return nil, &ErrValidation{Field: "option", Message: "类型名称不能为空"}
	}
	if indexOf(list, value) >= 0 {
		return nil, &ErrConflict{Message: "类型已存在: " + value}
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list...)
	return append(out, value), nil
}

// RenameOption replaces old with new in place, keeping display order.
// Renaming a value that is not present is reported as not found, and a new
// name that collides with an existing entry is a conflict. Expenses that
// reference the old name keep it.
func RenameOption(list []string, oldValue, newValue string) ([]string, error) {
	if newValue == "" {
		return nil, &ErrValidation{Field: "option", Message: "类型名称不能为空"}
	}
	i := indexOf(list, oldValue)
	if i < 0 {
		return nil, &ErrNotFound{Resource: "option", ID: oldValue}
	}
	if oldValue != newValue && indexOf(list, newValue) >= 0 {
		return nil, &ErrConflict{Message: "类型已存在: " + newValue}
	}
	out := make([]string, len(list))
	copy(out, list)
	out[i] = newValue
	return out, nil
}

// RemoveOption deletes value from the list. Removing a value that is not
// present is reported as not found rather than silently ignored.
func RemoveOption(list []string, value string) ([]string, error) {
	i := indexOf(list, value)
	if i < 0 {
		return nil, &ErrNotFound{Resource: "option", ID: value}
	}
	out := make([]string, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), nil
}

// Contains reports whether value is in the list.
func Contains(list []string, value string) bool {
	return indexOf(list, value) >= 0
}

func indexOf(list []string, value string) int {
	for i, v := range list {
		if v == value {
			return i
		}
	}
	return -1
}
