package service

import (
	"context"
	"strconv"
	"time"

	"github.com/miniledger/easyexp-go/internal/domain"
)

// stubUserStore keeps users in memory, keyed by id.
type stubUserStore struct {
	users  map[string]*domain.User
	nextID int
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[string]*domain.User)}
}

func (s *stubUserStore) CreateUser(_ context.Context, user *domain.User) (string, error) {
	for _, u := range s.users {
		if u.Username == user.Username {
			return "", &domain.ErrConflict{Message: "用户名已存在"}
		}
	}
	s.nextID++
	id := "user-" + strconv.Itoa(s.nextID)
	cp := *user
	cp.ID = id
	s.users[id] = &cp
	return id, nil
}

func (s *stubUserStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubUserStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	cp := *u
	return &cp, nil
}

func (s *stubUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := s.users[id]
	if !ok {
		return &domain.ErrNotFound{Resource: "user", ID: id}
	}
	u.PasswordHash = passwordHash
	return nil
}

// stubExpenseStore keeps records in insertion order and applies the same
// filter semantics as the real store, minus the database.
type stubExpenseStore struct {
	expenses []domain.Expense
	nextID   int
}

func (s *stubExpenseStore) matching(userID string, f domain.Filter) []domain.Expense {
	var out []domain.Expense
	for _, e := range s.expenses {
		if e.UserID != userID {
			continue
		}
		if f.StartDate != nil && e.Date.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && e.Date.After(*f.EndDate) {
			continue
		}
		if f.ReimburseType != "" && e.ReimburseType != f.ReimburseType {
			continue
		}
		if f.PayType != "" && e.PayType != f.PayType {
			continue
		}
		out = append(out, e)
	}
	// newest first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Date.After(out[i].Date) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func (s *stubExpenseStore) List(_ context.Context, userID string, f domain.Filter) ([]domain.Expense, int64, error) {
	all := s.matching(userID, f)
	total := int64(len(all))
	if f.Limit > 0 {
		start := f.Skip()
		if start > len(all) {
			start = len(all)
		}
		end := start + f.Limit
		if end > len(all) {
			end = len(all)
		}
		all = all[start:end]
	}
	return all, total, nil
}

func (s *stubExpenseStore) ListAll(_ context.Context, userID string, f domain.Filter) ([]domain.Expense, error) {
	return s.matching(userID, f), nil
}

func (s *stubExpenseStore) Create(_ context.Context, e *domain.Expense) (string, error) {
	s.nextID++
	id := "exp-" + strconv.Itoa(s.nextID)
	cp := *e
	cp.ID = id
	s.expenses = append(s.expenses, cp)
	return id, nil
}

func (s *stubExpenseStore) Get(_ context.Context, id, userID string) (*domain.Expense, error) {
	for _, e := range s.expenses {
		if e.ID == id && e.UserID == userID {
			cp := e
			return &cp, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "expense", ID: id}
}

func (s *stubExpenseStore) Update(_ context.Context, id, userID string, in *domain.Expense) error {
	for i, e := range s.expenses {
		if e.ID == id && e.UserID == userID {
			cp := *in
			cp.ID = id
			cp.UserID = userID
			cp.CreateTime = e.CreateTime
			s.expenses[i] = cp
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "expense", ID: id}
}

func (s *stubExpenseStore) Delete(_ context.Context, id, userID string) error {
	for i, e := range s.expenses {
		if e.ID == id && e.UserID == userID {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "expense", ID: id}
}

func (s *stubExpenseStore) GroupByReimburseType(_ context.Context, userID string, f domain.Filter) ([]domain.TypeStat, error) {
	return s.groupBy(userID, f, func(e domain.Expense) string { return e.ReimburseType }), nil
}

func (s *stubExpenseStore) GroupByPayType(_ context.Context, userID string, f domain.Filter) ([]domain.TypeStat, error) {
	return s.groupBy(userID, f, func(e domain.Expense) string { return e.PayType }), nil
}

func (s *stubExpenseStore) GroupByDate(_ context.Context, userID string, f domain.Filter) ([]domain.DateStat, error) {
	buckets := make(map[string]*domain.DateStat)
	var order []string
	for _, e := range s.matching(userID, f) {
		key := e.Date.Format("2006-01-02")
		b, ok := buckets[key]
		if !ok {
			b = &domain.DateStat{Date: key}
			buckets[key] = b
			order = append(order, key)
		}
		b.Total += e.Amount
		b.Count++
	}
	out := make([]domain.DateStat, 0, len(order))
	for _, key := range order {
		out = append(out, *buckets[key])
	}
	return out, nil
}

func (s *stubExpenseStore) groupBy(userID string, f domain.Filter, key func(domain.Expense) string) []domain.TypeStat {
	buckets := make(map[string]*domain.TypeStat)
	var order []string
	for _, e := range s.matching(userID, f) {
		k := key(e)
		b, ok := buckets[k]
		if !ok {
			b = &domain.TypeStat{Type: k}
			buckets[k] = b
			order = append(order, k)
		}
		b.Total += e.Amount
		b.Count++
	}
	out := make([]domain.TypeStat, 0, len(order))
	for _, k := range order {
		out = append(out, *buckets[k])
	}
	return out
}

// stubConfigStore keeps vocabulary documents keyed by user and kind.
type stubConfigStore struct {
	options map[string]map[domain.VocabKind][]string
}

func newStubConfigStore() *stubConfigStore {
	return &stubConfigStore{options: make(map[string]map[domain.VocabKind][]string)}
}

func (s *stubConfigStore) GetOptions(_ context.Context, userID string, kind domain.VocabKind) ([]string, bool, error) {
	kinds, ok := s.options[userID]
	if !ok {
		return nil, false, nil
	}
	opts, ok := kinds[kind]
	if !ok {
		return nil, false, nil
	}
	return append([]string(nil), opts...), true, nil
}

func (s *stubConfigStore) SetOptions(_ context.Context, userID string, kind domain.VocabKind, options []string) error {
	kinds, ok := s.options[userID]
	if !ok {
		kinds = make(map[domain.VocabKind][]string)
		s.options[userID] = kinds
	}
	kinds[kind] = append([]string(nil), options...)
	return nil
}

// noopCache never hits, so tests exercise the store path unless a test
// wants caching, in which case it uses the real in-memory cache.
type noopCache[T any] struct{}

func (noopCache[T]) Get(string) (T, bool) { var zero T; return zero, false }
func (noopCache[T]) Set(string, T)        {}
func (noopCache[T]) Delete(string)        {}

func dateAt(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
