// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/miniledger/easyexp-go/internal/domain"
)

// UserStore defines persistence for user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) (string, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// ExpenseStore defines persistence for expense records. Every operation is
// scoped by userID; an id that exists but belongs to another user behaves
// exactly like a missing id.
type ExpenseStore interface {
	// List returns one page sorted by date descending, plus the total
	// matching count ignoring pagination.
	List(ctx context.Context, userID string, f domain.Filter) ([]domain.Expense, int64, error)
	// ListAll returns every matching row sorted by date descending.
	ListAll(ctx context.Context, userID string, f domain.Filter) ([]domain.Expense, error)
	Create(ctx context.Context, e *domain.Expense) (string, error)
	Get(ctx context.Context, id, userID string) (*domain.Expense, error)
	// Update replaces the mutable fields wholesale.
	Update(ctx context.Context, id, userID string, in *domain.Expense) error
	Delete(ctx context.Context, id, userID string) error

	// Breakdown aggregations for the stats endpoint.
	GroupByReimburseType(ctx context.Context, userID string, f domain.Filter) ([]domain.TypeStat, error)
	GroupByPayType(ctx context.Context, userID string, f domain.Filter) ([]domain.TypeStat, error)
	GroupByDate(ctx context.Context, userID string, f domain.Filter) ([]domain.DateStat, error)
}

// ConfigStore defines persistence for the per-(user, kind) vocabulary
// documents. GetOptions reports found=false when the user has never stored
// that vocabulary; seeding with defaults is the service's concern.
type ConfigStore interface {
	GetOptions(ctx context.Context, userID string, kind domain.VocabKind) (options []string, found bool, err error)
	SetOptions(ctx context.Context, userID string, kind domain.VocabKind, options []string) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// Pinger reports storage liveness for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
