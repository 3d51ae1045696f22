package store

import (
	"context"
	"errors"

	"github.com/dvloznov/finance-coach/internal/domain"
)

// ErrNotFound is returned when a keyed row does not exist.
var ErrNotFound = errors.New("not found")

// TransactionStore provides transaction persistence. Records are returned as
// stored; callers normalize them.
type TransactionStore interface {
	// ListTransactions returns every transaction of a user.
	ListTransactions(ctx context.Context, userID string) ([]domain.Record, error)

	// InsertTransaction stores a single transaction record.
	InsertTransaction(ctx context.Context, rec domain.Record) error
}

// GoalStore provides financial goal persistence.
type GoalStore interface {
	// ListGoals returns every goal of a user, active or not.
	ListGoals(ctx context.Context, userID string) ([]domain.Record, error)

	// InsertGoal stores a single goal record.
	InsertGoal(ctx context.Context, rec domain.Record) error

	// UpdateGoal merges fields into the goal and returns the updated row.
	// It returns ErrNotFound when the user has no goal with that id.
	UpdateGoal(ctx context.Context, userID, goalID string, fields domain.Record) (domain.Record, error)
}

// UserStore provides user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, rec domain.Record) error
	ListUsers(ctx context.Context) ([]domain.Record, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	TransactionStore
	GoalStore
	UserStore

	// Close releases backend resources.
	Close() error
}
