package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/store"
)

// Store keeps records in process memory. It is safe for concurrent use and
// copies records on the way in and out.
type Store struct {
	mu           sync.RWMutex
	transactions map[string][]domain.Record
	goals        map[string][]domain.Record
	users        []domain.Record
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		transactions: make(map[string][]domain.Record),
		goals:        make(map[string][]domain.Record),
	}
}

// ListTransactions implements store.TransactionStore.
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.transactions[userID]), nil
}

// InsertTransaction implements store.TransactionStore.
func (s *Store) InsertTransaction(ctx context.Context, rec domain.Record) error {
	userID, err := userOf(rec)
	if err != nil {
		return fmt.Errorf("InsertTransaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[userID] = append(s.transactions[userID], clone(rec))
	return nil
}

// ListGoals implements store.GoalStore.
func (s *Store) ListGoals(ctx context.Context, userID string) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.goals[userID]), nil
}

// InsertGoal implements store.GoalStore.
func (s *Store) InsertGoal(ctx context.Context, rec domain.Record) error {
	userID, err := userOf(rec)
	if err != nil {
		return fmt.Errorf("InsertGoal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[userID] = append(s.goals[userID], clone(rec))
	return nil
}

// UpdateGoal implements store.GoalStore.
func (s *Store) UpdateGoal(ctx context.Context, userID, goalID string, fields domain.Record) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.goals[userID] {
		if fmt.Sprint(rec[domain.FieldID]) != goalID {
			continue
		}
		for k, v := range fields {
			rec[k] = v
		}
		return clone(rec), nil
	}
	return nil, fmt.Errorf("UpdateGoal: goal %s: %w", goalID, store.ErrNotFound)
}

// CreateUser implements store.UserStore.
func (s *Store) CreateUser(ctx context.Context, rec domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, clone(rec))
	return nil
}

// ListUsers implements store.UserStore.
func (s *Store) ListUsers(ctx context.Context) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.users), nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return nil
}

func userOf(rec domain.Record) (string, error) {
	userID, _ := rec[domain.FieldUserID].(string)
	if userID == "" {
		return "", fmt.Errorf("record has no %s", domain.FieldUserID)
	}
	return userID, nil
}

func clone(rec domain.Record) domain.Record {
	out := make(domain.Record, len(rec))
	for k, v := range rec {
		if nested, ok := v.(map[string]any); ok {
			v = map[string]any(clone(nested))
		}
		out[k] = v
	}
	return out
}

func cloneAll(recs []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, clone(rec))
	}
	return out
}

var _ store.Store = (*Store)(nil)
