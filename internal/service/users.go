package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/normalize"
)

// CreateUser stores a new user and seeds an analyzed synthetic history. A
// blank email is replaced with a generated one. Seeding failures of single
// transactions are logged and skipped.
func (s *Service) CreateUser(ctx context.Context, email, name string) (domain.User, error) {
	email, name = strings.TrimSpace(email), strings.TrimSpace(name)
	if email == "" {
		email, _ = s.data.Profile()
	}
	if name == "" {
		name = "User"
	}

	user := domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateUser(ctx, normalize.UserRecord(user)); err != nil {
		return domain.User{}, fmt.Errorf("CreateUser: insert user: %w", err)
	}

	seeded := s.seedTransactions(ctx, user.ID, SeedTransactions)
	s.log.Info().
		Str("user_id", user.ID).
		Int("seeded", seeded).
		Int("requested", SeedTransactions).
		Msg("User created")

	return user, nil
}

// ListUserIDs returns the id of every stored user.
func (s *Service) ListUserIDs(ctx context.Context) ([]string, error) {
	recs, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListUserIDs: %w", err)
	}
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		if u := normalize.User(rec, s.now()); u.ID != "" {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

// seedTransactions stores n analyzed synthetic payments and returns how many
// were written. Model analysis shares one SeedTimeout budget; once it is spent
// the coach answers with fallbacks without calling the model.
func (s *Service) seedTransactions(ctx context.Context, userID string, n int) int {
	analyzeCtx, cancel := context.WithTimeout(ctx, s.cfg.SeedTimeout)
	defer cancel()

	now := s.now()
	written := 0
	for _, tx := range s.data.Transactions(userID, n, now) {
		if ctx.Err() != nil {
			break
		}
		s.annotate(analyzeCtx, &tx)

		rec := normalize.TransactionRecord(tx)
		rec[domain.FieldCreatedAt] = now.Format(time.RFC3339Nano)
		if err := s.store.InsertTransaction(ctx, rec); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Str("transaction_id", tx.ID).Msg("Skipping seed transaction")
			continue
		}
		written++
	}
	return written
}
