package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/store"
)

// Writable columns per table. Keys outside these sets are dropped on write.
var columns = map[string]map[string]bool{
	domain.TableTransactions: set(
		domain.FieldID, domain.FieldUserID, domain.FieldAmount, domain.FieldDescription,
		domain.FieldMerchant, domain.FieldCategory, domain.FieldAICategory, domain.FieldAIInsights,
		domain.FieldTransactionType, domain.FieldProcessedAt, domain.FieldCreatedAt,
	),
	domain.TableGoals: set(
		domain.FieldID, domain.FieldUserID, domain.FieldGoalName, domain.FieldGoalType,
		domain.FieldTargetAmount, domain.FieldCurrentAmount, domain.FieldTargetDate,
		domain.FieldIsActive, domain.FieldCreatedAt, domain.FieldUpdatedAt,
	),
	domain.TableUsers: set(
		domain.FieldID, domain.FieldEmail, domain.FieldName, domain.FieldCreatedAt,
	),
}

// Store is a PostgreSQL backend over a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and verifies the connection.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool wraps an existing pool.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// ListTransactions implements store.TransactionStore.
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]domain.Record, error) {
	return s.selectByUser(ctx, domain.TableTransactions, userID)
}

// InsertTransaction implements store.TransactionStore.
func (s *Store) InsertTransaction(ctx context.Context, rec domain.Record) error {
	return s.insert(ctx, domain.TableTransactions, rec)
}

// ListGoals implements store.GoalStore.
func (s *Store) ListGoals(ctx context.Context, userID string) ([]domain.Record, error) {
	return s.selectByUser(ctx, domain.TableGoals, userID)
}

// InsertGoal implements store.GoalStore.
func (s *Store) InsertGoal(ctx context.Context, rec domain.Record) error {
	return s.insert(ctx, domain.TableGoals, rec)
}

// UpdateGoal implements store.GoalStore.
func (s *Store) UpdateGoal(ctx context.Context, userID, goalID string, fields domain.Record) (domain.Record, error) {
	sql, args, err := buildUpdate(domain.TableGoals, fields, userID, goalID)
	if err != nil {
		return nil, fmt.Errorf("UpdateGoal: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("UpdateGoal: update %s: %w", goalID, err)
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("UpdateGoal: goal %s: %w", goalID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("UpdateGoal: read row: %w", err)
	}
	return toRecord(row), nil
}

// CreateUser implements store.UserStore.
func (s *Store) CreateUser(ctx context.Context, rec domain.Record) error {
	return s.insert(ctx, domain.TableUsers, rec)
}

// ListUsers implements store.UserStore.
func (s *Store) ListUsers(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.pool.Query(ctx, "SELECT * FROM "+pgx.Identifier{domain.TableUsers}.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("ListUsers: query: %w", err)
	}
	return collect(rows)
}

func (s *Store) selectByUser(ctx context.Context, table, userID string) ([]domain.Record, error) {
	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1",
		pgx.Identifier{table}.Sanitize(), pgx.Identifier{domain.FieldUserID}.Sanitize())

	rows, err := s.pool.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("selectByUser: query %s: %w", table, err)
	}
	recs, err := collect(rows)
	if err != nil {
		return nil, fmt.Errorf("selectByUser: %s: %w", table, err)
	}
	return recs, nil
}

func (s *Store) insert(ctx context.Context, table string, rec domain.Record) error {
	sql, args, err := buildInsert(table, rec)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert: %s: %w", table, err)
	}
	return nil
}

// buildInsert renders a parameterized INSERT for the known columns of rec.
func buildInsert(table string, rec domain.Record) (string, []any, error) {
	cols := writable(table, rec)
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("buildInsert: no writable columns for %s", table)
	}

	names := make([]string, len(cols))
	params := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		names[i] = pgx.Identifier{c}.Sanitize()
		params[i] = fmt.Sprintf("$%d", i+1)
		args[i] = rec[c]
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{table}.Sanitize(), strings.Join(names, ", "), strings.Join(params, ", "))
	return sql, args, nil
}

// buildUpdate renders a parameterized UPDATE ... RETURNING * scoped to one
// user's row.
func buildUpdate(table string, fields domain.Record, userID, id string) (string, []any, error) {
	cols := writable(table, fields)
	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+2)
	for _, c := range cols {
		if c == domain.FieldID || c == domain.FieldUserID {
			continue
		}
		args = append(args, fields[c])
		sets = append(sets, fmt.Sprintf("%s = $%d", pgx.Identifier{c}.Sanitize(), len(args)))
	}
	if len(sets) == 0 {
		return "", nil, fmt.Errorf("buildUpdate: no writable columns for %s", table)
	}

	args = append(args, userID, id)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d AND %s = $%d RETURNING *",
		pgx.Identifier{table}.Sanitize(), strings.Join(sets, ", "),
		pgx.Identifier{domain.FieldUserID}.Sanitize(), len(args)-1,
		pgx.Identifier{domain.FieldID}.Sanitize(), len(args))
	return sql, args, nil
}

func writable(table string, rec domain.Record) []string {
	allowed := columns[table]
	cols := make([]string, 0, len(rec))
	for k := range rec {
		if allowed[k] {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	return cols
}

func collect(rows pgx.Rows) ([]domain.Record, error) {
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	out := make([]domain.Record, 0, len(maps))
	for _, m := range maps {
		out = append(out, toRecord(m))
	}
	return out, nil
}

// toRecord converts pgx driver values into plain Go values.
func toRecord(m map[string]any) domain.Record {
	rec := make(domain.Record, len(m))
	for k, v := range m {
		rec[k] = plain(v)
	}
	return rec
}

func plain(v any) any {
	switch t := v.(type) {
	case pgtype.Numeric:
		if !t.Valid {
			return nil
		}
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(t).String()
	default:
		return v
	}
}

func set(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

var _ store.Store = (*Store)(nil)
