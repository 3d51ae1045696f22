package bigquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/store"
)

// goalUpdatable lists the columns UpdateGoalWithClient may set.
var goalUpdatable = map[string]bool{
	domain.FieldGoalName:      true,
	domain.FieldGoalType:      true,
	domain.FieldTargetAmount:  true,
	domain.FieldCurrentAmount: true,
	domain.FieldTargetDate:    true,
	domain.FieldIsActive:      true,
	domain.FieldUpdatedAt:     true,
}

// ListByUserWithClient reads every row of table that belongs to userID.
func ListByUserWithClient(ctx context.Context, client *bigquery.Client, dataset, table, userID string) ([]domain.Record, error) {
	q := client.Query(fmt.Sprintf("SELECT * FROM `%s` WHERE user_id = @user_id", qualified(client, dataset, table)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	recs, err := readRecords(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("ListByUserWithClient: %s: %w", table, err)
	}
	return recs, nil
}

// ListAllWithClient reads every row of table.
func ListAllWithClient(ctx context.Context, client *bigquery.Client, dataset, table string) ([]domain.Record, error) {
	q := client.Query(fmt.Sprintf("SELECT * FROM `%s`", qualified(client, dataset, table)))

	recs, err := readRecords(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("ListAllWithClient: %s: %w", table, err)
	}
	return recs, nil
}

// InsertRecordWithClient streams one record into table.
func InsertRecordWithClient(ctx context.Context, client *bigquery.Client, dataset, table string, rec domain.Record) error {
	inserter := client.Dataset(dataset).Table(table).Inserter()
	if err := inserter.Put(ctx, recordSaver{rec: rec}); err != nil {
		return fmt.Errorf("InsertRecordWithClient: inserting into %s: %w", table, err)
	}
	return nil
}

// UpdateGoalWithClient applies fields to one goal with a DML statement and
// reads the row back.
func UpdateGoalWithClient(ctx context.Context, client *bigquery.Client, dataset, userID, goalID string, fields domain.Record) (domain.Record, error) {
	sql, params, err := buildGoalUpdate(qualified(client, dataset, domain.TableGoals), fields)
	if err != nil {
		return nil, fmt.Errorf("UpdateGoalWithClient: %w", err)
	}

	q := client.Query(sql)
	q.Parameters = append(params,
		bigquery.QueryParameter{Name: "user_id", Value: userID},
		bigquery.QueryParameter{Name: "goal_id", Value: goalID},
	)

	job, err := q.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("UpdateGoalWithClient: running update: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("UpdateGoalWithClient: waiting for update: %w", err)
	}
	if err := status.Err(); err != nil {
		return nil, fmt.Errorf("UpdateGoalWithClient: update failed: %w", err)
	}

	sel := client.Query(fmt.Sprintf("SELECT * FROM `%s` WHERE user_id = @user_id AND id = @goal_id LIMIT 1",
		qualified(client, dataset, domain.TableGoals)))
	sel.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "goal_id", Value: goalID},
	}
	recs, err := readRecords(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("UpdateGoalWithClient: reading back: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("UpdateGoalWithClient: goal %s: %w", goalID, store.ErrNotFound)
	}
	return recs[0], nil
}

// buildGoalUpdate renders the UPDATE statement for the updatable subset of
// fields. Nil values become SQL NULL since parameters need a typed value.
func buildGoalUpdate(table string, fields domain.Record) (string, []bigquery.QueryParameter, error) {
	cols := make([]string, 0, len(fields))
	for k := range fields {
		if goalUpdatable[k] {
			cols = append(cols, k)
		}
	}
	if len(cols) == 0 {
		return "", nil, errors.New("buildGoalUpdate: no updatable fields")
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols))
	var params []bigquery.QueryParameter
	for _, c := range cols {
		v := fields[c]
		if v == nil {
			sets = append(sets, c+" = NULL")
			continue
		}
		name := "p_" + c
		sets = append(sets, fmt.Sprintf("%s = @%s", c, name))
		params = append(params, bigquery.QueryParameter{Name: name, Value: v})
	}

	sql := fmt.Sprintf("UPDATE `%s` SET %s WHERE user_id = @user_id AND id = @goal_id", table, strings.Join(sets, ", "))
	return sql, params, nil
}

func readRecords(ctx context.Context, q *bigquery.Query) ([]domain.Record, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("running query: %w", err)
	}

	var out []domain.Record
	for {
		var row map[string]bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		rec := make(domain.Record, len(row))
		for k, v := range row {
			rec[k] = v
		}
		out = append(out, rec)
	}
	return out, nil
}

func qualified(client *bigquery.Client, dataset, table string) string {
	return fmt.Sprintf("%s.%s.%s", client.Project(), dataset, table)
}

// recordSaver adapts a record to bigquery.ValueSaver. Nested maps are sent
// as JSON text for JSON columns; the record id doubles as the insert id.
type recordSaver struct {
	rec domain.Record
}

func (s recordSaver) Save() (map[string]bigquery.Value, string, error) {
	row := make(map[string]bigquery.Value, len(s.rec))
	for k, v := range s.rec {
		if nested, ok := v.(map[string]any); ok {
			b, err := json.Marshal(nested)
			if err != nil {
				return nil, "", fmt.Errorf("recordSaver: encoding %s: %w", k, err)
			}
			v = string(b)
		}
		row[k] = v
	}
	insertID, _ := s.rec[domain.FieldID].(string)
	return row, insertID, nil
}

var _ bigquery.ValueSaver = recordSaver{}
