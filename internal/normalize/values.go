package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/shopspring/decimal"
)

// isoLayouts are tried in order for values that carry a time separator.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02T15:04",
}

const dateLayout = "2006-01-02"

// ParseTimestamp parses an ISO-8601 date-time when s contains "T" or a space
// after the date, otherwise a calendar date. ok is false when nothing matched.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// Postgres and Python render "2006-01-02 15:04:05".
	if len(s) > len(dateLayout) && s[len(dateLayout)] == ' ' {
		s = s[:len(dateLayout)] + "T" + s[len(dateLayout)+1:]
	}
	if strings.Contains(s, "T") {
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// civilTime is satisfied by civil.Date and civil.DateTime from BigQuery.
type civilTime interface {
	In(loc *time.Location) time.Time
}

// toTime converts any of the time representations the backends hand back.
func toTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, !val.IsZero()
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return *val, !val.IsZero()
	case string:
		return ParseTimestamp(val)
	case []byte:
		return ParseTimestamp(string(val))
	case interface{ Time() time.Time }:
		// mongo primitive.DateTime
		return val.Time(), true
	case civilTime:
		return val.In(time.UTC), true
	}
	return time.Time{}, false
}

// toFloat coerces a stored numeric value. Unknown or malformed values give 0.
func toFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return sanitize(val)
	case float32:
		return sanitize(float64(val))
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		return sanitize(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return sanitize(f)
	case *big.Rat:
		if val == nil {
			return 0
		}
		f, _ := val.Float64()
		return f
	case decimal.Decimal:
		return val.InexactFloat64()
	case fmt.Stringer:
		f, err := strconv.ParseFloat(val.String(), 64)
		if err != nil {
			return 0
		}
		return sanitize(f)
	}
	return 0
}

func sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// toString renders identifiers and free text; nil gives "".
func toString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}

// toOptionalString returns nil for absent or blank values.
func toOptionalString(v any, ok bool) *string {
	if !ok {
		return nil
	}
	s := strings.TrimSpace(toString(v))
	if s == "" {
		return nil
	}
	return &s
}

func toBool(v any, def bool) bool {
	switch val := v.(type) {
	case bool:
		return val
	case *bool:
		if val != nil {
			return *val
		}
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return b
		}
	case int64:
		return val != 0
	case int:
		return val != 0
	}
	return def
}

// toAnalysis decodes the stored annotation, which arrives as a map, a named
// map type or a JSON string depending on the backend.
func toAnalysis(v any) *domain.Analysis {
	var raw []byte
	switch val := v.(type) {
	case nil:
		return nil
	case *domain.Analysis:
		return val
	case domain.Analysis:
		return &val
	case string:
		raw = []byte(val)
	case []byte:
		raw = val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return nil
		}
		raw = b
	}
	var a domain.Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil
	}
	if a == (domain.Analysis{}) {
		return nil
	}
	return &a
}

// ParseAmount parses a client-supplied amount, accepting numbers and numeric
// strings. ok is false for anything else.
func ParseAmount(v any) (float64, bool) {
	switch val := v.(type) {
	case float64, float32, int, int32, int64:
		return toFloat(val), true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return sanitize(f), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return sanitize(f), true
	}
	return 0, false
}
