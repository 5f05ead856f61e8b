package datatable

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
)

// fieldRef is a fully resolved terminal field: a qualified column plus an
// optional JSONB sub-key (the locale code for localized columns).
type fieldRef struct {
	column  string // e.g. "posts.title" or "dt0.name"
	jsonKey string // "" for plain columns
}

func (f fieldRef) isJSON() bool { return f.jsonKey != "" }

// textExpr extracts the sub-key as text, or returns the plain column.
func (f fieldRef) textExpr() string {
	if f.jsonKey == "" {
		return f.column
	}
	return fmt.Sprintf("%s->>'%s'", f.column, f.jsonKey)
}

// jsonExpr keeps the sub-key as JSONB, for containment checks.
func (f fieldRef) jsonExpr() string {
	if f.jsonKey == "" {
		return f.column
	}
	return fmt.Sprintf("%s->'%s'", f.column, f.jsonKey)
}

// likeExpr is textExpr with plain columns cast to text, so substring
// matching on numeric or timestamp columns still renders valid SQL.
// ->> already yields text and needs no cast.
func (f fieldRef) likeExpr() string {
	if f.jsonKey == "" {
		return f.column + "::text"
	}
	return f.textExpr()
}

// buildPredicate turns one constraint into a squirrel predicate against the
// resolved field. ILIKE keeps the substring modes case-insensitive, matching
// what the dashboard expects from its search boxes. Equality on localized
// columns goes through ->> so the decoded value is compared, not an escaped
// JSON literal.
func buildPredicate(f fieldRef, c Constraint) squirrel.Sqlizer {
	expr := f.textExpr()

	switch c.Mode {
	case MatchStartsWith:
		return squirrel.ILike{f.likeExpr(): stringValue(c.Value) + "%"}
	case MatchEndsWith:
		return squirrel.ILike{f.likeExpr(): "%" + stringValue(c.Value)}
	case MatchNotContains:
		return squirrel.NotILike{f.likeExpr(): "%" + stringValue(c.Value) + "%"}
	case MatchEquals:
		return squirrel.Eq{expr: c.Value}
	case MatchNotEquals:
		return squirrel.NotEq{expr: c.Value}
	case MatchIn:
		return buildIn(f, c.Value)
	case MatchLt:
		return squirrel.Lt{expr: c.Value}
	case MatchLte:
		return squirrel.LtOrEq{expr: c.Value}
	case MatchGt:
		return squirrel.Gt{expr: c.Value}
	case MatchGte:
		return squirrel.GtOrEq{expr: c.Value}
	case MatchBetween:
		return buildBetween(expr, c.Value)
	case MatchDateIs:
		return buildDate(expr, "=", c.Value)
	case MatchDateIsNot:
		return buildDate(expr, "!=", c.Value)
	case MatchDateBefore:
		return buildDate(expr, "<=", c.Value)
	case MatchDateAfter:
		return buildDate(expr, ">", c.Value)
	case MatchContains:
		fallthrough
	default:
		return squirrel.ILike{f.likeExpr(): "%" + stringValue(c.Value) + "%"}
	}
}

// buildIn matches when the column equals any of the supplied values. For
// JSONB fields this becomes an OR of containment checks per value.
func buildIn(f fieldRef, value any) squirrel.Sqlizer {
	values, ok := value.([]any)
	if !ok {
		return squirrel.Eq{f.textExpr(): value}
	}
	if !f.isJSON() {
		return squirrel.Eq{f.textExpr(): values}
	}

	parts := make(squirrel.Or, 0, len(values))
	for _, v := range values {
		enc, err := json.Marshal(v)
		if err != nil {
			continue
		}
		parts = append(parts, squirrel.Expr(f.jsonExpr()+" @> ?", string(enc)))
	}
	if len(parts) == 0 {
		return nil
	}
	return parts
}

func buildBetween(expr string, value any) squirrel.Sqlizer {
	bounds, ok := value.([]any)
	if !ok || len(bounds) < 2 {
		return nil
	}
	return squirrel.Expr(fmt.Sprintf("%s BETWEEN ? AND ?", expr), bounds[0], bounds[1])
}

// buildDate compares the date portion of a timestamp column. The parsed
// bound is shifted one day forward: the dashboard sends local-midnight
// timestamps and relies on this boundary convention.
func buildDate(expr, op string, value any) squirrel.Sqlizer {
	t, ok := parseTime(value)
	if !ok {
		return nil
	}
	day := t.AddDate(0, 0, 1).Format("2006-01-02")
	return squirrel.Expr(fmt.Sprintf("(%s)::date %s ?", expr, op), day)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
