package datatable

import (
	"context"
	"fmt"

	"BlogCMS/internal/entity"
	"BlogCMS/internal/logger"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// Querier is the slice of pgxpool.Pool the engine needs. The engine is
// strictly read-only: it composes and runs SELECTs, nothing else.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BaseQuery is the caller-owned starting point: the entity to page over,
// an optional pre-applied scope, the default ordering used when the client
// does not sort, and relations to always eager-load into the result rows.
type BaseQuery struct {
	Entity       *entity.Entity
	Scope        squirrel.Sqlizer
	DefaultOrder []string
	With         []string
}

// Page is the result contract: one page of rows plus count metadata, in
// the shape the dashboard list views consume.
type Page struct {
	Data  []map[string]any `json:"data"`
	Links PageLinks        `json:"links"`
	Meta  PageMeta         `json:"meta"`
}

type PageLinks struct {
	First int  `json:"first"`
	Last  int  `json:"last"`
	Prev  *int `json:"prev"`
	Next  *int `json:"next"`
}

type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	From        int   `json:"from"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	To          int   `json:"to"`
	Total       int64 `json:"total"`
}

type Engine struct {
	db Querier
}

func NewEngine(db Querier) *Engine {
	return &Engine{db: db}
}

// Make composes and executes one list query: global filter (OR over the
// searchable columns), per-field filter groups (ANDed together), ordering,
// then count + page fetch. Repeated calls with identical inputs against
// unchanged data return identical pages.
func (e *Engine) Make(ctx context.Context, base BaseQuery, params Params, searchable []string) (*Page, error) {
	if base.Entity == nil {
		return nil, fmt.Errorf("datatable: base query has no entity")
	}
	res := &resolver{root: base.Entity}

	where := buildWhere(res, base, params, searchable)

	currentPage := params.Page + 1
	perPage := params.Rows
	if perPage <= 0 {
		perPage = defaultRows
	}

	total, err := e.runCount(ctx, base, where)
	if err != nil {
		return nil, fmt.Errorf("datatable: count: %w", err)
	}

	itemsSQL, args, err := buildItemsQuery(res, base, params, where, perPage, currentPage).ToSql()
	if err != nil {
		return nil, fmt.Errorf("datatable: build items query: %w", err)
	}
	logger.Debug("dt_sql", map[string]any{"sql": itemsSQL, "args": args})

	rows, err := e.db.Query(ctx, itemsSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("datatable: query items: %w", err)
	}
	items, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("datatable: scan items: %w", err)
	}

	eager := mergeRelationPaths(base.With, res.eagerRelations(searchable))
	if len(items) > 0 && len(eager) > 0 {
		if err := e.loadRelations(ctx, base.Entity, items, eager); err != nil {
			return nil, fmt.Errorf("datatable: eager load: %w", err)
		}
	}

	return newPage(items, total, currentPage, perPage), nil
}

// buildWhere accumulates the scope, the OR group of the global filter and
// the per-field groups. Unresolvable paths contribute nothing.
func buildWhere(res *resolver, base BaseQuery, params Params, searchable []string) squirrel.Sqlizer {
	var preds []squirrel.Sqlizer
	if base.Scope != nil {
		preds = append(preds, base.Scope)
	}

	if params.Global != nil {
		group := make(squirrel.Or, 0, len(searchable))
		for _, column := range searchable {
			if p, ok := res.predicate(column, *params.Global); ok {
				group = append(group, p)
			}
		}
		if len(group) > 0 {
			preds = append(preds, group)
		}
	}

	for field, ff := range params.Fields {
		var group []squirrel.Sqlizer
		for _, c := range ff.Constraints {
			if p, ok := res.predicate(field, c); ok {
				group = append(group, p)
			}
		}
		if len(group) == 0 {
			continue
		}
		if ff.Or && len(group) > 1 {
			preds = append(preds, squirrel.Or(group))
		} else if len(group) > 1 {
			preds = append(preds, squirrel.And(group))
		} else {
			preds = append(preds, group[0])
		}
	}

	if len(preds) == 0 {
		return nil
	}
	return squirrel.And(preds)
}

func buildItemsQuery(res *resolver, base BaseQuery, params Params, where squirrel.Sqlizer, perPage, currentPage int) squirrel.SelectBuilder {
	sb := squirrel.Select(base.Entity.SelectColumns()...).
		From(base.Entity.Table).
		PlaceholderFormat(squirrel.Dollar)
	if where != nil {
		sb = sb.Where(where)
	}

	ordered := false
	if params.HasSort {
		if clause, ok := res.orderClause(params.SortField, params.SortAsc); ok {
			sb = sb.OrderBy(clause)
			ordered = true
		}
	}
	if !ordered {
		for _, clause := range base.DefaultOrder {
			sb = sb.OrderBy(clause)
		}
	}

	sb = sb.Limit(uint64(perPage)).Offset(uint64((currentPage - 1) * perPage))
	return sb
}

func buildCountQuery(base BaseQuery, where squirrel.Sqlizer) squirrel.SelectBuilder {
	sb := squirrel.Select("COUNT(*)").
		From(base.Entity.Table).
		PlaceholderFormat(squirrel.Dollar)
	if where != nil {
		sb = sb.Where(where)
	}
	return sb
}

func (e *Engine) runCount(ctx context.Context, base BaseQuery, where squirrel.Sqlizer) (int64, error) {
	countSQL, args, err := buildCountQuery(base, where).ToSql()
	if err != nil {
		return 0, err
	}
	var total int64
	if err := e.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func scanRows(rows pgx.Rows) ([]map[string]any, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	items := make([]map[string]any, 0, defaultRows)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		item := make(map[string]any, len(fields))
		for i, fd := range fields {
			item[fd.Name] = values[i]
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func newPage(items []map[string]any, total int64, currentPage, perPage int) *Page {
	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}

	from, to := 0, 0
	if len(items) > 0 {
		from = (currentPage-1)*perPage + 1
		to = from + len(items) - 1
	}

	links := PageLinks{First: 1, Last: lastPage}
	if currentPage > 1 {
		prev := currentPage - 1
		links.Prev = &prev
	}
	if currentPage < lastPage {
		next := currentPage + 1
		links.Next = &next
	}

	return &Page{
		Data:  items,
		Links: links,
		Meta: PageMeta{
			CurrentPage: currentPage,
			From:        from,
			LastPage:    lastPage,
			PerPage:     perPage,
			To:          to,
			Total:       total,
		},
	}
}

func mergeRelationPaths(a, b []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(a)+len(b))
	for _, paths := range [][]string{a, b} {
		for _, p := range paths {
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
