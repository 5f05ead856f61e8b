package datatable

import (
	"context"
	"fmt"
	"strings"

	"BlogCMS/internal/entity"
	"BlogCMS/internal/logger"

	"github.com/Masterminds/squirrel"
)

const parentKeyAlias = "__parent_id"

// loadRelations attaches related records to the already-fetched items.
// Each relation is loaded with one batched query over the collected parent
// keys; nested paths ("a.b") recurse onto the loaded children.
func (e *Engine) loadRelations(ctx context.Context, ent *entity.Entity, items []map[string]any, paths []string) error {
	byHead := map[string][]string{}
	for _, p := range paths {
		head, tail, found := strings.Cut(p, ".")
		if _, exists := byHead[head]; !exists {
			byHead[head] = nil
		}
		if found && tail != "" {
			byHead[head] = append(byHead[head], tail)
		}
	}

	for head, tails := range byHead {
		rel, ok := ent.Relation(head)
		if !ok {
			logger.Warn("dt_eager_unknown_relation", map[string]any{
				"entity":   ent.Name,
				"relation": head,
			})
			continue
		}
		target, ok := entity.Get(rel.Target)
		if !ok {
			continue
		}

		children, err := e.loadOne(ctx, ent, rel, target, head, items)
		if err != nil {
			return fmt.Errorf("relation %s: %w", head, err)
		}
		if len(tails) > 0 && len(children) > 0 {
			if err := e.loadRelations(ctx, target, children, tails); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadOne fetches and attaches one relation. Returns the loaded child rows
// so nested paths can continue from them.
func (e *Engine) loadOne(ctx context.Context, parent *entity.Entity, rel *entity.Relation, target *entity.Entity, name string, items []map[string]any) ([]map[string]any, error) {
	switch rel.Kind {
	case entity.BelongsTo:
		return e.loadBelongsTo(ctx, rel, target, name, items)
	case entity.HasMany:
		return e.loadHasMany(ctx, rel, target, name, items)
	case entity.BelongsToMany:
		return e.loadBelongsToMany(ctx, parent, rel, target, name, items)
	}
	return nil, fmt.Errorf("unsupported relation kind %q", rel.Kind)
}

func (e *Engine) loadBelongsTo(ctx context.Context, rel *entity.Relation, target *entity.Entity, name string, items []map[string]any) ([]map[string]any, error) {
	ids := collectKeys(items, rel.FK)
	if len(ids) == 0 {
		for _, it := range items {
			it[name] = nil
		}
		return nil, nil
	}

	ownerCol := target.Table + "." + rel.OwnerKeyName()
	rows, err := e.queryRelated(ctx, target.SelectColumns(), target.Table, squirrel.Eq{ownerCol: ids})
	if err != nil {
		return nil, err
	}

	byID := make(map[any]map[string]any, len(rows))
	for _, row := range rows {
		byID[row[rel.OwnerKeyName()]] = row
	}
	for _, it := range items {
		if row, ok := byID[it[rel.FK]]; ok {
			it[name] = row
		} else {
			it[name] = nil
		}
	}
	return rows, nil
}

func (e *Engine) loadHasMany(ctx context.Context, rel *entity.Relation, target *entity.Entity, name string, items []map[string]any) ([]map[string]any, error) {
	ids := collectKeys(items, rel.OwnerKeyName())
	for _, it := range items {
		it[name] = []map[string]any{}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	fkCol := target.Table + "." + rel.FK
	rows, err := e.queryRelated(ctx, target.SelectColumns(), target.Table, squirrel.Eq{fkCol: ids})
	if err != nil {
		return nil, err
	}

	grouped := map[any][]map[string]any{}
	for _, row := range rows {
		pid := row[rel.FK]
		grouped[pid] = append(grouped[pid], row)
	}
	for _, it := range items {
		if g, ok := grouped[it[rel.OwnerKeyName()]]; ok {
			it[name] = g
		}
	}
	return rows, nil
}

func (e *Engine) loadBelongsToMany(ctx context.Context, parent *entity.Entity, rel *entity.Relation, target *entity.Entity, name string, items []map[string]any) ([]map[string]any, error) {
	ids := collectKeys(items, parent.PrimaryKey)
	for _, it := range items {
		it[name] = []map[string]any{}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cols := append(target.SelectColumns(),
		fmt.Sprintf("%s.%s AS %s", rel.JoinTable, rel.JoinParentKey, parentKeyAlias))
	join := fmt.Sprintf("%s ON %s.%s = %s.%s",
		rel.JoinTable, target.Table, target.PrimaryKey, rel.JoinTable, rel.JoinRelatedKey)

	sb := squirrel.Select(cols...).
		From(target.Table).
		Join(join).
		Where(squirrel.Eq{rel.JoinTable + "." + rel.JoinParentKey: ids}).
		PlaceholderFormat(squirrel.Dollar)

	rows, err := e.runSelect(ctx, sb)
	if err != nil {
		return nil, err
	}

	grouped := map[any][]map[string]any{}
	for _, row := range rows {
		pid := row[parentKeyAlias]
		delete(row, parentKeyAlias)
		grouped[pid] = append(grouped[pid], row)
	}
	for _, it := range items {
		if g, ok := grouped[it[parent.PrimaryKey]]; ok {
			it[name] = g
		}
	}
	return rows, nil
}

func (e *Engine) queryRelated(ctx context.Context, cols []string, table string, where squirrel.Sqlizer) ([]map[string]any, error) {
	sb := squirrel.Select(cols...).
		From(table).
		Where(where).
		PlaceholderFormat(squirrel.Dollar)
	return e.runSelect(ctx, sb)
}

func (e *Engine) runSelect(ctx context.Context, sb squirrel.SelectBuilder) ([]map[string]any, error) {
	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := e.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

func collectKeys(items []map[string]any, key string) []any {
	seen := map[any]struct{}{}
	out := make([]any, 0, len(items))
	for _, it := range items {
		v, ok := it[key]
		if !ok || v == nil {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
