package datatable

import (
	"fmt"
	"strings"

	"BlogCMS/internal/entity"
	"BlogCMS/internal/logger"

	"github.com/Masterminds/squirrel"
)

// Locales recognized as JSONB sub-keys of localized columns.
var locales = map[string]bool{"en": true, "it": true}

// maxRelationHops bounds path resolution: a dotted path may traverse at
// most three declared relations before its terminal column.
const maxRelationHops = 3

// resolver classifies dotted field paths against the static relation
// registry. Paths are client-supplied and therefore untrusted: anything
// that does not resolve is reported and treated as a no-op.
type resolver struct {
	root *entity.Entity
}

// hop is one traversal step of a resolved path.
type hop struct {
	rel       *entity.Relation
	parent    *entity.Entity
	parentRef string // table or alias the correlation keys against
	target    *entity.Entity
	alias     string
	joinAlias string // belongs_to_many only
}

// resolvedField is the outcome of path classification: zero or more hops
// ending at a terminal column, possibly with a locale sub-key.
type resolvedField struct {
	hops  []hop
	field fieldRef
}

// resolve walks the dotted path. The terminal segment may be a locale code,
// in which case the segment before it must be a localized column.
func (r *resolver) resolve(path string) (resolvedField, bool) {
	segments := strings.Split(path, ".")
	if len(segments) == 0 || segments[0] == "" {
		return resolvedField{}, false
	}

	jsonKey := ""
	if len(segments) >= 2 && locales[segments[len(segments)-1]] {
		jsonKey = segments[len(segments)-1]
		segments = segments[:len(segments)-1]
	}

	column := segments[len(segments)-1]
	relSegments := segments[:len(segments)-1]
	if len(relSegments) > maxRelationHops {
		logger.Warn("dt_path_too_deep", map[string]any{"path": path})
		return resolvedField{}, false
	}

	cur := r.root
	parentRef := r.root.Table
	hops := make([]hop, 0, len(relSegments))
	for i, name := range relSegments {
		rel, ok := cur.Relation(name)
		if !ok {
			logger.Warn("dt_unknown_relation_path", map[string]any{
				"entity": cur.Name,
				"path":   path,
				"seg":    name,
			})
			return resolvedField{}, false
		}
		target, ok := entity.Get(rel.Target)
		if !ok {
			logger.Warn("dt_unknown_relation_target", map[string]any{
				"entity": cur.Name,
				"target": rel.Target,
			})
			return resolvedField{}, false
		}
		h := hop{
			rel:       rel,
			parent:    cur,
			parentRef: parentRef,
			target:    target,
			alias:     fmt.Sprintf("dt%d", i),
		}
		if rel.Kind == entity.BelongsToMany {
			h.joinAlias = h.alias + "j"
		}
		hops = append(hops, h)
		parentRef = h.alias
		cur = target
	}

	if !cur.HasColumn(column) {
		logger.Warn("dt_unknown_column", map[string]any{
			"entity": cur.Name,
			"path":   path,
			"column": column,
		})
		return resolvedField{}, false
	}
	if jsonKey != "" && !cur.IsLocalized(column) {
		logger.Warn("dt_not_localized", map[string]any{
			"entity": cur.Name,
			"column": column,
		})
		return resolvedField{}, false
	}

	return resolvedField{
		hops:  hops,
		field: fieldRef{column: parentRef + "." + column, jsonKey: jsonKey},
	}, true
}

// predicate builds the full predicate for one path: the leaf comparison
// wrapped in one EXISTS per relation hop, innermost first.
func (r *resolver) predicate(path string, c Constraint) (squirrel.Sqlizer, bool) {
	rf, ok := r.resolve(path)
	if !ok {
		return nil, false
	}
	pred := buildPredicate(rf.field, c)
	if pred == nil {
		return nil, false
	}
	for i := len(rf.hops) - 1; i >= 0; i-- {
		pred = wrapExists(rf.hops[i], pred)
		if pred == nil {
			return nil, false
		}
	}
	return pred, true
}

// wrapExists correlates the hop's target rows with its parent scope and
// requires at least one matching related record.
func wrapExists(h hop, inner squirrel.Sqlizer) squirrel.Sqlizer {
	innerSQL, args, err := inner.ToSql()
	if err != nil {
		logger.Error("dt_predicate_tosql", map[string]any{"error": err.Error()})
		return nil
	}

	switch h.rel.Kind {
	case entity.BelongsTo:
		return squirrel.Expr(fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s AS %s WHERE %s.%s = %s.%s AND %s)",
			h.target.Table, h.alias,
			h.alias, h.rel.OwnerKeyName(), h.parentRef, h.rel.FK,
			innerSQL), args...)
	case entity.HasMany:
		return squirrel.Expr(fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s AS %s WHERE %s.%s = %s.%s AND %s)",
			h.target.Table, h.alias,
			h.alias, h.rel.FK, h.parentRef, h.rel.OwnerKeyName(),
			innerSQL), args...)
	case entity.BelongsToMany:
		return squirrel.Expr(fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s AS %s JOIN %s AS %s ON %s.%s = %s.%s WHERE %s.%s = %s.%s AND %s)",
			h.rel.JoinTable, h.joinAlias,
			h.target.Table, h.alias,
			h.alias, h.target.PrimaryKey, h.joinAlias, h.rel.JoinRelatedKey,
			h.joinAlias, h.rel.JoinParentKey, h.parentRef, h.parent.PrimaryKey,
			innerSQL), args...)
	}
	return nil
}

// orderClause resolves a sort path into an ORDER BY expression. A direct
// column orders by itself; a single-hop path orders by a correlated scalar
// subquery on the related column. Deeper paths and many-to-many relations
// are not orderable and are skipped.
func (r *resolver) orderClause(path string, asc bool) (string, bool) {
	rf, ok := r.resolve(path)
	if !ok {
		return "", false
	}

	dir := "DESC"
	if asc {
		dir = "ASC"
	}

	switch len(rf.hops) {
	case 0:
		return rf.field.textExpr() + " " + dir, true
	case 1:
		h := rf.hops[0]
		col := rf.field.textExpr()
		switch h.rel.Kind {
		case entity.BelongsTo:
			return fmt.Sprintf("(SELECT %s FROM %s AS %s WHERE %s.%s = %s.%s) %s",
				col, h.target.Table, h.alias,
				h.alias, h.rel.OwnerKeyName(), h.parentRef, h.rel.FK, dir), true
		case entity.HasMany:
			return fmt.Sprintf("(SELECT %s FROM %s AS %s WHERE %s.%s = %s.%s LIMIT 1) %s",
				col, h.target.Table, h.alias,
				h.alias, h.rel.FK, h.parentRef, h.rel.OwnerKeyName(), dir), true
		}
		logger.Warn("dt_sort_not_orderable", map[string]any{"path": path, "kind": string(h.rel.Kind)})
		return "", false
	default:
		logger.Warn("dt_sort_too_deep", map[string]any{"path": path})
		return "", false
	}
}

// eagerRelations derives the relations worth eager-loading from the
// searchable column paths: the first one or two segments of any path that
// actually traverses declared relations.
func (r *resolver) eagerRelations(paths []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, p := range paths {
		rf, ok := r.resolve(p)
		if !ok {
			continue
		}
		prefix := ""
		for i, h := range rf.hops {
			if i >= 2 {
				break
			}
			name := relationName(h.parent, h.rel)
			if name == "" {
				break
			}
			if prefix == "" {
				prefix = name
			} else {
				prefix = prefix + "." + name
			}
			if !seen[prefix] {
				seen[prefix] = true
				out = append(out, prefix)
			}
		}
	}
	return out
}

func relationName(parent *entity.Entity, rel *entity.Relation) string {
	for name, r := range parent.Relations {
		if r == rel {
			return name
		}
	}
	return ""
}
