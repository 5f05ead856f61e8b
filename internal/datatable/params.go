package datatable

import (
	"encoding/json"

	"BlogCMS/internal/logger"
)

const defaultRows = 10

// Constraint is one (value, matchMode) pair, already resolved.
type Constraint struct {
	Value any
	Mode  MatchMode
}

// FieldFilter is the constraint group for one field. Constraints inside
// the group combine per Or; groups of different fields always AND.
type FieldFilter struct {
	Or          bool
	Constraints []Constraint
}

// Params is the parsed filter/sort/pagination descriptor for one list query.
type Params struct {
	Page      int // zero-based, as sent by the client
	Rows      int
	SortField string
	SortAsc   bool
	HasSort   bool
	Global    *Constraint
	Fields    map[string]FieldFilter
}

// wire shapes; every field is optional and wrong types must not fail the request
type wireParams struct {
	Page      *int                       `json:"page"`
	Rows      *int                       `json:"rows"`
	SortField *string                    `json:"sortField"`
	SortOrder *int                       `json:"sortOrder"`
	Filters   map[string]json.RawMessage `json:"filters"`
}

type wireConstraint struct {
	Value     any     `json:"value"`
	MatchMode *string `json:"matchMode"`
}

type wireFieldFilter struct {
	Operator    string           `json:"operator"`
	Constraints []wireConstraint `json:"constraints"`
}

// ParseParams decodes the client descriptor. Malformed entries are treated
// as absent: the read path never fails because of filter shape.
func ParseParams(raw json.RawMessage) Params {
	p := Params{
		Rows:   defaultRows,
		Fields: map[string]FieldFilter{},
	}
	if len(raw) == 0 {
		return p
	}

	var w wireParams
	if err := json.Unmarshal(raw, &w); err != nil {
		logger.Warn("dt_params_malformed", map[string]any{"error": err.Error()})
		return p
	}

	if w.Page != nil && *w.Page >= 0 {
		p.Page = *w.Page
	}
	if w.Rows != nil && *w.Rows > 0 {
		p.Rows = *w.Rows
	}
	if w.SortField != nil && *w.SortField != "" {
		p.SortField = *w.SortField
		p.HasSort = true
		p.SortAsc = w.SortOrder != nil && *w.SortOrder == 1
	}

	for field, rawEntry := range w.Filters {
		if field == "global" {
			if c, ok := parseConstraintEntry(rawEntry); ok {
				p.Global = &c
			}
			continue
		}
		if ff, ok := parseFieldEntry(field, rawEntry); ok {
			p.Fields[field] = ff
		}
	}

	return p
}

// parseFieldEntry accepts either {value, matchMode} or
// {operator, constraints: [...]}. Entries without a usable value vanish.
func parseFieldEntry(field string, raw json.RawMessage) (FieldFilter, bool) {
	var multi wireFieldFilter
	if err := json.Unmarshal(raw, &multi); err == nil && len(multi.Constraints) > 0 {
		ff := FieldFilter{Or: multi.Operator == "or"}
		for _, wc := range multi.Constraints {
			if c, ok := resolveConstraint(wc); ok {
				ff.Constraints = append(ff.Constraints, c)
			}
		}
		if len(ff.Constraints) == 0 {
			return FieldFilter{}, false
		}
		return ff, true
	}

	if c, ok := parseConstraintEntry(raw); ok {
		return FieldFilter{Constraints: []Constraint{c}}, true
	}

	logger.Debug("dt_filter_skipped", map[string]any{"field": field})
	return FieldFilter{}, false
}

func parseConstraintEntry(raw json.RawMessage) (Constraint, bool) {
	var wc wireConstraint
	if err := json.Unmarshal(raw, &wc); err != nil {
		return Constraint{}, false
	}
	return resolveConstraint(wc)
}

func resolveConstraint(wc wireConstraint) (Constraint, bool) {
	if wc.Value == nil {
		return Constraint{}, false
	}
	if s, ok := wc.Value.(string); ok && s == "" {
		return Constraint{}, false
	}

	mode := MatchContains
	if wc.MatchMode != nil {
		var known bool
		mode, known = ParseMatchMode(*wc.MatchMode)
		if !known {
			logger.Debug("dt_unknown_match_mode", map[string]any{"matchMode": *wc.MatchMode})
		}
	}
	return Constraint{Value: wc.Value, Mode: mode}, true
}
