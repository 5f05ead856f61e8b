package entity

// RelationKind tags how two entities are keyed together.
type RelationKind string

const (
	BelongsTo     RelationKind = "belongs_to"
	HasMany       RelationKind = "has_many"
	BelongsToMany RelationKind = "belongs_to_many"
)

// Relation declares one hop to another entity.
//
// Key semantics by kind:
//   - belongs_to:      parent.FK -> target.OwnerKey
//   - has_many:        target.FK -> parent.OwnerKey
//   - belongs_to_many: JoinTable.JoinParentKey -> parent.OwnerKey,
//     JoinTable.JoinRelatedKey -> target primary key
type Relation struct {
	Kind           RelationKind
	Target         string // logical entity name in the registry
	FK             string
	OwnerKey       string // defaults to "id"
	JoinTable      string
	JoinParentKey  string
	JoinRelatedKey string
}

// Entity is a statically declared description of one backing table:
// its columns, which of them are locale->string JSONB maps, and the
// relations reachable from it. The datatable engine never discovers
// relations at runtime; it only looks them up here.
type Entity struct {
	Name       string
	Table      string
	PrimaryKey string
	Columns    []string
	Localized  []string
	Hidden     []string // never selected into results (e.g. password hashes)
	Relations  map[string]*Relation
}

func (e *Entity) Relation(name string) (*Relation, bool) {
	if e == nil || e.Relations == nil {
		return nil, false
	}
	r, ok := e.Relations[name]
	return r, ok
}

// HasColumn reports whether name is a declared column (localized or plain).
func (e *Entity) HasColumn(name string) bool {
	for _, c := range e.Columns {
		if c == name {
			return true
		}
	}
	for _, c := range e.Localized {
		if c == name {
			return true
		}
	}
	return false
}

func (e *Entity) IsLocalized(name string) bool {
	for _, c := range e.Localized {
		if c == name {
			return true
		}
	}
	return false
}

func (e *Entity) isHidden(name string) bool {
	for _, c := range e.Hidden {
		if c == name {
			return true
		}
	}
	return false
}

// SelectColumns returns the qualified column list for result rows,
// with hidden columns stripped.
func (e *Entity) SelectColumns() []string {
	out := make([]string, 0, len(e.Columns)+len(e.Localized))
	for _, c := range e.Columns {
		if e.isHidden(c) {
			continue
		}
		out = append(out, e.Table+"."+c)
	}
	for _, c := range e.Localized {
		if e.isHidden(c) {
			continue
		}
		out = append(out, e.Table+"."+c)
	}
	return out
}

func (r *Relation) ownerKey() string {
	if r.OwnerKey != "" {
		return r.OwnerKey
	}
	return "id"
}

// OwnerKeyName exposes the defaulted owner key for query builders.
func (r *Relation) OwnerKeyName() string { return r.ownerKey() }
