package entity

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var Registry = map[string]*Entity{}

func Register(e *Entity) {
	Registry[e.Name] = e
}

func Get(name string) (*Entity, bool) {
	e, ok := Registry[name]
	return e, ok
}

// InitRegistry declares the application entities and validates the result.
func InitRegistry() error {
	Register(&Entity{
		Name:       "Post",
		Table:      "posts",
		PrimaryKey: "id",
		Columns:    []string{"id", "user_id", "cover", "created_at", "updated_at"},
		Localized:  []string{"title", "content", "short_description"},
		Relations: map[string]*Relation{
			"user": {Kind: BelongsTo, Target: "User", FK: "user_id"},
			"tags": {
				Kind:           BelongsToMany,
				Target:         "Tag",
				JoinTable:      "post_tag",
				JoinParentKey:  "post_id",
				JoinRelatedKey: "tag_id",
			},
		},
	})

	Register(&Entity{
		Name:       "Tag",
		Table:      "tags",
		PrimaryKey: "id",
		Columns:    []string{"id", "created_at", "updated_at"},
		Localized:  []string{"name"},
		Relations: map[string]*Relation{
			"posts": {
				Kind:           BelongsToMany,
				Target:         "Post",
				JoinTable:      "post_tag",
				JoinParentKey:  "tag_id",
				JoinRelatedKey: "post_id",
			},
		},
	})

	Register(&Entity{
		Name:       "User",
		Table:      "users",
		PrimaryKey: "id",
		Columns:    []string{"id", "full_name", "email", "password", "created_at", "updated_at"},
		Hidden:     []string{"password"},
		Relations: map[string]*Relation{
			"posts": {Kind: HasMany, Target: "Post", FK: "user_id"},
		},
	})

	return Validate()
}

// Validate checks every declared relation for dangling targets and
// missing key metadata. All problems are reported at once.
func Validate() error {
	var result *multierror.Error

	for name, e := range Registry {
		if e.Table == "" {
			result = multierror.Append(result, fmt.Errorf("entity %s: empty table", name))
		}
		if e.PrimaryKey == "" {
			result = multierror.Append(result, fmt.Errorf("entity %s: empty primary key", name))
		}
		for relName, rel := range e.Relations {
			if _, ok := Registry[rel.Target]; !ok {
				result = multierror.Append(result,
					fmt.Errorf("entity %s: relation %s targets unknown entity %s", name, relName, rel.Target))
				continue
			}
			switch rel.Kind {
			case BelongsTo, HasMany:
				if rel.FK == "" {
					result = multierror.Append(result,
						fmt.Errorf("entity %s: relation %s (%s) has no foreign key", name, relName, rel.Kind))
				}
			case BelongsToMany:
				if rel.JoinTable == "" || rel.JoinParentKey == "" || rel.JoinRelatedKey == "" {
					result = multierror.Append(result,
						fmt.Errorf("entity %s: relation %s (%s) has incomplete join metadata", name, relName, rel.Kind))
				}
			default:
				result = multierror.Append(result,
					fmt.Errorf("entity %s: relation %s has unsupported kind %q", name, relName, rel.Kind))
			}
		}
	}

	return result.ErrorOrNil()
}
