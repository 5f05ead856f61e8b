package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TagInput struct {
	Name map[string]string `json:"name"`
}

type TagService struct {
	pool *pgxpool.Pool
}

func NewTagService(pool *pgxpool.Pool) *TagService {
	return &TagService{pool: pool}
}

func (s *TagService) Create(ctx context.Context, in TagInput) (int64, error) {
	if err := validateTag(in); err != nil {
		return 0, err
	}

	var tagID int64
	err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx,
			`INSERT INTO tags (name) VALUES ($1) RETURNING id`,
			localizedJSON(in.Name),
		).Scan(&tagID)
	})
	if err != nil {
		return 0, fmt.Errorf("insert tag: %w", err)
	}
	return tagID, nil
}

func (s *TagService) Update(ctx context.Context, tagID int64, in TagInput) error {
	if err := validateTag(in); err != nil {
		return err
	}

	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx,
			`UPDATE tags SET name = $1, updated_at = now() WHERE id = $2`,
			localizedJSON(in.Name), tagID,
		)
		if err != nil {
			return fmt.Errorf("update tag: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *TagService) Delete(ctx context.Context, tagID int64) error {
	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM post_tag WHERE tag_id = $1`, tagID); err != nil {
			return fmt.Errorf("detach posts: %w", err)
		}
		ct, err := tx.Exec(ctx, `DELETE FROM tags WHERE id = $1`, tagID)
		if err != nil {
			return fmt.Errorf("delete tag: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// MissingNames returns the supplied names that match no tag by exact,
// case-sensitive comparison against either locale's value.
func (s *TagService) MissingNames(ctx context.Context, names []string) ([]string, error) {
	missing := []string{}
	for _, name := range names {
		var exists bool
		err := s.pool.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM tags
				WHERE name->>'en' = $1 OR name->>'it' = $1
			)`, name).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check tag name %q: %w", name, err)
		}
		if !exists {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// IDsByNames resolves tag names (either locale) to tag ids.
func (s *TagService) IDsByNames(ctx context.Context, names []string) ([]int64, error) {
	if len(names) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT id FROM tags
		WHERE name->>'en' = ANY($1) OR name->>'it' = ANY($1)`, names)
	if err != nil {
		return nil, fmt.Errorf("resolve tag names: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func validateTag(in TagInput) error {
	errs := ValidationErrors{}
	requireLocalized(errs, "name", in.Name)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
