package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"BlogCMS/internal/logger"
	"BlogCMS/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostInput struct {
	Title            map[string]string `json:"title"`
	Content          map[string]string `json:"content"`
	ShortDescription map[string]string `json:"short_description"`
	Tags             []TagRef          `json:"tags"`
}

type TagRef struct {
	ID int64 `json:"id"`
}

var coverExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

type PostService struct {
	pool  *pgxpool.Pool
	store storage.Storage
}

func NewPostService(pool *pgxpool.Pool, store storage.Storage) *PostService {
	return &PostService{pool: pool, store: store}
}

// Create inserts a post and attaches its tags inside one transaction.
func (s *PostService) Create(ctx context.Context, in PostInput, userID int64) (int64, error) {
	if err := s.validate(ctx, in); err != nil {
		return 0, err
	}

	var postID int64
	err := inTx(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO posts (user_id, title, content, short_description)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			userID,
			localizedJSON(in.Title),
			localizedJSON(in.Content),
			localizedJSON(in.ShortDescription),
		).Scan(&postID)
		if err != nil {
			return fmt.Errorf("insert post: %w", err)
		}
		return attachTags(ctx, tx, postID, in.Tags)
	})
	if err != nil {
		return 0, err
	}
	return postID, nil
}

// Update rewrites the post's fields and syncs its tag set inside one
// transaction.
func (s *PostService) Update(ctx context.Context, postID int64, in PostInput) error {
	if err := s.validate(ctx, in); err != nil {
		return err
	}

	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `
			UPDATE posts
			SET title = $1, content = $2, short_description = $3, updated_at = now()
			WHERE id = $4`,
			localizedJSON(in.Title),
			localizedJSON(in.Content),
			localizedJSON(in.ShortDescription),
			postID,
		)
		if err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM post_tag WHERE post_id = $1`, postID); err != nil {
			return fmt.Errorf("detach tags: %w", err)
		}
		return attachTags(ctx, tx, postID, in.Tags)
	})
}

func (s *PostService) Delete(ctx context.Context, postID int64) error {
	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM post_tag WHERE post_id = $1`, postID); err != nil {
			return fmt.Errorf("detach tags: %w", err)
		}
		ct, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, postID)
		if err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// UploadCover stores the file under a name derived from the post id, then
// persists the public URL. The two steps are not atomic: a crash between
// them leaves an orphaned file, never a dangling reference.
func (s *PostService) UploadCover(ctx context.Context, postID int64, filename string, r io.Reader, size int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !coverExtensions[ext] {
		errs := ValidationErrors{}
		errs.Add("cover", "unsupported file type")
		return "", errs
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
		return "", fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return "", ErrNotFound
	}

	path := fmt.Sprintf("uploads/posts/%d%s", postID, ext)
	contentType := mime.TypeByExtension(ext)
	url, err := s.store.Store(ctx, path, r, size, contentType)
	if err != nil {
		return "", fmt.Errorf("%w: store cover: %v", ErrStorage, err)
	}

	if _, err := s.pool.Exec(ctx, `UPDATE posts SET cover = $1, updated_at = now() WHERE id = $2`, url, postID); err != nil {
		return "", fmt.Errorf("save cover reference: %w", err)
	}
	return url, nil
}

// RemoveCover clears the database reference first and deletes the file
// after. A failed deletion leaves the reference already cleared.
func (s *PostService) RemoveCover(ctx context.Context, postID int64) error {
	var cover *string
	err := s.pool.QueryRow(ctx, `SELECT cover FROM posts WHERE id = $1`, postID).Scan(&cover)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read cover: %w", err)
	}
	if cover == nil || *cover == "" {
		return nil
	}

	if _, err := s.pool.Exec(ctx, `UPDATE posts SET cover = NULL, updated_at = now() WHERE id = $1`, postID); err != nil {
		return fmt.Errorf("clear cover reference: %w", err)
	}

	path, ok := s.store.PathFromURL(*cover)
	if !ok {
		logger.Warn("cover_url_unmapped", map[string]any{"post_id": postID, "url": *cover})
		return nil
	}
	onDisk, err := s.store.Exists(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: stat cover: %v", ErrStorage, err)
	}
	if !onDisk {
		return nil
	}
	if err := s.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("%w: delete cover: %v", ErrStorage, err)
	}
	return nil
}

// validate checks the payload shape and that every referenced tag exists.
func (s *PostService) validate(ctx context.Context, in PostInput) error {
	errs := ValidationErrors{}
	requireLocalized(errs, "title", in.Title)
	requireLocalized(errs, "content", in.Content)
	requireLocalized(errs, "short_description", in.ShortDescription)
	if len(in.Tags) == 0 {
		errs.Add("tags", "required")
	}
	if len(errs) > 0 {
		return errs
	}

	ids := make([]int64, 0, len(in.Tags))
	for _, t := range in.Tags {
		ids = append(ids, t.ID)
	}
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tags WHERE id = ANY($1)`, ids).Scan(&count); err != nil {
		return fmt.Errorf("check tags: %w", err)
	}
	if count != len(uniqueIDs(ids)) {
		errs.Add("tags", "contains an unknown tag")
		return errs
	}
	return nil
}

func attachTags(ctx context.Context, tx pgx.Tx, postID int64, tags []TagRef) error {
	for _, t := range tags {
		if _, err := tx.Exec(ctx, `
			INSERT INTO post_tag (post_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, postID, t.ID); err != nil {
			return fmt.Errorf("attach tag %d: %w", t.ID, err)
		}
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := map[int64]struct{}{}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
