package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"BlogCMS/internal/auth"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserService struct {
	pool *pgxpool.Pool
}

func NewUserService(pool *pgxpool.Pool) *UserService {
	return &UserService{pool: pool}
}

func (s *UserService) Create(ctx context.Context, in UserInput) (int64, error) {
	if err := validateUser(in, true); err != nil {
		return 0, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	var userID int64
	err = inTx(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO users (full_name, email, password)
			VALUES ($1, $2, $3)
			RETURNING id`,
			in.FullName, in.Email, hash,
		).Scan(&userID)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			taken := ValidationErrors{}
			taken.Add("email", "has already been taken")
			return 0, taken
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return userID, nil
}

// Update rewrites name and email; the password changes only when a new
// one is supplied.
func (s *UserService) Update(ctx context.Context, userID int64, in UserInput) error {
	if err := validateUser(in, false); err != nil {
		return err
	}

	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		var (
			ct  pgconn.CommandTag
			err error
		)
		if in.Password != "" {
			var hash string
			hash, err = auth.HashPassword(in.Password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			ct, err = tx.Exec(ctx, `
				UPDATE users
				SET full_name = $1, email = $2, password = $3, updated_at = now()
				WHERE id = $4`,
				in.FullName, in.Email, hash, userID)
		} else {
			ct, err = tx.Exec(ctx, `
				UPDATE users
				SET full_name = $1, email = $2, updated_at = now()
				WHERE id = $3`,
				in.FullName, in.Email, userID)
		}
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *UserService) Delete(ctx context.Context, userID int64) error {
	return inTx(ctx, s.pool, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Authenticate verifies credentials and returns the user's id and name.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (int64, string, error) {
	var (
		userID   int64
		fullName string
		hash     string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, full_name, password FROM users WHERE email = $1`, email,
	).Scan(&userID, &fullName, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, "", ErrNotFound
	}
	if err != nil {
		return 0, "", fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(hash, password) {
		return 0, "", ErrNotFound
	}
	return userID, fullName, nil
}

func validateUser(in UserInput, requirePassword bool) error {
	errs := ValidationErrors{}
	if strings.TrimSpace(in.FullName) == "" {
		errs.Add("full_name", "required")
	}
	if strings.TrimSpace(in.Email) == "" {
		errs.Add("email", "required")
	} else if !strings.Contains(in.Email, "@") {
		errs.Add("email", "must be a valid email address")
	}
	if requirePassword && in.Password == "" {
		errs.Add("password", "required")
	}
	if in.Password != "" && len(in.Password) < 8 {
		errs.Add("password", "must be at least 8 characters")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
