package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"provider-booking-api/internal/model"
)

const userColumns = `u.id, u.name, u.email, u.password_hash, u.provider, u.avatar_id,
		u.created_at, u.updated_at, f.id, f.name, f.path`

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, provider)
		 VALUES ($1,$2,$3,$4)
		 RETURNING id, created_at, updated_at`,
		u.Name, u.Email, u.PasswordHash, u.Provider,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if violates(err, usersEmailConstraint) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("store: create user: %w", err)
	}
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userWhere(ctx, `u.email = $1`, email)
}

func (s *Store) UserByID(ctx context.Context, id int64) (*model.User, error) {
	return s.userWhere(ctx, `u.id = $1`, id)
}

func (s *Store) userWhere(ctx context.Context, cond string, arg any) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users u LEFT JOIN files f ON f.id = u.avatar_id
		 WHERE `+cond, arg)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: load user: %w", err)
	}
	return u, nil
}

// UpdateUser writes name, email, password hash and avatar.
func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE users
		 SET name=$1, email=$2, password_hash=$3, avatar_id=$4, updated_at=NOW()
		 WHERE id=$5
		 RETURNING updated_at`,
		u.Name, u.Email, u.PasswordHash, u.AvatarID, u.ID,
	).Scan(&u.UpdatedAt)
	switch {
	case violates(err, usersEmailConstraint):
		return ErrDuplicate
	case errors.Is(err, pgx.ErrNoRows):
		return model.ErrNotFound
	case err != nil:
		return fmt.Errorf("store: update user: %w", err)
	}
	return nil
}

func (s *Store) ListProviders(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+`
		 FROM users u LEFT JOIN files f ON f.id = u.avatar_id
		 WHERE u.provider = true
		 ORDER BY u.name`)
	if err != nil {
		return nil, fmt.Errorf("store: list providers: %w", err)
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan provider: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var av nullFile
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Provider, &u.AvatarID,
		&u.CreatedAt, &u.UpdatedAt, &av.id, &av.name, &av.path)
	if err != nil {
		return nil, err
	}
	u.Avatar = av.file()
	return u, nil
}
