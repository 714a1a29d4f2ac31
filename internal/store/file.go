package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"provider-booking-api/internal/model"
)

func (s *Store) CreateFile(ctx context.Context, f *model.File) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO files (name, path) VALUES ($1,$2) RETURNING id, created_at`,
		f.Name, f.Path,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: create file: %w", err)
	}
	return nil
}

func (s *Store) FileByID(ctx context.Context, id int64) (*model.File, error) {
	f := &model.File{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, path, created_at FROM files WHERE id = $1`, id,
	).Scan(&f.ID, &f.Name, &f.Path, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: load file: %w", err)
	}
	return f, nil
}

// nullFile scans the nullable side of a LEFT JOIN on files.
type nullFile struct {
	id   *int64
	name *string
	path *string
}

func (n nullFile) file() *model.File {
	if n.id == nil {
		return nil
	}
	f := &model.File{ID: *n.id}
	if n.name != nil {
		f.Name = *n.name
	}
	if n.path != nil {
		f.Path = *n.path
	}
	return f
}
