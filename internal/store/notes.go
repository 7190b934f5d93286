package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DjSurgeon/mern-thinkboard/internal/notes"
)

// NoteRepository implementa notes.Repository sobre a tabela notes.
// Timestamps ficam em milissegundos Unix (UTC).
type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(s *Store) *NoteRepository {
	return &NoteRepository{db: s.DB}
}

var _ notes.Repository = (*NoteRepository)(nil)

func (r *NoteRepository) List(ctx context.Context) ([]notes.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, content, created_at, updated_at
		FROM notes
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	out := []notes.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("list notes: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return out, nil
}

func (r *NoteRepository) Get(ctx context.Context, id string) (notes.Note, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, content, created_at, updated_at
		FROM notes
		WHERE id = ?
	`, id)

	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return notes.Note{}, notes.ErrNotFound
	}
	if err != nil {
		return notes.Note{}, fmt.Errorf("fetch note %s: %w", id, err)
	}
	return n, nil
}

func (r *NoteRepository) Create(ctx context.Context, n notes.Note) (notes.Note, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (id, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, n.ID, n.Title, n.Content, n.CreatedAt.UnixMilli(), n.UpdatedAt.UnixMilli())
	if err != nil {
		return notes.Note{}, fmt.Errorf("insert note: %w", err)
	}
	return n, nil
}

func (r *NoteRepository) Update(ctx context.Context, n notes.Note) (notes.Note, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notes SET title = ?, content = ?, updated_at = ?
		WHERE id = ?
	`, n.Title, n.Content, n.UpdatedAt.UnixMilli(), n.ID)
	if err != nil {
		return notes.Note{}, fmt.Errorf("update note %s: %w", n.ID, err)
	}
	if err := expectOneRow(res); err != nil {
		return notes.Note{}, err
	}
	return r.Get(ctx, n.ID)
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	return expectOneRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (notes.Note, error) {
	var (
		n                notes.Note
		created, updated int64
	)
	if err := s.Scan(&n.ID, &n.Title, &n.Content, &created, &updated); err != nil {
		return notes.Note{}, err
	}
	n.CreatedAt = time.UnixMilli(created).UTC()
	n.UpdatedAt = time.UnixMilli(updated).UTC()
	return n, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notes.ErrNotFound
	}
	return nil
}
