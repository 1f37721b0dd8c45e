package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/shelf/internal/apperr"
	"github.com/starford/shelf/internal/models"
)

const bookColumns = `id, title, author, isbn, year, copies, created_at, updated_at`

// Insert assigns a fresh UUID and timestamps, then stores b.
func (db *DB) Insert(ctx context.Context, b models.Book) (models.Book, error) {
	now := time.Now().UTC()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx, db.conn.Rebind(`
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), b.ID, b.Title, b.Author, b.ISBN, nullInt(b.Year), nullInt(b.Copies), b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return models.Book{}, fmt.Errorf("store: insert book: %w", err)
	}
	return b, nil
}

// Get returns a single book by id.
func (db *DB) Get(ctx context.Context, id string) (models.Book, error) {
	row := db.conn.QueryRowContext(ctx, db.conn.Rebind(`SELECT `+bookColumns+` FROM books WHERE id = ?`), id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Book{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.Book{}, fmt.Errorf("store: get book: %w", err)
	}
	return b, nil
}

// Update overwrites the stored record. created_at is preserved, updated_at is refreshed.
func (db *DB) Update(ctx context.Context, b models.Book) (models.Book, error) {
	b.UpdatedAt = time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, db.conn.Rebind(`
		UPDATE books
		SET title = ?, author = ?, isbn = ?, year = ?, copies = ?, updated_at = ?
		WHERE id = ?
	`), b.Title, b.Author, b.ISBN, nullInt(b.Year), nullInt(b.Copies), b.UpdatedAt, b.ID)
	if err != nil {
		return models.Book{}, fmt.Errorf("store: update book: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return models.Book{}, err
	}
	return db.Get(ctx, b.ID)
}

// Delete removes a book by id.
func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, db.conn.Rebind(`DELETE FROM books WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("store: delete book: %w", err)
	}
	return expectOneRow(res)
}

// List returns books in insertion order, optionally filtered by a case-insensitive
// substring of title, author or isbn.
func (db *DB) List(ctx context.Context, filter string) ([]models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books`
	var args []any
	if filter != "" {
		lower := db.lower
		query += fmt.Sprintf(` WHERE %[1]s(title) LIKE ? ESCAPE '\' OR %[1]s(author) LIKE ? ESCAPE '\' OR %[1]s(isbn) LIKE ? ESCAPE '\'`, lower)
		like := "%" + escapeLike(strings.ToLower(filter)) + "%"
		args = append(args, like, like, like)
	}
	query += ` ORDER BY seq`

	rows, err := db.conn.QueryContext(ctx, db.conn.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("store: list books: %w", err)
	}
	defer rows.Close()

	out := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan book: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(s scanner) (models.Book, error) {
	var (
		b            models.Book
		year, copies sql.NullInt64
	)
	if err := s.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &year, &copies, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return models.Book{}, err
	}
	b.Year = intPtr(year)
	b.Copies = intPtr(copies)
	return b, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
