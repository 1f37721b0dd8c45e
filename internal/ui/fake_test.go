package ui

import (
	"context"
	"strconv"
	"strings"

	"github.com/starford/shelf/internal/apperr"
	"github.com/starford/shelf/internal/models"
)

// fakeCatalog is an in-memory Catalog that counts calls and can be made to fail.
type fakeCatalog struct {
	books []models.Book
	seq   int
	calls map[string]int

	listErr, getErr, writeErr error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{calls: map[string]int{}}
}

func (f *fakeCatalog) List(_ context.Context, filter string) ([]models.Book, error) {
	f.calls["list"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []models.Book{}
	q := strings.ToLower(filter)
	for _, b := range f.books {
		if q == "" || strings.Contains(strings.ToLower(b.Title), q) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeCatalog) Get(_ context.Context, id string) (*models.Book, error) {
	f.calls["get"]++
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, b := range f.books {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeCatalog) Create(_ context.Context, in models.BookInput) (*models.Book, error) {
	f.calls["create"]++
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.seq++
	b := models.Book{ID: strconv.Itoa(f.seq)}
	in.ApplyTo(&b)
	f.books = append(f.books, b)
	return &b, nil
}

func (f *fakeCatalog) Update(_ context.Context, id string, in models.BookInput) (*models.Book, error) {
	f.calls["update"]++
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	for i := range f.books {
		if f.books[i].ID == id {
			in.ApplyTo(&f.books[i])
			return &f.books[i], nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeCatalog) Delete(_ context.Context, id string) error {
	f.calls["delete"]++
	if f.writeErr != nil {
		return f.writeErr
	}
	for i := range f.books {
		if f.books[i].ID == id {
			f.books = append(f.books[:i], f.books[i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}
