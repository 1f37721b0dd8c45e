// Package catalog implements the book CRUD operations on top of a record store.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/starford/shelf/internal/apperr"
	"github.com/starford/shelf/internal/models"
	"github.com/starford/shelf/internal/store"
)

// Change kinds passed to a Notifier.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// Notifier receives a callback after every successful mutation.
type Notifier interface {
	BookChanged(kind, id string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind, id string)

// BookChanged calls f.
func (f NotifierFunc) BookChanged(kind, id string) { f(kind, id) }

// Service validates input and maps store outcomes to apperr errors.
type Service struct {
	store    store.Store
	notifier Notifier
	tracer   trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier registers a change callback.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// NewService creates a new catalog service.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		tracer: otel.Tracer("shelf/catalog"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every book, or those matching filter on title, author or isbn.
// Surrounding whitespace in filter is ignored.
func (s *Service) List(ctx context.Context, filter string) ([]models.Book, error) {
	filter = strings.TrimSpace(filter)
	ctx, span := s.tracer.Start(ctx, "catalog.List", trace.WithAttributes(attribute.String("filter", filter)))
	defer span.End()

	books, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, s.fail(span, "list books", err)
	}
	span.SetAttributes(attribute.Int("count", len(books)))
	return books, nil
}

// Get returns a single book.
func (s *Service) Get(ctx context.Context, id string) (*models.Book, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Get", trace.WithAttributes(attribute.String("book.id", id)))
	defer span.End()

	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.fail(span, "get book", err)
	}
	return &b, nil
}

// Create validates in and stores a new book.
func (s *Service) Create(ctx context.Context, in models.BookInput) (*models.Book, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Create")
	defer span.End()

	in.Normalize()
	if err := validateCreate(&in); err != nil {
		return nil, s.fail(span, "create book", err)
	}

	var b models.Book
	in.ApplyTo(&b)
	created, err := s.store.Insert(ctx, b)
	if err != nil {
		return nil, s.fail(span, "create book", err)
	}
	span.SetAttributes(attribute.String("book.id", created.ID))
	s.notify(ChangeCreated, created.ID)
	return &created, nil
}

// Update replaces the provided fields of an existing book.
func (s *Service) Update(ctx context.Context, id string, in models.BookInput) (*models.Book, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Update", trace.WithAttributes(attribute.String("book.id", id)))
	defer span.End()

	in.Normalize()
	if err := validateUpdate(&in); err != nil {
		return nil, s.fail(span, "update book", err)
	}

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.fail(span, "update book", err)
	}
	in.ApplyTo(&existing)
	updated, err := s.store.Update(ctx, existing)
	if err != nil {
		return nil, s.fail(span, "update book", err)
	}
	s.notify(ChangeUpdated, id)
	return &updated, nil
}

// Delete removes a book.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "catalog.Delete", trace.WithAttributes(attribute.String("book.id", id)))
	defer span.End()

	if err := s.store.Delete(ctx, id); err != nil {
		return s.fail(span, "delete book", err)
	}
	s.notify(ChangeDeleted, id)
	return nil
}

// Ping reports whether the record store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return apperr.Unavailable("ping store", err)
	}
	return nil
}

func (s *Service) notify(kind, id string) {
	if s.notifier != nil {
		s.notifier.BookChanged(kind, id)
	}
}

// fail records err on span and classifies it: validation and not-found errors pass
// through, anything else becomes ErrStoreUnavailable.
func (s *Service) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrNotFound):
		return fmt.Errorf("%s: %w", op, err)
	default:
		span.SetStatus(codes.Error, err.Error())
		return apperr.Unavailable(op, err)
	}
}
