// Package models defines the domain types for Shelf.
package models

import (
	"strings"
	"time"
)

// Book is a catalog record. ID is assigned by the record store and never changes.
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	ISBN      string    `json:"isbn,omitempty"`
	Year      *int      `json:"year,omitempty"`
	Copies    *int      `json:"copies,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookInput is the payload accepted by create and update.
// A nil text field or an unset OptionalInt means "not provided".
type BookInput struct {
	Title  *string     `json:"title,omitempty" yaml:"title"`
	Author *string     `json:"author,omitempty" yaml:"author"`
	ISBN   *string     `json:"isbn,omitempty" yaml:"isbn"`
	Year   OptionalInt `json:"year,omitzero" yaml:"year"`
	Copies OptionalInt `json:"copies,omitzero" yaml:"copies"`
}

// Normalize trims surrounding whitespace from every provided text field.
func (in *BookInput) Normalize() {
	for _, p := range []*string{in.Title, in.Author, in.ISBN} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

// ApplyTo copies every provided field onto b. ID and timestamps are untouched.
func (in BookInput) ApplyTo(b *Book) {
	if in.Title != nil {
		b.Title = *in.Title
	}
	if in.Author != nil {
		b.Author = *in.Author
	}
	if in.ISBN != nil {
		b.ISBN = *in.ISBN
	}
	if in.Year.IsSet() {
		b.Year = in.Year.Ptr()
	}
	if in.Copies.IsSet() {
		b.Copies = in.Copies.Ptr()
	}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
