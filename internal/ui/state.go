// Package ui is the browser-facing presentation client for the catalog.
package ui

import (
	"strings"

	"github.com/starford/shelf/internal/models"
)

// Mode is the form mode.
type Mode int

const (
	ModeAdding Mode = iota
	ModeEditing
)

// Form holds the raw text of the book form fields.
type Form struct {
	Title  string
	Author string
	ISBN   string
	Year   string
	Copies string
}

// Input converts the form to a payload: text is trimmed, numeric fields follow
// the parse-or-omit rule.
func (f Form) Input() models.BookInput {
	in := models.BookInput{
		Title:  models.StringPtr(strings.TrimSpace(f.Title)),
		Author: models.StringPtr(strings.TrimSpace(f.Author)),
		ISBN:   models.StringPtr(strings.TrimSpace(f.ISBN)),
		Year:   models.ParseOptionalInt(f.Year),
		Copies: models.ParseOptionalInt(f.Copies),
	}
	return in
}

// FormFromBook fills the form for editing. Copies defaults to 1 when the book has none.
func FormFromBook(b models.Book) Form {
	f := Form{
		Title:  b.Title,
		Author: b.Author,
		ISBN:   b.ISBN,
		Year:   models.OptionalIntFrom(b.Year).String(),
		Copies: "1",
	}
	if b.Copies != nil {
		f.Copies = models.SomeInt(*b.Copies).String()
	}
	return f
}

// State is everything the page shows. It is owned by one Session and passed
// explicitly to the dispatcher and renderer.
type State struct {
	Mode   Mode
	EditID string
	Form   Form
	Filter string
	Books  []models.Book
	Loaded bool
	Alert  string

	// PendingDeletes maps confirmation tokens to book ids.
	PendingDeletes map[string]string
}

// NewState returns the initial state: adding, empty form, nothing loaded.
func NewState() *State {
	return &State{Mode: ModeAdding, PendingDeletes: map[string]string{}}
}

// FormLabel is the heading shown above the form.
func (s *State) FormLabel() string {
	if s.Mode == ModeEditing {
		return "Edit Book"
	}
	return "Add Book"
}

// ResetForm returns to adding mode with a blank form.
func (s *State) ResetForm() {
	s.Mode = ModeAdding
	s.EditID = ""
	s.Form = Form{}
}

// TakeAlert returns the pending alert and clears it.
func (s *State) TakeAlert() string {
	a := s.Alert
	s.Alert = ""
	return a
}
