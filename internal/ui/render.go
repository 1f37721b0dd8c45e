package ui

import (
	"embed"
	"html/template"
	"io"
	"strconv"

	"github.com/starford/shelf/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Row is one rendered list entry with display defaults applied.
type Row struct {
	ID     string
	Title  string
	Author string
	ISBN   string
	Year   string
	Copies string
}

// Rows applies display defaults: author "Unknown", isbn "-", year only when
// present, copies 0 when absent.
func Rows(books []models.Book) []Row {
	rows := make([]Row, 0, len(books))
	for _, b := range books {
		r := Row{
			ID:     b.ID,
			Title:  b.Title,
			Author: b.Author,
			ISBN:   b.ISBN,
			Copies: "0",
		}
		if r.Author == "" {
			r.Author = "Unknown"
		}
		if r.ISBN == "" {
			r.ISBN = "-"
		}
		if b.Year != nil && *b.Year != 0 {
			r.Year = strconv.Itoa(*b.Year)
		}
		if b.Copies != nil {
			r.Copies = strconv.Itoa(*b.Copies)
		}
		rows = append(rows, r)
	}
	return rows
}

type pageData struct {
	Label   string
	Editing bool
	EditID  string
	Form    Form
	Filter  string
	Rows    []Row
	Alert   string
}

type confirmData struct {
	Token string
	Row   Row
}

// RenderList writes the book list. An empty list renders a single placeholder row.
// All text is HTML-escaped.
func RenderList(w io.Writer, books []models.Book) error {
	return templates.ExecuteTemplate(w, "list", Rows(books))
}

// RenderPage writes the full page for st. alert is shown once.
func RenderPage(w io.Writer, st *State, alert string) error {
	return templates.ExecuteTemplate(w, "page.html", pageData{
		Label:   st.FormLabel(),
		Editing: st.Mode == ModeEditing,
		EditID:  st.EditID,
		Form:    st.Form,
		Filter:  st.Filter,
		Rows:    Rows(st.Books),
		Alert:   alert,
	})
}

// RenderConfirm writes the delete confirmation step for token.
func RenderConfirm(w io.Writer, token string, b models.Book) error {
	rows := Rows([]models.Book{b})
	return templates.ExecuteTemplate(w, "confirm.html", confirmData{Token: token, Row: rows[0]})
}
