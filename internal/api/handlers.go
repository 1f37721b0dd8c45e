package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/shelf/internal/catalog"
	"github.com/starford/shelf/internal/models"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *catalog.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

// ListBooks handles GET /api/books.
//
//	@Summary		List books, optionally filtered by a substring of title, author or isbn
//	@Tags			books
//	@Produce		json
//	@Param			q	query		string	false	"Case-insensitive filter"
//	@Success		200	{array}		Book
//	@Failure		503	{object}	errResponse
//	@Router			/books [get]
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	books, err := h.svc.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, "list books", err, slog.String("q", q))
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// GetBook handles GET /api/books/{id}.
//
//	@Summary		Get a single book
//	@Tags			books
//	@Produce		json
//	@Param			id	path		string	true	"Book id"
//	@Success		200	{object}	Book
//	@Failure		404	{object}	errResponse
//	@Router			/books/{id} [get]
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	book, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get book", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// CreateBook handles POST /api/books.
//
//	@Summary		Create a book
//	@Tags			books
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BookRequest	true	"Book to create"
//	@Success		201		{object}	Book
//	@Failure		400		{object}	errResponse
//	@Router			/books [post]
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	book, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, "create book", err)
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

// UpdateBook handles PUT /api/books/{id}. Fields missing from the body keep their value.
//
//	@Summary		Update a book
//	@Tags			books
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Book id"
//	@Param			body	body		BookRequest	true	"Fields to replace"
//	@Success		200		{object}	Book
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/books/{id} [put]
func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	book, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, "update book", err, slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// DeleteBook handles DELETE /api/books/{id}.
//
//	@Summary		Delete a book
//	@Tags			books
//	@Param			id	path	string	true	"Book id"
//	@Success		204	"Book deleted"
//	@Failure		404	{object}	errResponse
//	@Router			/books/{id} [delete]
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, "delete book", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeInput(w http.ResponseWriter, r *http.Request) (models.BookInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var in models.BookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return in, false
	}
	return in, true
}
