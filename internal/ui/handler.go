package ui

import (
	"bytes"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/starford/shelf/internal/models"
)

// Session serialises actions on a single State. The page serves one logical user.
type Session struct {
	mu    sync.Mutex
	state *State
	d     *Dispatcher
}

// NewSession creates a session in the initial adding mode.
func NewSession(d *Dispatcher) *Session {
	return &Session{state: NewState(), d: d}
}

// Handler serves the catalog page and its form actions.
type Handler struct {
	session *Session
	logger  *slog.Logger
}

// NewHandler returns a chi router for the browser page.
func NewHandler(c Catalog, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{session: NewSession(NewDispatcher(c, logger)), logger: logger}

	r := chi.NewRouter()
	r.Get("/", h.Page)
	r.Post("/books", h.Submit)
	r.Post("/books/{id}/edit", h.Edit)
	r.Post("/books/{id}/delete", h.RequestDelete)
	r.Post("/delete/confirm", h.ConfirmDelete)
	r.Post("/delete/cancel", h.CancelDelete)
	r.Post("/cancel", h.Cancel)
	r.Post("/search", h.Search)
	r.Post("/refresh", h.Refresh)
	return r
}

// Page handles GET /. The list is fetched on first view; later views show the
// last loaded list.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	s := h.session
	s.mu.Lock()
	if !s.state.Loaded {
		s.d.Load(r.Context(), s.state)
	}
	var buf bytes.Buffer
	err := RenderPage(&buf, s.state, s.state.TakeAlert())
	s.mu.Unlock()

	h.writeHTML(w, buf.Bytes(), err)
}

// Submit handles POST /books from the add/edit form.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	f := Form{
		Title:  r.PostForm.Get("title"),
		Author: r.PostForm.Get("author"),
		ISBN:   r.PostForm.Get("isbn"),
		Year:   r.PostForm.Get("year"),
		Copies: r.PostForm.Get("copies"),
	}
	h.act(w, func(s *Session) { s.d.Submit(r.Context(), s.state, f) })
}

// Edit handles POST /books/{id}/edit.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.act(w, func(s *Session) { s.d.Edit(r.Context(), s.state, id) })
}

// Cancel handles POST /cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.act(w, func(s *Session) { s.d.Cancel(s.state) })
}

// Search handles POST /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	q := r.PostForm.Get("q")
	h.act(w, func(s *Session) { s.d.Search(r.Context(), s.state, q) })
}

// Refresh handles POST /refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.act(w, func(s *Session) { s.d.Refresh(r.Context(), s.state) })
}

// RequestDelete handles POST /books/{id}/delete by showing a confirmation step.
func (h *Handler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s := h.session

	s.mu.Lock()
	var (
		token string
		buf   bytes.Buffer
		err   error
	)
	b, found := findBook(s.state, id)
	if found {
		token = s.d.RequestDelete(s.state, id)
		err = RenderConfirm(&buf, token, b)
	} else {
		s.state.Alert = AlertDeleteFailed
	}
	s.mu.Unlock()

	if !found {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.writeHTML(w, buf.Bytes(), err)
}

// ConfirmDelete handles POST /delete/confirm.
func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	token := r.PostForm.Get("token")
	h.act(w, func(s *Session) { s.d.ConfirmDelete(r.Context(), s.state, token) })
}

// CancelDelete handles POST /delete/cancel.
func (h *Handler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	token := r.PostForm.Get("token")
	h.act(w, func(s *Session) { s.d.CancelDelete(s.state, token) })
}

// act runs fn under the session lock and redirects back to the page.
func (h *Handler) act(w http.ResponseWriter, fn func(*Session)) {
	s := h.session
	s.mu.Lock()
	fn(s)
	s.mu.Unlock()

	w.Header().Set("Location", "/")
	w.WriteHeader(http.StatusSeeOther)
}

func (h *Handler) writeHTML(w http.ResponseWriter, body []byte, err error) {
	if err != nil {
		h.logger.Error("render page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func findBook(st *State, id string) (models.Book, bool) {
	for _, b := range st.Books {
		if b.ID == id {
			return b, true
		}
	}
	return models.Book{}, false
}
