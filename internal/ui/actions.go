package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/shelf/internal/client"
	"github.com/starford/shelf/internal/models"
)

// Catalog is the subset of the REST client the UI needs.
type Catalog interface {
	List(ctx context.Context, filter string) ([]models.Book, error)
	Get(ctx context.Context, id string) (*models.Book, error)
	Create(ctx context.Context, in models.BookInput) (*models.Book, error)
	Update(ctx context.Context, id string, in models.BookInput) (*models.Book, error)
	Delete(ctx context.Context, id string) error
}

var _ Catalog = (*client.Client)(nil)

// User-visible alerts.
const (
	AlertTitleRequired = "Title is required"
	AlertLoadFailed    = "Could not load book"
	AlertCreateFailed  = "Create failed"
	AlertUpdateFailed  = "Update failed"
	AlertDeleteFailed  = "Delete failed"
	AlertStaleDelete   = "Delete confirmation is no longer valid"
)

// Dispatcher runs user actions against a Catalog and records the outcome in a State.
// It keeps no state of its own.
type Dispatcher struct {
	catalog Catalog
	logger  *slog.Logger
	newID   func() string
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(c Catalog, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{catalog: c, logger: logger, newID: uuid.NewString}
}

// Load fetches the list for st.Filter. Failures are logged and leave st.Books as is.
func (d *Dispatcher) Load(ctx context.Context, st *State) {
	books, err := d.catalog.List(ctx, st.Filter)
	if err != nil {
		d.logger.Warn("list books failed",
			slog.String("filter", st.Filter),
			slog.String("error", err.Error()))
		return
	}
	st.Books = books
	st.Loaded = true
}

// Search lists books matching filter.
func (d *Dispatcher) Search(ctx context.Context, st *State, filter string) {
	st.Filter = strings.TrimSpace(filter)
	d.Load(ctx, st)
}

// Refresh clears the filter and lists every book.
func (d *Dispatcher) Refresh(ctx context.Context, st *State) {
	st.Filter = ""
	d.Load(ctx, st)
}

// Edit loads a book into the form and switches to editing mode.
func (d *Dispatcher) Edit(ctx context.Context, st *State, id string) {
	b, err := d.catalog.Get(ctx, id)
	if err != nil {
		st.Alert = AlertLoadFailed
		return
	}
	st.Mode = ModeEditing
	st.EditID = b.ID
	st.Form = FormFromBook(*b)
}

// Cancel abandons the current edit.
func (d *Dispatcher) Cancel(st *State) {
	st.ResetForm()
}

// Submit creates or updates depending on the mode. An empty title is rejected
// without calling the catalog.
func (d *Dispatcher) Submit(ctx context.Context, st *State, f Form) {
	st.Form = f
	in := f.Input()
	if *in.Title == "" {
		st.Alert = AlertTitleRequired
		return
	}

	var err error
	if st.Mode == ModeEditing {
		_, err = d.catalog.Update(ctx, st.EditID, in)
		if err != nil {
			st.Alert = alertFor(err, AlertUpdateFailed)
			return
		}
	} else {
		_, err = d.catalog.Create(ctx, in)
		if err != nil {
			st.Alert = alertFor(err, AlertCreateFailed)
			return
		}
	}

	st.ResetForm()
	d.Refresh(ctx, st)
}

// maxPendingDeletes bounds confirmations that were never answered.
const maxPendingDeletes = 32

// RequestDelete is the first step of a delete: it returns a token that must be
// passed to ConfirmDelete. Earlier tokens for the same book are revoked.
func (d *Dispatcher) RequestDelete(st *State, id string) string {
	if st.PendingDeletes == nil {
		st.PendingDeletes = map[string]string{}
	}
	for token, pending := range st.PendingDeletes {
		if pending == id {
			delete(st.PendingDeletes, token)
		}
	}
	if len(st.PendingDeletes) >= maxPendingDeletes {
		clear(st.PendingDeletes)
	}
	token := d.newID()
	st.PendingDeletes[token] = id
	return token
}

func (d *Dispatcher) pendingDelete(st *State, token string) (string, bool) {
	id, ok := st.PendingDeletes[token]
	return id, ok
}

// CancelDelete drops a pending confirmation.
func (d *Dispatcher) CancelDelete(st *State, token string) {
	delete(st.PendingDeletes, token)
}

// ConfirmDelete executes the delete a token was issued for. Each token works once.
func (d *Dispatcher) ConfirmDelete(ctx context.Context, st *State, token string) {
	id, ok := d.pendingDelete(st, token)
	if !ok {
		st.Alert = AlertStaleDelete
		return
	}
	delete(st.PendingDeletes, token)

	if err := d.catalog.Delete(ctx, id); err != nil {
		st.Alert = alertFor(err, AlertDeleteFailed)
		return
	}
	if st.Mode == ModeEditing && st.EditID == id {
		st.ResetForm()
	}
	d.Refresh(ctx, st)
}

// alertFor prefers the server's message and falls back to a generic one.
func alertFor(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
