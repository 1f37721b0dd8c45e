package ui

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/shelf/internal/api"
	"github.com/starford/shelf/internal/catalog"
	"github.com/starford/shelf/internal/client"
	"github.com/starford/shelf/internal/testutil"
)

// testSite starts the REST API and the page in one server, wired the same way as the app.
func testSite(t *testing.T) *httptest.Server {
	t.Helper()
	db := testutil.TestStore(t)

	r := chi.NewRouter()
	r.Mount("/api", api.NewRouter(catalog.NewService(db), nil, nil))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	r.Mount("/", NewHandler(client.New(srv.URL+"/api", 0), nil))
	return srv
}

func noRedirect() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func post(t *testing.T, srv *httptest.Server, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := noRedirect().PostForm(srv.URL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func page(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

var tokenRe = regexp.MustCompile(`name="token" value="([^"]+)"`)

func TestPageFlow(t *testing.T) {
	srv := testSite(t)

	assert.Contains(t, page(t, srv), "No books found.")

	resp := post(t, srv, "/books", url.Values{"title": {"<script>"}, "copies": {"2"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	body := page(t, srv)
	assert.Contains(t, body, "&lt;script&gt;")
	assert.NotContains(t, body, "<strong><script>")
	assert.Contains(t, body, "Copies: 2")

	post(t, srv, "/books", url.Values{"title": {""}})
	body = page(t, srv)
	assert.Contains(t, body, "Title is required")
	// the alert is shown once
	assert.NotContains(t, page(t, srv), "Title is required")

	ids := regexp.MustCompile(`action="/books/([^/]+)/edit"`).FindStringSubmatch(body)
	require.Len(t, ids, 2)
	id := ids[1]

	post(t, srv, "/books/"+id+"/edit", nil)
	body = page(t, srv)
	assert.Contains(t, body, "Edit Book")

	post(t, srv, "/books", url.Values{"title": {"Dune"}, "copies": {"5"}})
	body = page(t, srv)
	assert.Contains(t, body, "Add Book")
	assert.Contains(t, body, "<strong>Dune</strong>")
	assert.Contains(t, body, "Copies: 5")

	resp = post(t, srv, "/books/"+id+"/delete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	confirm, _ := io.ReadAll(resp.Body)
	m := tokenRe.FindStringSubmatch(string(confirm))
	require.Len(t, m, 2, "confirmation page should carry a token")
	assert.Contains(t, page(t, srv), "<strong>Dune</strong>", "nothing deleted before confirming")

	post(t, srv, "/delete/confirm", url.Values{"token": {m[1]}})
	assert.Contains(t, page(t, srv), "No books found.")
}

func TestPageSearchAndRefresh(t *testing.T) {
	srv := testSite(t)
	for _, title := range []string{"Dune", "Foundation"} {
		post(t, srv, "/books", url.Values{"title": {title}})
	}

	post(t, srv, "/search", url.Values{"q": {"found"}})
	body := page(t, srv)
	assert.Contains(t, body, "Foundation")
	assert.NotContains(t, body, "<strong>Dune</strong>")
	assert.Contains(t, body, `value="found"`)

	post(t, srv, "/refresh", nil)
	body = page(t, srv)
	assert.Equal(t, 2, strings.Count(body, `class="book-item"`))
}

func TestDeleteUnknownBookRedirects(t *testing.T) {
	srv := testSite(t)
	resp := post(t, srv, "/books/missing/delete", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, page(t, srv), AlertDeleteFailed)
}
