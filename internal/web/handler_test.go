package web

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "datamapper/internal/db"
	"datamapper/internal/domain"
)

func seedUsers(t *testing.T, writeDB *sql.DB) {
	t.Helper()
	_, err := writeDB.Exec(`INSERT INTO users (name, email, age, active, nickname) VALUES
		('Ada', 'ada@example.com', 36, 1, 'Countess'),
		('Bob', 'bob@example.com', 25, 0, NULL),
		('Cy', 'cy@example.com', 41, 1, NULL)`)
	require.NoError(t, err)
}

func setupRouter(t *testing.T, templateDir string) http.Handler {
	t.Helper()
	conn, writeDB := internaldb.OpenTestConnection(t)
	seedUsers(t, writeDB)

	r := chi.NewRouter()
	MountRoutes(r, NewHandler(conn, NewForward(templateDir, nil), nil))
	return r
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestUsersList(t *testing.T) {
	r := setupRouter(t, "")

	rec := get(t, r, "/users")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Countess")
	assert.Contains(t, body, "bob@example.com")
	assert.Contains(t, body, "Cy")
}

func TestUsersList_Filters(t *testing.T) {
	r := setupRouter(t, "")

	tests := []struct {
		name    string
		path    string
		status  int
		want    []string
		notWant []string
	}{
		{"min age", "/users?min_age=30", http.StatusOK, []string{"ada@example.com", "cy@example.com"}, []string{"bob@example.com"}},
		{"active", "/users?active=true", http.StatusOK, []string{"ada@example.com", "cy@example.com"}, []string{"bob@example.com"}},
		{"name prefix", "/users?name=B", http.StatusOK, []string{"bob@example.com"}, []string{"ada@example.com"}},
		{"no match", "/users?name=Zed", http.StatusOK, []string{"No users match."}, nil},
		{"bad age", "/users?min_age=old", http.StatusBadRequest, []string{"min_age must be an integer"}, nil},
		{"bad active", "/users?active=maybe", http.StatusBadRequest, []string{"active must be a boolean"}, nil},
		{"wildcard prefix", "/users?name=a%25", http.StatusBadRequest, []string{"wildcard"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, r, tt.path)
			assert.Equal(t, tt.status, rec.Code)
			for _, s := range tt.want {
				assert.Contains(t, rec.Body.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, rec.Body.String(), s)
			}
		})
	}
}

func TestUsersDetail(t *testing.T) {
	r := setupRouter(t, "")

	rec := get(t, r, "/users/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Ada</h1>")
	assert.Contains(t, rec.Body.String(), "Countess")

	rec = get(t, r, "/users/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "users with id 999 not found")

	rec = get(t, r, "/users/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, r, "/users/0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsersCard(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, UserCardTemplate, `<div class="card">{{.DisplayName}} &lt;{{.Email}}&gt;</div>`)
	r := setupRouter(t, dir)

	rec := get(t, r, "/users/1/card")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `<div class="card">Countess &lt;ada@example.com&gt;</div>`, rec.Body.String())

	rec = get(t, r, "/users/42/card")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsersCard_MissingTemplate(t *testing.T) {
	r := setupRouter(t, t.TempDir())

	rec := get(t, r, "/users/1/card")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page Unavailable")
}

func TestUsersCard_FailedRenderWritesOnlyErrorPage(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, UserCardTemplate, `<div>{{.Email}}</div>{{.NoSuchField}}`)
	r := setupRouter(t, dir)

	rec := get(t, r, "/users/1/card")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unexpected Error")
	assert.NotContains(t, rec.Body.String(), "ada@example.com")
}

type brokenConn struct{}

func (brokenConn) Prepare(context.Context, string) (internaldb.Statement, error) {
	return nil, &internaldb.Error{Op: "prepare", Code: 14, Err: errors.New("unable to open database file")}
}

func TestUsers_StorageFailure(t *testing.T) {
	r := chi.NewRouter()
	MountRoutes(r, NewHandler(brokenConn{}, nil, nil))

	for _, path := range []string{"/users", "/users/1"} {
		rec := get(t, r, path)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "The user store is unavailable.", path)
		assert.NotContains(t, rec.Body.String(), "unable to open", path)
	}
}

func TestUsersList_Pagination(t *testing.T) {
	r := setupRouter(t, "")

	rec := get(t, r, "/users?max_results=2")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "ada@example.com")
	assert.Contains(t, body, "bob@example.com")
	assert.NotContains(t, body, "cy@example.com")
	assert.Contains(t, body, `rel="next"`)

	next := "/users?max_results=2&amp;page_token=" + domain.EncodePageToken(2)
	assert.Contains(t, body, next)

	rec = get(t, r, "/users?max_results=2&page_token="+domain.EncodePageToken(2))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cy@example.com")
	assert.NotContains(t, rec.Body.String(), `rel="next"`)

	rec = get(t, r, "/users?page_token=***")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
