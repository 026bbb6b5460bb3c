package savedbook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookfinder/internal/book"
	"bookfinder/internal/httpx"
	"bookfinder/internal/platform/googlebooks"
	"bookfinder/internal/platform/postgres"
)

func newTestRouter(t *testing.T) (http.Handler, *MockRepository, *MockBookResolver) {
	svc, repo, books := newTestService(t)
	h := NewHTTPHandler(svc)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := httpx.ContextWithUser(req.Context(), userID, "reader@example.com", "tok")
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/v1/me/saved", h.List)
	r.Post("/v1/me/saved", h.Save)
	r.Delete("/v1/me/saved/{id}", h.Remove)
	return r, repo, books
}

func TestHTTPHandler_List(t *testing.T) {
	router, repo, _ := newTestRouter(t)

	t.Run("filters by q", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any(), userID).Return([]Entry{
			entry("1", &book.Book{Title: "Dune"}),
			entry("2", &book.Book{Title: "Emma"}),
		}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/me/saved?q=emm", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data []Entry        `json:"data"`
			Meta map[string]any `json:"meta"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, []string{"2"}, ids(body.Data))
		assert.Equal(t, float64(2), body.Meta["total"])
		assert.Equal(t, float64(1), body.Meta["filtered"])
	})

	t.Run("store failure", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any(), userID).Return(nil, postgres.Wrap("list saved books", context.DeadlineExceeded))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/me/saved", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Failed to load your saved books.")
	})

	t.Run("stub mode", func(t *testing.T) {
		repo.EXPECT().List(gomock.Any(), userID).Return(nil, postgres.ErrUnavailable)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/me/saved", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHTTPHandler_Save(t *testing.T) {
	router, repo, books := newTestRouter(t)

	t.Run("created", func(t *testing.T) {
		books.EXPECT().Ensure(gomock.Any(), "abc").Return(book.Book{ID: "abc", Title: "Dune"}, nil)
		repo.EXPECT().Insert(gomock.Any(), userID, "abc").Return(Entry{ID: entryID, BookID: "abc", UserID: userID}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/me/saved", strings.NewReader(`{"book_id":"abc"}`)))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), entryID)
	})

	t.Run("missing book_id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/me/saved", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/me/saved", strings.NewReader(`{`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown book", func(t *testing.T) {
		books.EXPECT().Ensure(gomock.Any(), "nope").Return(book.Book{}, book.ErrNotFound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/me/saved", strings.NewReader(`{"book_id":"nope"}`)))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("provider failure", func(t *testing.T) {
		books.EXPECT().Ensure(gomock.Any(), "abc").Return(book.Book{}, &googlebooks.FetchError{Op: "volume", Status: 503})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/me/saved", strings.NewReader(`{"book_id":"abc"}`)))

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestHTTPHandler_Remove(t *testing.T) {
	router, repo, _ := newTestRouter(t)
	repo.EXPECT().Delete(gomock.Any(), userID, entryID).Return(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/me/saved/"+entryID, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Book removed from your collection.")
}
