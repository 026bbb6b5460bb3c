package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookfinder/internal/auth"
	"bookfinder/internal/book"
	"bookfinder/internal/httpx"
	"bookfinder/internal/identity"
	"bookfinder/internal/savedbook"
)

func newTestServer(t *testing.T) *httptest.Server {
	r := chi.NewRouter()
	r.Get("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			httpx.JSONError(w, r, http.StatusBadRequest, "EMPTY_QUERY", "Please enter a search term.", nil)
			return
		}
		httpx.JSONSuccess(w, r, []book.Book{{ID: "abc", Title: "Dune", Authors: []string{"Frank Herbert"}}}, nil)
	})
	r.Post("/v1/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		var req auth.SignInReq
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret1" {
			httpx.JSONError(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid login credentials", nil)
			return
		}
		httpx.JSONSuccess(w, r, auth.Tokens{
			AccessToken: "at", RefreshToken: "rt", TokenType: "bearer", ExpiresIn: 3600,
			User: auth.Identity{ID: "u1", Email: req.Email},
		}, nil)
	})
	r.Post("/v1/auth/signout", func(w http.ResponseWriter, r *http.Request) {
		var req auth.SignOutReq
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		assert.Equal(t, "rt", req.RefreshToken)
		httpx.JSONNoContent(w)
	})
	r.Get("/v1/me/saved", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at" {
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Please sign in to continue", nil)
			return
		}
		assert.Equal(t, "dune", r.URL.Query().Get("q"))
		httpx.JSONSuccess(w, r, []savedbook.Entry{{ID: "e1", BookID: "abc"}}, map[string]any{"total": 1})
	})
	r.Delete("/v1/me/saved/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "e1", chi.URLParam(r, "id"))
		httpx.JSONSuccess(w, r, map[string]string{"message": "Book removed from your collection."}, nil)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Search(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, nil)

	books, err := c.Search(context.Background(), "dune")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)

	_, err = c.Search(context.Background(), "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "EMPTY_QUERY", apiErr.Code)
	assert.Equal(t, "Please enter a search term.", apiErr.Error())
}

func TestClient_SessionFlow(t *testing.T) {
	srv := newTestServer(t)
	s := identity.NewSession()
	c := New(srv.URL, s.AccessToken)
	ctx := context.Background()

	_, err := c.ListSaved(ctx, "dune")
	assert.True(t, IsUnauthorized(err))

	err = s.SignIn(ctx, c, "reader@example.com", "wrong")
	assert.Error(t, err)
	assert.Equal(t, "Invalid login credentials", s.Snapshot().Err)

	require.NoError(t, s.SignIn(ctx, c, "reader@example.com", "secret1"))
	g, ok := s.Grant()
	require.True(t, ok)
	assert.False(t, g.ExpiresAt.IsZero())

	entries, err := c.ListSaved(ctx, "dune")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].ID)

	require.NoError(t, c.RemoveSaved(ctx, "e1"))
	require.NoError(t, s.SignOut(ctx, c))
	assert.Equal(t, identity.Anonymous, s.State())
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := New(srv.URL, nil).Search(context.Background(), "dune")
	assert.Error(t, err)
	assert.False(t, IsUnauthorized(err))
}

func TestClient_NonEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Search(context.Background(), "dune")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}
