package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookfinder/internal/httpx"
)

func post(h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	h(w, r)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body httpx.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Error.Code
}

func TestHTTPHandler_SignUp(t *testing.T) {
	t.Run("password mismatch rejected locally", func(t *testing.T) {
		h := NewHTTPHandler(newFixture(t).svc)
		w := post(h.SignUp, "/v1/auth/signup", `{"email":"reader@example.com","password":"secret1","confirm_password":"secret2"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Passwords do not match")
	})

	t.Run("short password rejected locally", func(t *testing.T) {
		h := NewHTTPHandler(newFixture(t).svc)
		w := post(h.SignUp, "/v1/auth/signup", `{"email":"reader@example.com","password":"123","confirm_password":"123"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	})

	t.Run("email taken", func(t *testing.T) {
		f := newFixture(t)
		f.users.EXPECT().Create(gomock.Any(), testEmail, gomock.Any()).Return(User{}, ErrEmailTaken)

		w := post(NewHTTPHandler(f.svc).SignUp, "/v1/auth/signup", `{"email":"reader@example.com","password":"secret1","confirm_password":"secret1"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "EMAIL_TAKEN", errorCode(t, w))
	})

	t.Run("created", func(t *testing.T) {
		f := newFixture(t)
		f.users.EXPECT().Create(gomock.Any(), testEmail, gomock.Any()).Return(User{ID: testUserID, Email: testEmail}, nil)
		f.sessions.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		w := post(NewHTTPHandler(f.svc).SignUp, "/v1/auth/signup", `{"email":"reader@example.com","password":"secret1","confirm_password":"secret1"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		var body struct {
			Data Tokens `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "bearer", body.Data.TokenType)
		assert.Equal(t, testEmail, body.Data.User.Email)
	})
}

func TestHTTPHandler_SignIn(t *testing.T) {
	f := newFixture(t)
	f.users.EXPECT().GetByEmail(gomock.Any(), testEmail).Return(User{}, ErrUserNotFound)

	w := post(NewHTTPHandler(f.svc).SignIn, "/v1/auth/signin", `{"email":"reader@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, w))
}

func TestHTTPHandler_SignOut(t *testing.T) {
	f := newFixture(t)
	access, _, err := GenerateToken(testSecret, testUserID, testEmail, time.Hour)
	require.NoError(t, err)
	f.sessions.EXPECT().DeleteByTokenHash(gomock.Any(), hashToken("r1")).Return(nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/auth/signout", strings.NewReader(`{"refresh_token":"r1"}`))
	r = r.WithContext(httpx.ContextWithUser(r.Context(), testUserID, testEmail, access))
	NewHTTPHandler(f.svc).SignOut(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	revoked, err := f.tokens.IsRevoked(r.Context(), mustJTI(t, access))
	require.NoError(t, err)
	assert.True(t, revoked)
}

func mustJTI(t *testing.T, token string) string {
	t.Helper()
	c, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	return c.ID
}

func TestHTTPHandler_UpdatePassword(t *testing.T) {
	t.Run("anonymous without token", func(t *testing.T) {
		h := NewHTTPHandler(newFixture(t).svc)
		w := post(h.UpdatePassword, "/v1/auth/update-password", `{"password":"newpass","confirm_password":"newpass"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_TOKEN", errorCode(t, w))
	})

	t.Run("mismatch", func(t *testing.T) {
		h := NewHTTPHandler(newFixture(t).svc)
		w := post(h.UpdatePassword, "/v1/auth/update-password", `{"token":"t","password":"newpass","confirm_password":"other1"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_StubProvider(t *testing.T) {
	h := NewHTTPHandler(Unavailable{})

	w := post(h.SignIn, "/v1/auth/signin", `{"email":"reader@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "AUTH_UNAVAILABLE", errorCode(t, w))

	w = post(h.ResetPassword, "/v1/auth/reset-password", `{"email":"reader@example.com"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHTTPHandler_Me(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	r = r.WithContext(httpx.ContextWithUser(r.Context(), testUserID, testEmail, "tok"))
	NewHTTPHandler(Unavailable{}).Me(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), testEmail)
}
