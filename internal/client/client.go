// Package client is a typed client for the BookFinder HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookfinder/internal/auth"
	"bookfinder/internal/book"
	"bookfinder/internal/httpx"
	"bookfinder/internal/identity"
	"bookfinder/internal/mailer"
	"bookfinder/internal/profile"
	"bookfinder/internal/savedbook"
	"bookfinder/internal/source"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details []httpx.ErrorDetail
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      func() string
	userAgent  string
}

// New returns a client for baseURL. token supplies the bearer token per
// request and may be nil.
func New(baseURL string, token func() string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		userAgent:  "bookfinder-cli",
	}
}

type envelope struct {
	Success bool                     `json:"success"`
	Data    json.RawMessage          `json:"data"`
	Error   *httpx.ErrorResponseBody `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var token string
	if c.token != nil {
		token = c.token()
	}
	return c.doAs(ctx, token, method, path, in, out)
}

func (c *Client) doAs(ctx context.Context, token, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) Search(ctx context.Context, query string) ([]book.Book, error) {
	var out []book.Book
	if err := c.do(ctx, http.MethodGet, "/v1/search?q="+url.QueryEscape(query), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type BookDetail struct {
	Book    book.Book                         `json:"book"`
	Sources map[source.Category][]source.Link `json:"sources"`
}

func (c *Client) Book(ctx context.Context, id string) (BookDetail, error) {
	var out BookDetail
	err := c.do(ctx, http.MethodGet, "/v1/books/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) ListSaved(ctx context.Context, filter string) ([]savedbook.Entry, error) {
	path := "/v1/me/saved"
	if filter != "" {
		path += "?q=" + url.QueryEscape(filter)
	}
	var out []savedbook.Entry
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SaveBook(ctx context.Context, bookID string) (savedbook.Entry, error) {
	var out savedbook.Entry
	err := c.do(ctx, http.MethodPost, "/v1/me/saved", map[string]string{"book_id": bookID}, &out)
	return out, err
}

func (c *Client) RemoveSaved(ctx context.Context, entryID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/me/saved/"+url.PathEscape(entryID), nil, nil)
}

func (c *Client) Profile(ctx context.Context) (profile.Profile, error) {
	var out profile.Profile
	err := c.do(ctx, http.MethodGet, "/v1/me/profile", nil, &out)
	return out, err
}

func (c *Client) UpdateUsername(ctx context.Context, username string) (profile.Profile, error) {
	var out profile.Profile
	err := c.do(ctx, http.MethodPut, "/v1/me/profile", profile.UpdateCommand{Username: &username}, &out)
	return out, err
}

func (c *Client) Contact(ctx context.Context, form mailer.ContactForm) error {
	return c.do(ctx, http.MethodPost, "/v1/contact", form, nil)
}

func grantFrom(t auth.Tokens) identity.Grant {
	g := identity.Grant{
		User:         identity.User{ID: t.User.ID, Email: t.User.Email},
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}
	if t.ExpiresIn > 0 {
		g.ExpiresAt = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return g
}

func (c *Client) SignIn(ctx context.Context, email, password string) (identity.Grant, error) {
	var t auth.Tokens
	if err := c.do(ctx, http.MethodPost, "/v1/auth/signin", auth.SignInReq{Email: email, Password: password}, &t); err != nil {
		return identity.Grant{}, err
	}
	return grantFrom(t), nil
}

// SignUp expects the caller to have checked the confirmation already.
func (c *Client) SignUp(ctx context.Context, email, password string) (identity.Grant, error) {
	req := auth.SignUpReq{Email: email, Password: password, ConfirmPassword: password}
	var t auth.Tokens
	if err := c.do(ctx, http.MethodPost, "/v1/auth/signup", req, &t); err != nil {
		return identity.Grant{}, err
	}
	return grantFrom(t), nil
}

// SignOut sends the given tokens rather than the token source's, since the
// session has already dropped them by the time this runs.
func (c *Client) SignOut(ctx context.Context, accessToken, refreshToken string) error {
	return c.doAs(ctx, accessToken, http.MethodPost, "/v1/auth/signout", auth.SignOutReq{RefreshToken: refreshToken}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/reset-password", auth.ResetPasswordReq{Email: email}, nil)
}

// UpdatePassword uses token when set, otherwise the signed-in session.
func (c *Client) UpdatePassword(ctx context.Context, token, password, confirm string) error {
	req := auth.UpdatePasswordReq{Token: token, Password: password, ConfirmPassword: confirm}
	return c.do(ctx, http.MethodPost, "/v1/auth/update-password", req, nil)
}

var _ identity.Authenticator = (*Client)(nil)
