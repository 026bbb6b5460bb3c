package auth

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"bookfinder/internal/httpx"
)

type HTTPHandler struct {
	provider Provider
}

func NewHTTPHandler(provider Provider) *HTTPHandler {
	return &HTTPHandler{provider: provider}
}

type SignUpReq struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type SignInReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type SignOutReq struct {
	RefreshToken string `json:"refresh_token"`
}

type ResetPasswordReq struct {
	Email string `json:"email" validate:"required,email"`
}

type UpdatePasswordReq struct {
	Token           string `json:"token"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

func clientInfo(r *http.Request) ClientInfo {
	ip := r.RemoteAddr
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	} else if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return ClientInfo{UserAgent: r.Header.Get("User-Agent"), IPAddress: ip}
}

// decode reads and validates the body, writing the error response itself.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return false
	}
	if details := httpx.ValidateStruct(dst); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", httpx.FirstMessage(details), details)
		return false
	}
	return true
}

// SignUp handles POST /v1/auth/signup
func (h *HTTPHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpReq
	if !decode(w, r, &req) {
		return
	}
	tokens, err := h.provider.SignUp(r.Context(), req.Email, req.Password, clientInfo(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, tokens)
}

// SignIn handles POST /v1/auth/signin
func (h *HTTPHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInReq
	if !decode(w, r, &req) {
		return
	}
	tokens, err := h.provider.SignIn(r.Context(), req.Email, req.Password, clientInfo(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, tokens, nil)
}

// Refresh handles POST /v1/auth/refresh
func (h *HTTPHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshReq
	if !decode(w, r, &req) {
		return
	}
	tokens, err := h.provider.Refresh(r.Context(), req.RefreshToken, clientInfo(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, tokens, nil)
}

// SignOut handles POST /v1/auth/signout. The body is optional.
func (h *HTTPHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	var req SignOutReq
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
			return
		}
	}
	if err := h.provider.SignOut(r.Context(), httpx.AccessTokenFrom(r), req.RefreshToken); err != nil {
		WriteError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

// ResetPassword handles POST /v1/auth/reset-password
func (h *HTTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordReq
	if !decode(w, r, &req) {
		return
	}
	if err := h.provider.ResetPassword(r.Context(), req.Email); err != nil {
		WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]string{
		"message": "Check your email for the password reset link.",
	}, nil)
}

// UpdatePassword handles POST /v1/auth/update-password with either a
// recovery token or a signed-in caller.
func (h *HTTPHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req UpdatePasswordReq
	if !decode(w, r, &req) {
		return
	}
	if err := h.provider.UpdatePassword(r.Context(), req.Token, httpx.UserIDFrom(r), req.Password); err != nil {
		WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]string{
		"message": "Your password has been updated.",
	}, nil)
}

// Me handles GET /v1/me
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	httpx.JSONSuccess(w, r, Identity{ID: httpx.UserIDFrom(r), Email: httpx.EmailFrom(r)}, nil)
}

// WriteError maps provider errors onto the JSON envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *Error
	if !errors.As(err, &authErr) {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	status, code := http.StatusBadRequest, "AUTH_ERROR"
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, "INVALID_CREDENTIALS"
	case errors.Is(err, ErrEmailTaken):
		status, code = http.StatusConflict, "EMAIL_TAKEN"
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword):
		status, code = http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, ErrInvalidToken):
		status, code = http.StatusUnauthorized, "INVALID_TOKEN"
	case errors.Is(err, ErrProviderUnavailable):
		status, code = http.StatusServiceUnavailable, "AUTH_UNAVAILABLE"
	}
	httpx.JSONError(w, r, status, code, authErr.Message, nil)
}
