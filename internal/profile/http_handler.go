package profile

import (
	"errors"
	"net/http"

	"bookfinder/internal/httpx"
	"bookfinder/internal/platform/postgres"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// GetOwnProfile handles GET /v1/me/profile
func (h *HTTPHandler) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), httpx.UserIDFrom(r), httpx.EmailFrom(r))
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load your profile.", nil)
		return
	}
	httpx.JSONSuccess(w, r, p, nil)
}

// UpdateProfile handles PUT /v1/me/profile
func (h *HTTPHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var cmd UpdateCommand
	if err := httpx.DecodeJSON(r, &cmd); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	p, err := h.service.Update(r.Context(), httpx.UserIDFrom(r), httpx.EmailFrom(r), cmd)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidUsername):
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
				{Field: "username", Message: "Username must be between 3 and 50 characters"},
			})
		case errors.Is(err, postgres.ErrUnavailable):
			httpx.JSONError(w, r, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Profiles are unavailable right now.", nil)
		default:
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update your profile.", nil)
		}
		return
	}
	httpx.JSONSuccess(w, r, p, nil)
}
