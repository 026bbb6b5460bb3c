package savedbook

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bookfinder/internal/book"
	"bookfinder/internal/httpx"
	"bookfinder/internal/platform/googlebooks"
	"bookfinder/internal/platform/postgres"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type saveReq struct {
	BookID string `json:"book_id" validate:"required"`
}

// List handles GET /v1/me/saved?q=
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context(), httpx.UserIDFrom(r))
	if err != nil {
		writeStoreError(w, r, err, "Failed to load your saved books.")
		return
	}

	term := r.URL.Query().Get("q")
	filtered := Filter(entries, term)
	httpx.JSONSuccess(w, r, filtered, map[string]any{
		"total":    len(entries),
		"filtered": len(filtered),
	})
}

// Save handles POST /v1/me/saved
func (h *HTTPHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	entry, err := h.service.Save(r.Context(), httpx.UserIDFrom(r), req.BookID)
	if err != nil {
		var fe *googlebooks.FetchError
		switch {
		case errors.Is(err, ErrBookIDRequired):
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "book_id is required", nil)
		case errors.Is(err, book.ErrNotFound):
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		case errors.As(err, &fe):
			httpx.JSONError(w, r, http.StatusBadGateway, "REMOTE_FETCH_ERROR", "Could not fetch book details. Please try again later.", nil)
		default:
			writeStoreError(w, r, err, "Failed to save book to your collection.")
		}
		return
	}

	httpx.JSONCreated(w, r, entry)
}

// Remove handles DELETE /v1/me/saved/{id}
func (h *HTTPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), httpx.UserIDFrom(r), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, err, "Failed to remove book from your collection.")
		return
	}
	httpx.JSONSuccess(w, r, map[string]string{"message": "Book removed from your collection."}, nil)
}

func writeStoreError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, postgres.ErrUnavailable) {
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Saving books is unavailable right now.", nil)
		return
	}
	httpx.JSONError(w, r, http.StatusInternalServerError, "STORE_ERROR", message, nil)
}
