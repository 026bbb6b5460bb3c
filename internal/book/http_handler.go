package book

import (
	"errors"
	"net/http"

	"bookfinder/internal/httpx"
)

const searchFailedMessage = "An error occurred while searching for books. Please try again later."

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Search handles GET /v1/search?q=
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	books, err := h.service.Search(r.Context(), query)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, books, map[string]any{
		"query": query,
		"count": len(books),
	})
}

// WriteError maps book and metadata errors onto the JSON envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrEmptyQuery):
		httpx.JSONError(w, r, http.StatusBadRequest, "EMPTY_QUERY", "Please enter a search term.", nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	default:
		httpx.JSONError(w, r, http.StatusBadGateway, "REMOTE_FETCH_ERROR", searchFailedMessage, nil)
	}
}
