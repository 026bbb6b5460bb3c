package source

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bookfinder/internal/book"
	"bookfinder/internal/httpx"
)

// BookGetter resolves a provider volume id to a canonical book.
type BookGetter interface {
	Get(ctx context.Context, id string) (book.Book, error)
}

type HTTPHandler struct {
	books   BookGetter
	catalog *Catalog
}

func NewHTTPHandler(books BookGetter, catalog *Catalog) *HTTPHandler {
	return &HTTPHandler{books: books, catalog: catalog}
}

type detailResponse struct {
	Book    book.Book           `json:"book"`
	Sources map[Category][]Link `json:"sources"`
}

// Detail handles GET /v1/books/{id}
func (h *HTTPHandler) Detail(w http.ResponseWriter, r *http.Request) {
	b, err := h.books.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		book.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, detailResponse{Book: b, Sources: h.catalog.Expand(b)}, nil)
}

// Sources handles GET /v1/books/{id}/sources
func (h *HTTPHandler) Sources(w http.ResponseWriter, r *http.Request) {
	b, err := h.books.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		book.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, h.catalog.Expand(b), nil)
}
