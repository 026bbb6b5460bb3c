package book

import "errors"

var (
	// ErrNotFound is returned when the provider or the books table has no such volume.
	ErrNotFound = errors.New("book not found")
	// ErrEmptyQuery is returned before any remote call when the search term is blank.
	ErrEmptyQuery = errors.New("search query is empty")
)

// Fallbacks applied by Normalize when the provider omits a field.
const (
	UnknownTitle  = "Unknown Title"
	UnknownAuthor = "Unknown Author"
)

// Book is the canonical book shape shared by search, saved entries and source links.
// ID is the metadata provider's volume id.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Description   string   `json:"description,omitempty"`
	PageCount     *int     `json:"page_count,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Language      string   `json:"language,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
	PreviewLink   string   `json:"preview_link,omitempty"`
}
