package source

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"bookfinder/internal/book"
)

type Category string

const (
	CategoryFree    Category = "free"
	CategoryPaid    Category = "paid"
	CategoryLibrary Category = "library"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryFree, CategoryPaid, CategoryLibrary}

type AccessMode string

const (
	AccessPublicDomain AccessMode = "public_domain"
	AccessBorrowable   AccessMode = "borrowable"
	AccessPreview      AccessMode = "preview"
	AccessPurchase     AccessMode = "purchase"
	AccessLocate       AccessMode = "locate"
)

// Placeholder is substituted exactly once per rendered link.
const Placeholder = "{query}"

// Template is one catalog row.
type Template struct {
	Name       string     `yaml:"name"`
	URL        string     `yaml:"url"`
	Category   Category   `yaml:"category"`
	AccessMode AccessMode `yaml:"access_mode"`
}

// Link is a rendered template.
type Link struct {
	Name       string     `json:"name"`
	URL        string     `json:"url"`
	Category   Category   `json:"category"`
	AccessMode AccessMode `json:"access_mode"`
}

type catalogFile struct {
	ISBNPreferred []string   `yaml:"isbn_preferred"`
	Sources       []Template `yaml:"sources"`
}

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the fixed list of outbound sources.
type Catalog struct {
	templates     []Template
	isbnPreferred []string
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded source catalog: %v", err))
	}
	return c
}

// LoadFile reads a catalog from disk. An empty path yields the embedded catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse source catalog: %w", err)
	}

	perCategory := make(map[Category]int, len(Categories))
	for i, t := range f.Sources {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("source #%d: name is required", i+1)
		}
		if n := strings.Count(t.URL, Placeholder); n != 1 {
			return nil, fmt.Errorf("source %q: url must contain exactly one %s, found %d", t.Name, Placeholder, n)
		}
		if !validCategory(t.Category) {
			return nil, fmt.Errorf("source %q: unknown category %q", t.Name, t.Category)
		}
		if !validAccessMode(t.AccessMode) {
			return nil, fmt.Errorf("source %q: unknown access mode %q", t.Name, t.AccessMode)
		}
		perCategory[t.Category]++
	}
	for _, c := range Categories {
		if perCategory[c] == 0 {
			return nil, fmt.Errorf("category %q has no sources", c)
		}
	}
	return &Catalog{templates: f.Sources, isbnPreferred: f.ISBNPreferred}, nil
}

// Templates returns a copy of the catalog rows in order.
func (c *Catalog) Templates() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Count returns the number of templates in category.
func (c *Catalog) Count(category Category) int {
	n := 0
	for _, t := range c.templates {
		if t.Category == category {
			n++
		}
	}
	return n
}

// PrefersISBN reports whether name is on the ISBN allow-list (case-insensitive).
func (c *Catalog) PrefersISBN(name string) bool {
	for _, n := range c.isbnPreferred {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// Expand renders every template for b. It performs no I/O and every category
// is present in the result.
func (c *Catalog) Expand(b book.Book) map[Category][]Link {
	query := EncodeComponent(b.Title + " " + strings.Join(b.Authors, " "))
	isbnQuery := query
	if b.ISBN != "" {
		isbnQuery = EncodeComponent(b.ISBN)
	}

	out := make(map[Category][]Link, len(Categories))
	for _, cat := range Categories {
		out[cat] = make([]Link, 0, c.Count(cat))
	}
	for _, t := range c.templates {
		q := query
		if c.PrefersISBN(t.Name) {
			q = isbnQuery
		}
		out[t.Category] = append(out[t.Category], Link{
			Name:       t.Name,
			URL:        strings.Replace(t.URL, Placeholder, q, 1),
			Category:   t.Category,
			AccessMode: t.AccessMode,
		})
	}
	return out
}

func validCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func validAccessMode(m AccessMode) bool {
	switch m {
	case AccessPublicDomain, AccessBorrowable, AccessPreview, AccessPurchase, AccessLocate:
		return true
	}
	return false
}
