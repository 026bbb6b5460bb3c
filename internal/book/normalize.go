package book

import (
	"strings"

	"bookfinder/internal/platform/googlebooks"
)

// Normalize converts provider volumes into canonical books, keeping provider
// order. Volumes without an id are skipped. An empty input yields an empty,
// non-nil slice.
func Normalize(items []googlebooks.Volume) []Book {
	out := make([]Book, 0, len(items))
	for _, v := range items {
		b, ok := FromVolume(v)
		if !ok {
			continue
		}
		out = append(out, b)
	}
	return out
}

// FromVolume maps one volume. It reports false when the volume has no id.
func FromVolume(v googlebooks.Volume) (Book, bool) {
	id := strings.TrimSpace(v.ID)
	if id == "" {
		return Book{}, false
	}
	info := v.VolumeInfo

	b := Book{
		ID:            id,
		Title:         info.Title,
		Authors:       nonBlank(info.Authors),
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		Description:   info.Description,
		PageCount:     info.PageCount,
		Categories:    dedupe(info.Categories),
		Language:      info.Language,
		ISBN:          SelectISBN(info.IndustryIdentifiers),
		PreviewLink:   info.PreviewLink,
	}
	if b.Title == "" {
		b.Title = UnknownTitle
	}
	if len(b.Authors) == 0 {
		b.Authors = []string{UnknownAuthor}
	}
	if info.ImageLinks != nil {
		thumb := info.ImageLinks.Thumbnail
		if thumb == "" {
			thumb = info.ImageLinks.SmallThumbnail
		}
		b.Thumbnail = secureURL(thumb)
	}
	return b, true
}

// SelectISBN prefers ISBN_13 over ISBN_10 regardless of list order.
func SelectISBN(ids []googlebooks.IndustryIdentifier) string {
	var isbn10 string
	for _, id := range ids {
		switch id.Type {
		case googlebooks.IdentifierISBN13:
			if id.Identifier != "" {
				return id.Identifier
			}
		case googlebooks.IdentifierISBN10:
			if isbn10 == "" {
				isbn10 = id.Identifier
			}
		}
	}
	return isbn10
}

// secureURL upgrades http and scheme-relative urls to https. Anything else is
// passed through as given.
func secureURL(raw string) string {
	switch {
	case strings.HasPrefix(raw, "http:"):
		return "https:" + strings.TrimPrefix(raw, "http:")
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	}
	return raw
}

func nonBlank(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// dedupe keeps the first occurrence of each value.
func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
