package savedbook

import "strings"

// Filter keeps entries whose joined book matches term, case-insensitively, in
// the title, any author or any category. Entries without a book are always
// dropped. An empty term keeps everything else. The term is used as given,
// whitespace included. Input order is preserved.
func Filter(entries []Entry, term string) []Entry {
	needle := strings.ToLower(term)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Book == nil {
			continue
		}
		if needle == "" || matches(e, needle) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e Entry, needle string) bool {
	if strings.Contains(strings.ToLower(e.Book.Title), needle) {
		return true
	}
	for _, a := range e.Book.Authors {
		if strings.Contains(strings.ToLower(a), needle) {
			return true
		}
	}
	for _, c := range e.Book.Categories {
		if strings.Contains(strings.ToLower(c), needle) {
			return true
		}
	}
	return false
}
