package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"bookfinder/internal/book"
	"bookfinder/internal/client"
	"bookfinder/internal/identity"
	"bookfinder/internal/profile"
	"bookfinder/internal/savedbook"
	"bookfinder/internal/source"
)

const noDescription = "No description available."

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
)

var categoryTitles = map[source.Category]string{
	source.CategoryFree:    "Free",
	source.CategoryPaid:    "Buy",
	source.CategoryLibrary: "Borrow from a library",
}

func renderBooks(w io.Writer, query string, books []book.Book) {
	if len(books) == 0 {
		fmt.Fprintf(w, "No books found for %q.\n", query)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHORS\tPUBLISHED")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, b.Title, strings.Join(b.Authors, ", "), b.PublishedDate)
	}
	_ = tw.Flush()
}

func renderDetail(w io.Writer, d client.BookDetail) {
	b := d.Book
	fmt.Fprintf(w, "%s\n", titleStyle.Render(b.Title))
	fmt.Fprintf(w, "by %s\n\n", strings.Join(b.Authors, ", "))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(tw, "%s\t%s\n", label, value)
		}
	}
	row("Publisher", b.Publisher)
	row("Published", b.PublishedDate)
	if b.PageCount != nil {
		row("Pages", fmt.Sprint(*b.PageCount))
	}
	row("Categories", strings.Join(b.Categories, ", "))
	row("Language", b.Language)
	row("ISBN", b.ISBN)
	row("Preview", b.PreviewLink)
	_ = tw.Flush()

	desc := strings.TrimSpace(b.Description)
	if desc == "" {
		desc = mutedStyle.Render(noDescription)
	}
	fmt.Fprintf(w, "\n%s\n", desc)

	for _, cat := range source.Categories {
		links := d.Sources[cat]
		if len(links) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", headingStyle.Render(categoryTitles[cat]))
		for _, l := range links {
			fmt.Fprintf(w, "  %-28s %s\n", l.Name, l.URL)
		}
	}
}

func renderSaved(w io.Writer, filter string, entries []savedbook.Entry) {
	if len(entries) == 0 {
		if filter != "" {
			fmt.Fprintf(w, "No saved books match %q.\n", filter)
			return
		}
		fmt.Fprintln(w, "You have not saved any books yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTRY\tBOOK\tTITLE\tAUTHORS")
	for _, e := range entries {
		if e.Book == nil {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.BookID, e.Book.Title, strings.Join(e.Book.Authors, ", "))
	}
	_ = tw.Flush()
}

func renderProfile(w io.Writer, p profile.Profile) {
	username := "(not set)"
	if p.Username != nil && *p.Username != "" {
		username = *p.Username
	}
	fmt.Fprintf(w, "Email:    %s\n", p.Email)
	fmt.Fprintf(w, "Username: %s\n", username)
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Joined:   %s\n", p.CreatedAt.Format("January 2, 2006"))
	}
}

func renderSession(w io.Writer, s identity.Snapshot) {
	switch {
	case s.State == identity.Authenticated && s.User != nil:
		fmt.Fprintf(w, "Signed in as %s.\n", s.User.Email)
	case s.Err != "":
		fmt.Fprintf(w, "Not signed in: %s\n", s.Err)
	default:
		fmt.Fprintln(w, "Not signed in.")
	}
}
