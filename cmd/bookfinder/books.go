package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"bookfinder/internal/book"
	"bookfinder/internal/mailer"
	"bookfinder/internal/profile"
)

func (c *cli) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the book catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return book.ErrEmptyQuery
			}
			books, err := c.api.Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			renderBooks(c.out, query, books)
			return nil
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <book-id>",
		Short: "Show a book and where to read, buy or borrow it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := c.api.Book(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderDetail(c.out, detail)
			return nil
		},
	}
}

func (c *cli) savedCmd() *cobra.Command {
	saved := &cobra.Command{
		Use:   "saved",
		Short: "Manage your saved books",
	}

	var filter string
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireUser(); err != nil {
				return err
			}
			entries, err := c.api.ListSaved(cmd.Context(), filter)
			if err != nil {
				return c.apiFailure(err)
			}
			renderSaved(c.out, filter, entries)
			return nil
		},
	}
	list.Flags().StringVarP(&filter, "filter", "f", "", "match title, author or category")

	add := &cobra.Command{
		Use:   "add <book-id>",
		Short: "Save a book to your collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireUser(); err != nil {
				return err
			}
			e, err := c.api.SaveBook(cmd.Context(), args[0])
			if err != nil {
				return c.apiFailure(err)
			}
			title := e.BookID
			if e.Book != nil {
				title = e.Book.Title
			}
			c.printf("Saved %q to your collection (entry %s).\n", title, e.ID)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <entry-id>",
		Short: "Remove a saved book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireUser(); err != nil {
				return err
			}
			if err := c.api.RemoveSaved(cmd.Context(), args[0]); err != nil {
				return c.apiFailure(err)
			}
			c.printf("Book removed from your collection.\n")
			return nil
		},
	}

	saved.AddCommand(list, add, remove)
	return saved
}

func (c *cli) profileCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile or change your username",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireUser(); err != nil {
				return err
			}
			var (
				p   profile.Profile
				err error
			)
			if cmd.Flags().Changed("username") {
				name, nerr := profile.NormalizeUsername(username)
				if nerr != nil {
					return nerr
				}
				p, err = c.api.UpdateUsername(cmd.Context(), name)
			} else {
				p, err = c.api.Profile(cmd.Context())
			}
			if err != nil {
				return c.apiFailure(err)
			}
			renderProfile(c.out, p)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "new username (3-50 characters)")
	return cmd
}

func (c *cli) contactCmd() *cobra.Command {
	var form mailer.ContactForm
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the BookFinder team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkLocal(form); err != nil {
				return err
			}
			if err := c.api.Contact(cmd.Context(), form); err != nil {
				return errors.New("There was an error sending your message. Please try again or email us directly.")
			}
			c.printf("Thank you for your message! We'll get back to you soon.\n")
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "your name")
	cmd.Flags().StringVar(&form.Email, "email", "", "your email")
	cmd.Flags().StringVar(&form.Subject, "subject", "General Inquiry", "General Inquiry, Suggestion, Technical Support, Partnership Opportunity or Other")
	cmd.Flags().StringVar(&form.Message, "message", "", "your message")
	return cmd
}
