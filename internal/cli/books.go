package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/openshelf/openshelf/internal/model"
	"github.com/openshelf/openshelf/internal/service/catalog"
)

func (a *App) newBooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Browse and manage the catalog",
	}
	cmd.AddCommand(
		a.newBooksListCmd(),
		a.newBooksShowCmd(),
		a.newBooksAddCmd(),
		a.newBooksUpdateCmd(),
		a.newBooksRemoveCmd(),
	)
	return cmd
}

func (a *App) newBooksListCmd() *cobra.Command {
	var q catalog.Query
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"search"},
		Short:   "List books, optionally filtered by title/author/category",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.catalog.ListBooks(cmd.Context(), q)
			if err != nil {
				return err
			}
			renderBooks(cmd, page.Results)
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Title, "title", "", "filter by title")
	cmd.Flags().StringVar(&q.Author, "author", "", "filter by author")
	cmd.Flags().StringVar(&q.Category, "category", "", "filter by category")
	return cmd
}

func (a *App) newBooksShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <isbn>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			isbn := args[0]
			ctx := cmd.Context()

			var (
				book     model.Book
				favorite *model.FavoriteStatus
			)
			gg, ctx := errgroup.WithContext(ctx)
			gg.Go(func() error {
				var err error
				book, err = a.catalog.GetBook(ctx, isbn)
				return err
			})
			if a.session.Authenticated() {
				gg.Go(func() error {
					status, err := a.engagement.CheckFavorite(ctx, isbn)
					if err != nil {
						// favorite state is decoration; the book view
						// renders without it
						a.log.Debug("favorite check failed")
						return nil
					}
					favorite = &status
					return nil
				})
			}
			if err := gg.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\nby %s\n", book.Title, book.Author)
			if !book.PublishedDate.IsZero() {
				fmt.Fprintf(out, "Published: %s\n", book.PublishedDate.Format(time.DateOnly))
			}
			if book.Category != "" {
				fmt.Fprintf(out, "Category: %s\n", book.Category)
			}
			if book.Description != "" {
				fmt.Fprintf(out, "\n%s\n", book.Description)
			}
			fmt.Fprintln(out)
			switch {
			case book.Available():
				fmt.Fprintln(out, "Status: available")
			default:
				fmt.Fprintf(out, "Status: borrowed by %s", book.BorrowedBy)
				if book.DueDate != nil {
					fmt.Fprintf(out, ", due %s", book.DueDate.Format(time.DateOnly))
				}
				fmt.Fprintln(out)
				if book.OverdueFee > 0 {
					fmt.Fprintf(out, "Overdue fee: %.2f\n", book.OverdueFee)
				}
			}
			if favorite != nil && favorite.IsFavorite {
				fmt.Fprintln(out, "In your favorites.")
			}
			return nil
		},
	}
}

func (a *App) newBooksAddCmd() *cobra.Command {
	var up model.BookUpload
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog (librarian)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validate.Validate(up); err != nil {
				return err
			}
			book, err := a.catalog.CreateBook(cmd.Context(), up)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q (%s)\n", book.Title, book.ISBN)
			return nil
		},
	}
	bookUploadFlags(cmd, &up)
	return cmd
}

func (a *App) newBooksUpdateCmd() *cobra.Command {
	var up model.BookUpload
	cmd := &cobra.Command{
		Use:   "update <isbn>",
		Short: "Update a book (librarian)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if up.ISBN == "" {
				up.ISBN = args[0]
			}
			if err := a.validate.Validate(up); err != nil {
				return err
			}
			book, err := a.catalog.UpdateBook(cmd.Context(), args[0], up)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %q (%s)\n", book.Title, book.ISBN)
			return nil
		},
	}
	bookUploadFlags(cmd, &up)
	return cmd
}

func (a *App) newBooksRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <isbn>",
		Short: "Delete a book (librarian)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.catalog.DeleteBook(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

func (a *App) newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List book categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := a.catalog.Categories(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range categories {
				fmt.Fprintln(cmd.OutOrStdout(), c.Name)
			}
			return nil
		},
	}
}

func bookUploadFlags(cmd *cobra.Command, up *model.BookUpload) {
	cmd.Flags().StringVar(&up.ISBN, "isbn", "", "ISBN")
	cmd.Flags().StringVar(&up.Title, "title", "", "title")
	cmd.Flags().StringVar(&up.Author, "author", "", "author")
	cmd.Flags().StringVar(&up.PublishedDate, "published", "", "published date (yyyy-mm-dd)")
	cmd.Flags().StringVar(&up.Description, "description", "", "description")
	cmd.Flags().StringVar(&up.Category, "category", "", "category")
	cmd.Flags().StringVar(&up.ImagePath, "image", "", "cover image file")
	cmd.Flags().StringVar(&up.PDFPath, "pdf", "", "pdf file")
}

func renderBooks(cmd *cobra.Command, books []model.Book) {
	out := cmd.OutOrStdout()
	if len(books) == 0 {
		fmt.Fprintln(out, "No books found.")
		return
	}
	fmt.Fprintf(out, "%-15s %-35s %-25s %-15s %s\n", "ISBN", "Title", "Author", "Category", "Status")
	fmt.Fprintln(out, strings.Repeat("-", 100))
	for _, b := range books {
		status := "available"
		if !b.Available() {
			status = "borrowed"
			if b.Overdue() {
				status = "overdue"
			}
		}
		fmt.Fprintf(out, "%-15s %-35s %-25s %-15s %s\n",
			b.ISBN, truncate(b.Title, 35), truncate(b.Author, 25), truncate(b.Category, 15), status)
	}
}
