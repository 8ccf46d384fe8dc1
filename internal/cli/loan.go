package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/openshelf/openshelf/internal/errs"
	"github.com/openshelf/openshelf/internal/model"
	"github.com/openshelf/openshelf/internal/service/catalog"
)

func (a *App) newBorrowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <isbn>",
		Short: "Borrow a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.loan.Borrow(ctx, args[0]); err != nil {
				return err
			}
			// reflect the server's new holder state, no local bookkeeping
			book, err := a.catalog.GetBook(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Borrowed %q", book.Title)
			if book.DueDate != nil {
				fmt.Fprintf(out, ", due %s", book.DueDate.Format(time.DateOnly))
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

func (a *App) newReturnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return <isbn>",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.loan.Return(ctx, args[0]); err != nil {
				return err
			}
			book, err := a.catalog.GetBook(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Returned %q\n", book.Title)
			if book.OverdueFee > 0 {
				fmt.Fprintf(out, "Outstanding overdue fee: %.2f (pay with: openshelf fees pay %s %.2f)\n",
					book.OverdueFee, book.ISBN, book.OverdueFee)
			}
			return nil
		},
	}
}

func (a *App) newBorrowedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "borrowed",
		Short: "List books borrowed by the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				user *model.User
				page model.BookPage
			)
			gg, gctx := errgroup.WithContext(ctx)
			gg.Go(func() error {
				var err error
				user, err = a.session.FetchCurrentUser(gctx)
				return err
			})
			gg.Go(func() error {
				var err error
				page, err = a.catalog.ListBooks(gctx, catalog.Query{})
				return err
			})
			if err := gg.Wait(); err != nil {
				return err
			}
			if user == nil {
				return errs.ErrNoSession
			}

			mine := make([]model.Book, 0, len(page.Results))
			for _, b := range page.Results {
				if b.BorrowedBy == user.Email {
					mine = append(mine, b)
				}
			}
			if len(mine) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "You have not borrowed any books.")
				return nil
			}
			renderBooks(cmd, mine)
			return nil
		},
	}
}

func (a *App) newFeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fees",
		Short: "Overdue fees",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "pay <isbn> <amount>",
		Short: "Pay the overdue fee on a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			req := model.PayFeeRequest{ISBN: args[0], Amount: amount}
			if err := a.validate.Validate(req); err != nil {
				return err
			}
			if err := a.loan.PayFee(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Paid %.2f for %s\n", amount, args[0])
			return nil
		},
	})
	return cmd
}
