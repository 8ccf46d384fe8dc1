package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (a *App) newFavoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage favorite books",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "check <isbn>",
			Short: "Show whether a book is in your favorites",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				status, err := a.engagement.CheckFavorite(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if status.IsFavorite {
					fmt.Fprintln(cmd.OutOrStdout(), "In your favorites.")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Not in your favorites.")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "toggle <isbn>",
			Short: "Add or remove a book from your favorites",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				status, err := a.engagement.ToggleFavorite(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if status.IsFavorite {
					fmt.Fprintln(cmd.OutOrStdout(), "Added to favorites.")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Removed from favorites.")
				}
				return nil
			},
		},
	)
	return cmd
}

func (a *App) newNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.engagement.Notifications(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(page.Results) == 0 {
				fmt.Fprintln(out, "No notifications.")
				return nil
			}
			for _, n := range page.Results {
				marker := " "
				if !n.IsRead {
					marker = "*"
				}
				fmt.Fprintf(out, "%s [%d] %s: %s\n", marker, n.ID, n.Title, n.Message)
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid notification id %q", args[0])
			}
			if err := a.engagement.MarkRead(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Marked as read.")
			return nil
		},
	})
	return cmd
}
