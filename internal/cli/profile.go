package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openshelf/openshelf/internal/model"
)

func (a *App) newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
	}
	cmd.AddCommand(a.newProfileShowCmd(), a.newProfileUpdateCmd())
	return cmd
}

func (a *App) newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.profile.Get(cmd.Context())
			if err != nil {
				return err
			}
			renderProfile(cmd, user)
			return nil
		},
	}
}

func (a *App) newProfileUpdateCmd() *cobra.Command {
	var up model.ProfileUpdate
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			// missing fields keep their current value
			current, err := a.profile.Get(cmd.Context())
			if err != nil {
				return err
			}
			if up.FirstName == "" {
				up.FirstName = current.FirstName
			}
			if up.LastName == "" {
				up.LastName = current.LastName
			}
			if up.Email == "" {
				up.Email = current.Email
			}
			if err := a.validate.Validate(up); err != nil {
				return err
			}
			user, err := a.profile.Update(cmd.Context(), up)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated.")
			renderProfile(cmd, user)
			return nil
		},
	}
	cmd.Flags().StringVar(&up.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&up.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&up.Email, "email", "", "email")
	cmd.Flags().StringVar(&up.PicturePath, "picture", "", "profile picture file")
	return cmd
}

func renderProfile(cmd *cobra.Command, user model.User) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:  %s\n", user.FullName())
	fmt.Fprintf(out, "Email: %s\n", user.Email)
	if user.IsLibrarian {
		fmt.Fprintln(out, "Role:  librarian")
	}
	if user.ProfilePicture != "" {
		fmt.Fprintf(out, "Picture: %s\n", user.ProfilePicture)
	}
}
