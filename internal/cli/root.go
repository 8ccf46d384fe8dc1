package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openshelf/openshelf/config"
	"github.com/openshelf/openshelf/internal/model"
	"github.com/openshelf/openshelf/pkg/validate"
)

// App wires the commands (the "views") to the session manager and the API
// service clients. Commands hold no state of their own; everything renders
// from a fresh fetch.
type App struct {
	log        *zap.Logger
	cfg        config.Config
	session    Session
	catalog    CatalogService
	loan       LoanService
	profile    ProfileService
	engagement EngagementService
	validate   *validate.CustomValidator
}

func New(log *zap.Logger, cfg config.Config, sess Session, cat CatalogService,
	ln LoanService, prof ProfileService, eng EngagementService) *App {
	a := &App{
		log:        log,
		cfg:        cfg,
		session:    sess,
		catalog:    cat,
		loan:       ln,
		profile:    prof,
		engagement: eng,
		validate:   validate.NewCustomValidator(),
	}
	a.session.Subscribe(func(user *model.User) {
		if user == nil {
			a.log.Debug("session cleared")
			return
		}
		a.log.Debug("session user changed", zap.String("email", user.Email))
	})
	return a
}

func (a *App) NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "openshelf",
		Short:         "Command-line client for the openshelf library service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		a.newLoginCmd(),
		a.newLogoutCmd(),
		a.newRegisterCmd(),
		a.newWhoamiCmd(),
		a.newBooksCmd(),
		a.newCategoriesCmd(),
		a.newBorrowCmd(),
		a.newReturnCmd(),
		a.newBorrowedCmd(),
		a.newFeesCmd(),
		a.newFavoritesCmd(),
		a.newNotificationsCmd(),
		a.newProfileCmd(),
	)
	return root
}

func ctxWithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
