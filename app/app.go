package app

import (
	"fmt"

	"github.com/openshelf/openshelf/config"
	"github.com/openshelf/openshelf/internal/cli"
	"github.com/openshelf/openshelf/internal/service/auth"
	"github.com/openshelf/openshelf/internal/service/catalog"
	"github.com/openshelf/openshelf/internal/service/engagement"
	"github.com/openshelf/openshelf/internal/service/loan"
	"github.com/openshelf/openshelf/internal/service/profile"
	"github.com/openshelf/openshelf/internal/session"
	"github.com/openshelf/openshelf/pkg/logger"
)

// Run wires the session manager and service clients together and executes
// the requested command.
func Run(cfg config.Config) error {
	log := logger.NewLogger(cfg.Log, "openshelf")
	defer log.Sync() //nolint:errcheck

	storePath := cfg.Store.Path
	if storePath == "" {
		var err error
		if storePath, err = session.DefaultStorePath(); err != nil {
			return fmt.Errorf("resolve store path: %w", err)
		}
	}
	store, err := session.NewSQLiteStore(storePath, log)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	authSvc := auth.NewService(log, cfg.API)
	mgr := session.NewManager(log, authSvc, store)

	// one authorizing client shared by every API view
	client := mgr.Client(cfg.API.Timeout, cfg.API.RateLimit)
	app := cli.New(log, cfg, mgr,
		catalog.NewService(log, client, cfg.API.BaseURL),
		loan.NewService(log, client, cfg.API.BaseURL),
		profile.NewService(log, client, cfg.API.BaseURL),
		engagement.NewService(log, client, cfg.API.BaseURL),
	)

	return app.NewRootCmd().Execute()
}
