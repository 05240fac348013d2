// Package serve runs the timesheet HTTP server.
package serve

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopstack-asia/shopstack-timesheet/internal/api"
	"github.com/shopstack-asia/shopstack-timesheet/internal/conf"
	"github.com/shopstack-asia/shopstack-timesheet/internal/masterdata"
	"github.com/shopstack-asia/shopstack-timesheet/internal/notify"
	"github.com/shopstack-asia/shopstack-timesheet/internal/security"
	"github.com/shopstack-asia/shopstack-timesheet/internal/sheets"
	"github.com/shopstack-asia/shopstack-timesheet/internal/timesheet"
	"github.com/shopstack-asia/shopstack-timesheet/internal/zoho"
)

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the timesheet web service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings)
		},
	}
}

// run wires the components together and serves until interrupted.
func run(settings *conf.Settings) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sheets.New(ctx, &settings.Sheets)
	if err != nil {
		return err
	}

	directory, err := zoho.NewClient(&settings.Zoho)
	if err != nil {
		return err
	}

	ttl := settings.MasterData.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	master := masterdata.NewCache(store, ttl)
	engine := timesheet.NewEngine(store)
	reminders := notify.New(&settings.SMTP, &settings.Slack)

	sessions := security.NewSessionManager(&settings.Security)
	security.InitializeGoth(&settings.Security, sessions)
	auth := security.NewAuthHandlers(&settings.Security, sessions, directory)

	controller := api.New(settings, master, store, engine, directory, reminders, sessions, auth)
	return controller.Start(ctx)
}
