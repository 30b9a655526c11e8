// Package cli административные команды gigctl: миграции, тарифы, выплаты.
package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/ignatzorin/gig-marketplace/internal/app"
	"github.com/ignatzorin/gig-marketplace/internal/config"
	"github.com/ignatzorin/gig-marketplace/internal/logger"
	"github.com/spf13/cobra"
)

var okMark = color.New(color.FgGreen).Sprint("✓")

func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gigctl",
		Short: "Administrative tool for the gig marketplace",
		Long: `gigctl runs operator tasks against the marketplace ledger:
schema migrations, plan changes, admin accounts and provider payouts.

Configuration is read from the same environment (.env) as the server.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(MigrateCmd())
	cmd.AddCommand(PlanCmd())
	cmd.AddCommand(AdminCmd())
	cmd.AddCommand(PayoutCmd())

	return cmd
}

// session окружение одной команды.
type session struct {
	cfg    *config.Config
	ledger *app.Ledger
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Env)
	logger.SetLevel(cfg.LogLevel)

	ledger, err := app.OpenLedger(ctx, cfg, false)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, ledger: ledger}, nil
}

func (s *session) Close() {
	s.ledger.Close()
}

func requirePostgres(s *session) error {
	if s.ledger.DB == nil {
		return fmt.Errorf("command requires STORAGE_DRIVER=%s", config.StorageDriverPostgres)
	}
	return nil
}
