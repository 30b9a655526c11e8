package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/ignatzorin/gig-marketplace/internal/db"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(migrateUpCmd())
	cmd.AddCommand(migrateDownCmd())
	cmd.AddCommand(migrateVersionCmd())

	return cmd
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			if err := requirePostgres(s); err != nil {
				return err
			}

			if err := db.RunMigrations(s.ledger.DB, s.cfg.MigrationsPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Migrations applied\n", okMark)
			return nil
		},
	}
}

func migrateDownCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migrations",
		Long: `Roll back the given number of migrations (default 1).

Examples:
  gigctl migrate down
  gigctl migrate down --steps 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			if err := requirePostgres(s); err != nil {
				return err
			}

			if err := db.RollbackMigrations(s.ledger.DB, s.cfg.MigrationsPath, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Rolled back %d migration(s)\n", okMark, max(steps, 1))
			return nil
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	return cmd
}

func migrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()
			if err := requirePostgres(s); err != nil {
				return err
			}

			version, dirty, err := db.MigrationVersion(s.ledger.DB, s.cfg.MigrationsPath)
			if err != nil {
				return err
			}
			state := color.New(color.FgGreen).Sprint("clean")
			if dirty {
				state = color.New(color.FgRed).Sprint("DIRTY")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d (%s)\n", version, state)
			return nil
		},
	}
}
