package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/auth"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/common"
	"github.com/spf13/cobra"
)

// adminPasswordEnv позволяет не передавать пароль через аргументы командной строки.
const adminPasswordEnv = "GIGCTL_ADMIN_PASSWORD"

func PlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage user plans",
	}
	cmd.AddCommand(planSetCmd())
	return cmd
}

func planSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [email] [Free|Basic|Pro]",
		Short: "Change the plan tier of a user",
		Long: `Change the plan tier of a user identified by email.

Examples:
  gigctl plan set client@example.com Basic
  gigctl plan set provider@example.com Pro`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			user, err := s.ledger.Users.FindByEmail(ctx, strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("user %s: %w", args[0], err)
			}

			updated, err := auth.NewSetPlanUseCase(s.ledger.Users, common.Clock(time.Now)).
				Execute(ctx, uuid.Nil, user.ID, args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now on plan %s\n", okMark, updated.Email, updated.Plan)
			return nil
		},
	}
}

func AdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(adminCreateCmd())
	return cmd
}

func adminCreateCmd() *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "create [email]",
		Short: "Create an admin account",
		Long: `Create an admin account. Admins cannot self-register over HTTP.

The password is read from ` + adminPasswordEnv + `.

Examples:
  ` + adminPasswordEnv + `='S3cure-pass' gigctl admin create ops@example.com --name "Ops Team"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv(adminPasswordEnv)
			if password == "" {
				return fmt.Errorf("%s is not set", adminPasswordEnv)
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			user, err := auth.NewCreateAdminUseCase(s.ledger.Users, common.Clock(time.Now)).
				Execute(cmd.Context(), args[0], password, displayName)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Created admin %s (%s)\n", okMark, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "name", "Administrator", "Display name")
	return cmd
}
