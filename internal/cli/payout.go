package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/infrastructure/stripe"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/common"
	"github.com/ignatzorin/gig-marketplace/internal/usecase/payment"
	"github.com/spf13/cobra"
)

func PayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payout",
		Short: "Provider payouts",
	}
	cmd.AddCommand(payoutApproveCmd())
	return cmd
}

func payoutApproveCmd() *cobra.Command {
	var (
		gigRaw      string
		providerRaw string
		adminEmail  string
	)

	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Transfer the successful payments of a gig to its provider",
		Long: `Sum all successful payments of a gig and transfer the total to the
provider's connected payout account. The transfer is recorded as Pending
until the payment provider confirms it.

Examples:
  gigctl payout approve --gig 5b8e... --provider 0c1d... --admin ops@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gigID, err := uuid.Parse(gigRaw)
			if err != nil {
				return fmt.Errorf("invalid --gig: %w", err)
			}
			providerID, err := uuid.Parse(providerRaw)
			if err != nil {
				return fmt.Errorf("invalid --provider: %w", err)
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			admin, err := s.ledger.Users.FindByEmail(ctx, strings.TrimSpace(adminEmail))
			if err != nil {
				return fmt.Errorf("admin %s: %w", adminEmail, err)
			}

			uc := payment.NewApprovePaymentUseCase(
				s.ledger.Gigs,
				s.ledger.Payments,
				s.ledger.Transfers,
				s.ledger.Users,
				stripe.NewProvider(s.cfg.Stripe),
				nil,
				s.cfg.Stripe.SettlementCurrency,
				common.Clock(time.Now),
			)
			result, err := uc.Execute(ctx, payment.ApprovePaymentInput{
				GigID:      gigID,
				ProviderID: providerID,
				ActorID:    admin.ID,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Transfer %s created\n", okMark, result.ExternalTransferID)
			fmt.Fprintf(out, "  Amount:  %s %s\n", result.Transfer.Amount.StringFixed(2), strings.ToUpper(result.Transfer.Currency))
			fmt.Fprintf(out, "  Account: %s\n", result.AccountID)
			fmt.Fprintf(out, "  Status:  %s\n", color.New(color.FgYellow).Sprint(result.Transfer.Status))
			return nil
		},
	}

	cmd.Flags().StringVar(&gigRaw, "gig", "", "Gig ID")
	cmd.Flags().StringVar(&providerRaw, "provider", "", "Provider user ID")
	cmd.Flags().StringVar(&adminEmail, "admin", "", "Email of the approving admin")
	_ = cmd.MarkFlagRequired("gig")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("admin")

	return cmd
}
