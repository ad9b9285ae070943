package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session management commands",
	}

	cmd.AddCommand(newSessionCreateCmd())

	return cmd
}

func newSessionCreateCmd() *cobra.Command {
	var name, payoutAddress string
	var body, face, color int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a session and save its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			req := map[string]any{
				"display_name": name,
				"avatar": map[string]int{
					"body":  body,
					"face":  face,
					"color": color,
				},
			}
			if payoutAddress != "" {
				req["payout_address"] = payoutAddress
			}

			var result Session

			if err := client.Post("/api/v1/sessions", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&payoutAddress, "payout-address", "", "Wallet address for reward payouts")
	cmd.Flags().IntVar(&body, "body", 0, "Avatar body index")
	cmd.Flags().IntVar(&face, "face", 0, "Avatar face index")
	cmd.Flags().IntVar(&color, "color", 0, "Avatar color index")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
