package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newWalletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet commands",
	}

	cmd.AddCommand(newWalletGetCmd())
	cmd.AddCommand(newWalletHistoryCmd())
	cmd.AddCommand(newWalletSetCmd())

	return cmd
}

func walletPath(email string) string {
	return fmt.Sprintf("/api/v1/wallets/%s", url.PathEscape(email))
}

func newWalletGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <email>",
		Short: "Get a wallet balance, creating the wallet if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Wallet

			if err := client.Get(walletPath(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newWalletHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <email>",
		Short: "Show a wallet's ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result WalletHistory

			if err := client.Get(walletPath(args[0])+"/history", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newWalletSetCmd() *cobra.Command {
	var (
		amount int64
		reason string
	)

	cmd := &cobra.Command{
		Use:   "set <email>",
		Short: "Set a wallet to an absolute balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"amount": amount}
			if reason != "" {
				req["reason"] = reason
			}

			var result Wallet

			if err := client.Post(walletPath(args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&amount, "amount", 0, "New balance (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "Ledger action tag")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
