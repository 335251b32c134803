package main

import (
	"github.com/spf13/cobra"

	"github.com/lona-agency/trading-cli/internal/botreg"
	"github.com/lona-agency/trading-cli/internal/platform"
)

// newKeyCmd builds the key verb tree. use is "key" both at the top
// level and under the bot alias.
func newKeyCmd(client *platform.Client, use string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         "Rotate and revoke bot API keys",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          groupUsage(use, []string{use + " rotate", use + " revoke"}),
	}
	cmd.AddCommand(newKeyRotateCmd(client))
	cmd.AddCommand(newKeyRevokeCmd(client))
	return cmd
}

func addKeyFlags(cmd *cobra.Command, in *botreg.KeyInput) {
	cmd.Flags().StringVar(&in.BotID, "bot-id", "", "bot whose key is managed")
	cmd.Flags().StringVar(&in.Reason, "reason", "", "optional audit reason")
	cmd.Flags().StringVar(&in.RequestIDSeed, "request-id", "", "request id seed (generated when omitted)")
	cmd.Flags().StringVar(&in.IdempotencyKeySeed, "idempotency-key", "", "idempotency key seed (generated when omitted)")
}

func newKeyRotateCmd(client *platform.Client) *cobra.Command {
	var in botreg.KeyInput
	cmd := &cobra.Command{
		Use:           "rotate",
		Short:         "Issue a replacement API key for a bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := botreg.NewOrchestrator(client)
			result, err := o.RotateKey(cmd.Context(), in)
			if err != nil {
				return err
			}
			return outputJSON(result)
		},
	}
	addKeyFlags(cmd, &in)
	return cmd
}

func newKeyRevokeCmd(client *platform.Client) *cobra.Command {
	var in botreg.KeyInput
	cmd := &cobra.Command{
		Use:           "revoke",
		Short:         "Revoke one of a bot's API keys",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := botreg.NewOrchestrator(client)
			result, err := o.RevokeKey(cmd.Context(), in)
			if err != nil {
				return err
			}
			return outputJSON(result)
		},
	}
	addKeyFlags(cmd, &in)
	cmd.Flags().StringVar(&in.KeyID, "key-id", "", "key to revoke")
	return cmd
}
