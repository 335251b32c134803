package main

import (
	"github.com/spf13/cobra"

	"github.com/lona-agency/trading-cli/internal/botreg"
	"github.com/lona-agency/trading-cli/internal/platform"
)

// newRegisterCmd builds the register verb tree. use is "register" both
// at the top level and under the bot alias.
func newRegisterCmd(client *platform.Client, use string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         "Register a validation bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          groupUsage(use, []string{use + " invite", use + " partner"}),
	}
	cmd.AddCommand(newRegisterInviteCmd(client))
	cmd.AddCommand(newRegisterPartnerCmd(client))
	return cmd
}

func addRegisterFlags(cmd *cobra.Command, in *botreg.RegisterInput) {
	cmd.Flags().StringVar(&in.InputPath, "input", "", "path to a JSON payload file (bypasses discrete flags)")
	cmd.Flags().StringVar(&in.BotName, "bot-name", "", "name for the new bot")
	cmd.Flags().StringVar(&in.MetadataJSON, "metadata-json", "", "inline JSON object of bot metadata")
	cmd.Flags().StringVar(&in.MetadataFile, "metadata-file", "", "path to a JSON file of bot metadata")
	cmd.Flags().StringVar(&in.RequestIDSeed, "request-id", "", "request id seed (generated when omitted)")
	cmd.Flags().StringVar(&in.IdempotencyKeySeed, "idempotency-key", "", "idempotency key seed (generated when omitted)")
}

func newRegisterInviteCmd(client *platform.Client) *cobra.Command {
	var in botreg.RegisterInput
	cmd := &cobra.Command{
		Use:           "invite",
		Aliases:       []string{"invite-code"},
		Short:         "Register a bot with an invite code",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := botreg.NewOrchestrator(client)
			result, err := o.RegisterInvite(cmd.Context(), in)
			if err != nil {
				return err
			}
			return outputJSON(result)
		},
	}
	addRegisterFlags(cmd, &in)
	cmd.Flags().StringVar(&in.InviteCode, "invite-code", "", "invite code issued by the platform")
	return cmd
}

func newRegisterPartnerCmd(client *platform.Client) *cobra.Command {
	var in botreg.RegisterInput
	cmd := &cobra.Command{
		Use:           "partner",
		Short:         "Register a bot through partner bootstrap credentials",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := botreg.NewOrchestrator(client)
			result, err := o.RegisterPartner(cmd.Context(), in)
			if err != nil {
				return err
			}
			return outputJSON(result)
		},
	}
	addRegisterFlags(cmd, &in)
	cmd.Flags().StringVar(&in.PartnerKey, "partner-key", "", "partner API key")
	cmd.Flags().StringVar(&in.PartnerSecret, "partner-secret", "", "partner API secret")
	cmd.Flags().StringVar(&in.OwnerEmail, "owner-email", "", "email of the bot owner")
	return cmd
}
