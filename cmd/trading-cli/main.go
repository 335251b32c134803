// trading-cli drives trading-strategy validation runs against the
// Platform API. Every command emits a JSON envelope: success to stdout,
// failure to stderr, exit code 1 on any failure.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lona-agency/trading-cli/internal/config"
	"github.com/lona-agency/trading-cli/internal/debug"
	"github.com/lona-agency/trading-cli/internal/hostguard"
	"github.com/lona-agency/trading-cli/internal/platform"
	"github.com/lona-agency/trading-cli/internal/telemetry"
)

const version = "1.0.0"

func main() {
	if err := run(os.Args[1:]); err != nil {
		outputErrorEnvelope(err)
		os.Exit(1)
	}
}

// run wires configuration, the host boundary guard, and the command
// tree. The guard and config checks happen before any command logic so
// a forbidden base URL can never reach the network.
func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := hostguard.Validate(cfg.BaseURL); err != nil {
		return err
	}
	webBase, err := cfg.ReviewWebBaseURL()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := telemetry.Init(ctx, "trading-cli", version); err != nil {
		debug.Logf("telemetry init failed: %v", err)
	}
	defer telemetry.Shutdown(ctx)

	client := platform.NewClient(cfg.BaseURL, cfg.BearerToken, cfg.APIKey)
	root := newRootCmd(client, webBase, cfg.BaseURL)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// readinessEnvelope is the static usage envelope printed on a bare
// invocation.
type readinessEnvelope struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Target   string   `json:"target,omitempty"`
	Commands []string `json:"commands"`
}

var allCommands = []string{
	"review-run trigger",
	"review-run retrieve",
	"review-run render",
	"register invite",
	"register partner",
	"key rotate",
	"key revoke",
}

func newRootCmd(client *platform.Client, webBase, target string) *cobra.Command {
	root := &cobra.Command{
		Use:           "trading-cli",
		Short:         "Trading-strategy validation run client for the Platform API",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return outputJSON(readinessEnvelope{
					Status:   "ok",
					Message:  "trading-cli ready",
					Target:   target,
					Commands: allCommands,
				})
			}
			return fmt.Errorf("Unknown command '%s'. Use 'review-run', 'validation run', 'register', 'key', or 'bot'.", args[0])
		},
	}

	// Each verb tree is built by a factory so the alias trees get their
	// own cobra instances.
	root.AddCommand(newReviewRunCmd(client, webBase, "review-run"))
	root.AddCommand(newRegisterCmd(client, "register"))
	root.AddCommand(newKeyCmd(client, "key"))

	validation := &cobra.Command{
		Use:           "validation",
		Short:         "Aliases for review-run commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          groupUsage("validation", []string{"validation run trigger", "validation run retrieve", "validation run render"}),
	}
	validation.AddCommand(newReviewRunCmd(client, webBase, "run"))
	root.AddCommand(validation)

	bot := &cobra.Command{
		Use:           "bot",
		Short:         "Aliases for bot registration and key commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          groupUsage("bot", []string{"bot register invite", "bot register partner", "bot key rotate", "bot key revoke"}),
	}
	bot.AddCommand(newRegisterCmd(client, "register"))
	bot.AddCommand(newKeyCmd(client, "key"))
	root.AddCommand(bot)

	return root
}

// groupUsage prints a usage envelope when a command group is invoked
// without a subcommand. A mistyped subcommand is a failure, not usage:
// scripts must never read an "ok" envelope off a typo.
func groupUsage(group string, commands []string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("Unknown %s subcommand '%s'. Use one of: %s.", group, args[0], strings.Join(commands, ", "))
		}
		return outputJSON(readinessEnvelope{
			Status:   "ok",
			Message:  fmt.Sprintf("'%s' requires a subcommand", group),
			Commands: commands,
		})
	}
}
