package main

import (
	"github.com/spf13/cobra"

	"github.com/lona-agency/trading-cli/internal/payload"
	"github.com/lona-agency/trading-cli/internal/platform"
	"github.com/lona-agency/trading-cli/internal/review"
)

// newReviewRunCmd builds the review-run verb tree. use is "review-run"
// at the top level and "run" under the validation alias.
func newReviewRunCmd(client *platform.Client, webBase, use string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         "Trigger, retrieve, and render validation review runs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          groupUsage(use, []string{use + " trigger", use + " retrieve", use + " render"}),
	}
	cmd.AddCommand(newTriggerCmd(client, webBase))
	cmd.AddCommand(newRetrieveCmd(client, webBase))
	cmd.AddCommand(newRenderCmd(client, webBase))
	return cmd
}

func newTriggerCmd(client *platform.Client, webBase string) *cobra.Command {
	var in review.TriggerInput
	cmd := &cobra.Command{
		Use:           "trigger",
		Short:         "Create a validation run and optionally request renders",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := review.NewOrchestrator(client, webBase)
			result, err := o.Trigger(cmd.Context(), in)
			if err != nil {
				return err
			}
			return outputJSON(result)
		},
	}
	cmd.Flags().StringVar(&in.InputPath, "input", "", "path to a JSON payload file (bypasses discrete flags)")
	cmd.Flags().StringVar(&in.StrategyID, "strategy-id", "", "strategy to validate")
	cmd.Flags().StringVar(&in.ProviderRefID, "provider-ref-id", "", "optional provider reference id")
	cmd.Flags().StringVar(&in.Prompt, "prompt", "", "optional analyst prompt")
	cmd.Flags().StringVar(&in.RequestedIndicators, "requested-indicators", "", "comma-separated indicator list")
	cmd.Flags().StringVar(&in.DatasetIDs, "dataset-ids", "", "comma-separated dataset ids")
	cmd.Flags().StringVar(&in.BacktestReportRef, "backtest-report-ref", "", "backtest report reference")
	cmd.Flags().StringVar(&in.Profile, "profile", "", "policy profile: standard, strict, or audit")
	cmd.Flags().StringVar(&in.RenderFormats, "render", "", "comma-separated render formats (html, pdf)")
	cmd.Flags().StringVar(&in.RequestIDSeed, "request-id", "", "request id seed (generated when omitted)")
	cmd.Flags().StringVar(&in.IdempotencyKeySeed, "idempotency-key", "", "idempotency key seed (generated when omitted)")
	return cmd
}

func newRetrieveCmd(client *platform.Client, webBase string) *cobra.Command {
	var in review.RetrieveInput
	cmd := &cobra.Command{
		Use:           "retrieve",
		Aliases:       []string{"get"},
		Short:         "Fetch one run's artifact, or list runs with filters",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := review.NewOrchestrator(client, webBase)
			if payload.NonEmpty(in.RunID) != "" {
				result, err := o.RetrieveRun(cmd.Context(), in)
				if err != nil {
					return err
				}
				return outputJSON(result)
			}
			result, err := o.ListRuns(cmd.Context(), in)
			if err != nil {
				return err
			}
			return outputJSON(result)
		},
	}
	cmd.Flags().StringVar(&in.RunID, "run-id", "", "run to fetch; omit to list runs")
	cmd.Flags().StringVar(&in.RenderFormat, "render-format", "", "also fetch this render's status (html or pdf)")
	cmd.Flags().BoolVar(&in.Raw, "raw", false, "include the raw artifact in the envelope")
	cmd.Flags().StringVar(&in.Status, "status", "", "list filter: queued, running, completed, failed")
	cmd.Flags().StringVar(&in.FinalDecision, "final-decision", "", "list filter: pending, pass, conditional_pass, fail")
	cmd.Flags().StringVar(&in.Cursor, "cursor", "", "opaque pagination cursor")
	cmd.Flags().StringVar(&in.Limit, "limit", "", "page size, 1-100")
	cmd.Flags().StringVar(&in.RequestIDSeed, "request-id", "", "request id seed (generated when omitted)")
	return cmd
}

func newRenderCmd(client *platform.Client, webBase string) *cobra.Command {
	var in review.RenderInput
	cmd := &cobra.Command{
		Use:           "render",
		Short:         "Request an ad-hoc render for an existing run",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := review.NewOrchestrator(client, webBase)
			result, err := o.RequestRender(cmd.Context(), in)
			if err != nil {
				return err
			}
			return outputJSON(result)
		},
	}
	cmd.Flags().StringVar(&in.RunID, "run-id", "", "run to render")
	cmd.Flags().StringVar(&in.Format, "format", "", "render format: html or pdf")
	cmd.Flags().StringVar(&in.RequestIDSeed, "request-id", "", "request id seed (generated when omitted)")
	cmd.Flags().StringVar(&in.IdempotencyKeySeed, "idempotency-key", "", "idempotency key seed (generated when omitted)")
	return cmd
}
