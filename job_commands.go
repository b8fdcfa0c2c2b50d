package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/clip-sentiment/analytics"
	"github.com/maastricht-university/clip-sentiment/clients"
	"github.com/maastricht-university/clip-sentiment/orchestrator"
	"github.com/maastricht-university/clip-sentiment/report"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show an analysis job's current status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.client().Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, st)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, orchestrator.StatusText(*st))
			if st.ResultPath != "" {
				fmt.Fprintf(out, "Result: %s\n", st.ResultPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the raw status as JSON")
	return cmd
}

func newResultsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "results <job-id>",
		Short: "Fetch and render a finished job's results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := ctx.client().Results(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderView(cmd, analytics.Derive(res), jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the derived report as JSON")
	return cmd
}

func newRenderCommand() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:         "render <results.json>",
		Short:       "Render a saved results payload without contacting the backend",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read results: %w", err)
			}
			var res clients.AnalysisResult
			if err := json.Unmarshal(data, &res); err != nil {
				return fmt.Errorf("decode results %s: %w", args[0], err)
			}
			return renderView(cmd, analytics.Derive(&res), jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the derived report as JSON")
	return cmd
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the analysis backend is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := ctx.client().Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", ctx.config.Backend.BaseURL, h.Status, h.Message)
			return nil
		},
	}
}

func renderView(cmd *cobra.Command, v analytics.View, jsonOut bool) error {
	out := cmd.OutOrStdout()
	if jsonOut {
		return report.RenderJSON(out, v)
	}
	return report.Render(out, v, report.Options{Colorize: report.ShouldColorize(out)})
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
