package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/clip-sentiment/analytics"
	"github.com/maastricht-university/clip-sentiment/intake"
	"github.com/maastricht-university/clip-sentiment/logging"
	"github.com/maastricht-university/clip-sentiment/metrics"
	"github.com/maastricht-university/clip-sentiment/orchestrator"
	"github.com/maastricht-university/clip-sentiment/poller"
	"github.com/maastricht-university/clip-sentiment/report"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var noExport bool

	cmd := &cobra.Command{
		Use:   "analyze <file|->",
		Short: "Upload a video and wait for its sentiment analysis",
		Long:  "Upload a video (or read one from stdin with \"-\"), follow the analysis job until it finishes and print the report.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cand, err := readCandidate(cmd, args[0])
			if err != nil {
				return err
			}

			cfg := ctx.config
			m := metrics.New()
			defer ctx.flushMetrics(m)

			ctrl := orchestrator.New(ctx.client(), orchestrator.Options{
				Policy: intake.NewPolicy(cfg.Intake.AcceptedTypes...),
				Poll: poller.Options{
					Interval:    cfg.Poll.Interval,
					MaxDuration: cfg.Poll.MaxDuration,
				},
				Logger:  ctx.logger,
				Metrics: m,
			})

			events, err := ctrl.Submit(cmd.Context(), cand)
			if err != nil {
				var verr *intake.ValidationError
				if errors.As(err, &verr) {
					return fmt.Errorf("%s: %s", cand.Name, verr.Reason)
				}
				return err
			}

			final, ok := follow(ctx.stderr, report.ShouldColorize(cmd.ErrOrStderr()), cand, events)
			if !ok {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				return errors.New("analysis ended without a result")
			}
			if final.Phase == orchestrator.PhaseFailed {
				return fmt.Errorf("%s: %v", final.StatusText, final.Err)
			}

			if !noExport && cfg.Output.Dir != "" {
				path, err := orchestrator.Export(cfg.Output.Dir, final)
				if err != nil {
					return err
				}
				logging.Component(ctx.logger, "cli").WithField("path", path).Info("report exported")
			}

			return renderView(cmd, analytics.Derive(final.Result), jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the derived report as JSON")
	cmd.Flags().BoolVar(&noExport, "no-export", false, "Do not write the report under output.dir")
	return cmd
}

func readCandidate(cmd *cobra.Command, arg string) (intake.Candidate, error) {
	if arg == "-" {
		return intake.FromReader("stdin", cmd.InOrStdin())
	}
	return intake.FromFile(arg)
}

// follow prints status lines for a session until its stream closes. It
// returns the terminal view and whether one arrived. w must be safe to share
// with the session's logger; tty enables the upload progress bar.
func follow(w io.Writer, tty bool, cand intake.Candidate, events <-chan orchestrator.Event) (orchestrator.View, bool) {
	fmt.Fprintf(w, "%s (%s, %s)\n", orchestrator.MsgUploading, cand.Name, cand.DisplaySize())

	var bar *progressbar.ProgressBar
	if tty && cand.Size > 0 {
		bar = progressbar.NewOptions64(cand.Size,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("upload"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
	}
	closeBar := func() {
		if bar != nil {
			_ = bar.Finish()
			bar = nil
		}
	}
	defer closeBar()

	last := orchestrator.MsgUploading
	var final orchestrator.View
	var done bool
	for ev := range events {
		if ev.Kind == orchestrator.EventUploadProgress {
			if bar != nil {
				_ = bar.Set64(ev.Progress.BytesSent)
			}
			continue
		}
		closeBar()
		if ev.View.StatusText != last {
			last = ev.View.StatusText
			fmt.Fprintln(w, last)
		}
		if ev.Kind.Terminal() {
			final, done = ev.View, true
		}
	}
	return final, done
}
