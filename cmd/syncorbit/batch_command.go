package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"syncorbit/internal/batch"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Library-wide drift analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newBatchRunCommand(ctx))
	cmd.AddCommand(newBatchListCommand(ctx))
	cmd.AddCommand(newBatchStatusCommand(ctx))

	return cmd
}

func newBatchRunCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan the media library and analyze every subtitle pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Paths.MediaDir == "" {
				return fmt.Errorf("batch run requires paths.media_dir to be configured")
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			store, err := batch.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runner := batch.NewRunner(cfg, ctx.newAnalyzer(cfg, logger), store, logger)
			summary, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s finished\n", summary.RunID)
			fmt.Fprintf(out, "  pairs:    %d\n", summary.Total)
			fmt.Fprintf(out, "  analyzed: %d\n", summary.Analyzed)
			fmt.Fprintf(out, "  reused:   %d\n", summary.Reused)
			fmt.Fprintf(out, "  failed:   %d\n", summary.Failed)
			fmt.Fprintf(out, "  ignored:  %d\n", summary.Ignored)
			fmt.Fprintf(out, "  missing:  %d\n", summary.Missing)
			fmt.Fprintf(out, "  pruned:   %d\n", summary.Pruned)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the run summary as JSON")

	return cmd
}

func newBatchListCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the analysis ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := batch.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(cmd, records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Ledger is empty; run `syncorbit batch run` first.")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.Title,
					rec.State,
					rec.Decision,
					strconv.Itoa(rec.AnchorCount),
					fmt.Sprintf("%+.2f", rec.AvgOffset),
					fmt.Sprintf("%.2f", rec.DriftSpan),
					rec.BestReference,
					formatUnixTime(rec.LastAnalyzed),
				})
			}
			headers := []string{"Title", "State", "Decision", "Anchors", "Offset", "Span", "Ref", "Analyzed"}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print ledger records as JSON")

	return cmd
}

func newBatchStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the progress of the most recent batch run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			progress, err := batch.ReadProgress(cfg)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					fmt.Fprintln(cmd.OutOrStdout(), "No batch run recorded.")
					return nil
				}
				return err
			}

			if jsonFlag {
				return printJSON(cmd, progress)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:     %s\n", progress.RunID)
			fmt.Fprintf(out, "Current: %s\n", progress.CurrentTitle)
			fmt.Fprintf(out, "Done:    %d/%d\n", progress.Index, progress.Total)
			fmt.Fprintf(out, "Updated: %s\n", progress.UpdatedAt)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print progress as JSON")

	return cmd
}

func formatUnixTime(unix int64) string {
	if unix <= 0 {
		return "-"
	}
	return time.Unix(unix, 0).Local().Format("2006-01-02 15:04")
}
