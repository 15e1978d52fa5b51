package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"syncorbit/internal/align"
	"syncorbit/internal/srt"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var (
		outputFlag string
		jsonFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <reference.srt> <target.srt>",
		Short: "Measure timing drift between a reference and a target subtitle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			refPath := strings.TrimSpace(args[0])
			targetPath := strings.TrimSpace(args[1])

			refCues, err := srt.ParseFile(refPath)
			if err != nil {
				return fmt.Errorf("parse reference: %w", err)
			}
			targetCues, err := srt.ParseFile(targetPath)
			if err != nil {
				return fmt.Errorf("parse target: %w", err)
			}

			analyzer := ctx.newAnalyzer(cfg, logger)
			analysis, err := analyzer.Analyze(cmd.Context(), refCues, targetCues)
			if err != nil {
				return err
			}
			analysis.RefPath = refPath
			analysis.TargetPath = targetPath

			outputPath := strings.TrimSpace(outputFlag)
			if outputPath == "" {
				outputPath = analysisPathFor(targetPath)
			}
			if err := align.SaveAnalysis(outputPath, analysis); err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(cmd, analysis)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Decision:      %s\n", analysis.Decision)
			fmt.Fprintf(out, "Anchors:       %d (%d raw)\n", analysis.AnchorCount, analysis.RawAnchorCount)
			fmt.Fprintf(out, "Median offset: %+.3fs\n", analysis.MedianOffsetSec)
			fmt.Fprintf(out, "Drift span:    %.3fs (robust %.3fs)\n", analysis.DriftSpanSec, analysis.RobustDriftSpanSec)
			if len(analysis.Segments) > 0 {
				fmt.Fprintf(out, "Segments:      %d\n", len(analysis.Segments))
			}
			fmt.Fprintf(out, "Analysis:      %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Analysis output path (default: alongside the target)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the full analysis document as JSON")

	return cmd
}

// analysisPathFor places the analysis document next to the subtitle it
// describes.
func analysisPathFor(targetPath string) string {
	return strings.TrimSuffix(targetPath, filepath.Ext(targetPath)) + ".syncinfo"
}
