package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"syncorbit/internal/align"
	"syncorbit/internal/config"
	"syncorbit/internal/correct"
	"syncorbit/internal/srt"
)

func newCorrectCommand(ctx *commandContext) *cobra.Command {
	var (
		analysisFlag  string
		referenceFlag string
		outputFlag    string
		verifyFlag    bool
	)

	cmd := &cobra.Command{
		Use:   "correct <target.srt>",
		Short: "Apply a timing correction from a saved drift analysis",
		Long: `Correct rewrites the target subtitle using the correction plan derived
from a saved analysis document. The outcome is always printed as a single
JSON record; failures are reported inside the record so callers can
script over it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			targetPath := strings.TrimSpace(args[0])
			analysisPath := strings.TrimSpace(analysisFlag)
			if analysisPath == "" {
				analysisPath = analysisPathFor(targetPath)
			}
			outputPath := strings.TrimSpace(outputFlag)
			if outputPath == "" {
				outputPath = strings.TrimSuffix(targetPath, filepath.Ext(targetPath)) + ".corrected.srt"
			}

			result := runCorrection(cmd, ctx, cfg, logger, correctionInputs{
				targetPath:   targetPath,
				analysisPath: analysisPath,
				refPath:      strings.TrimSpace(referenceFlag),
				outputPath:   outputPath,
				verify:       verifyFlag,
			})
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&analysisFlag, "analysis", "", "Analysis document path (default: alongside the target)")
	cmd.Flags().StringVar(&referenceFlag, "reference", "", "Reference subtitle for --verify (default: path recorded in the analysis)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Corrected subtitle path (default: <target>.corrected.srt)")
	cmd.Flags().BoolVar(&verifyFlag, "verify", false, "Re-analyze the corrected file against the reference and attach a verdict")

	return cmd
}

type correctionInputs struct {
	targetPath   string
	analysisPath string
	refPath      string
	outputPath   string
	verify       bool
}

func runCorrection(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, logger *slog.Logger, in correctionInputs) correct.Result {
	before, err := align.LoadAnalysis(in.analysisPath)
	if err != nil {
		return correct.ErrorResult(correct.CodeBadAnalysis, err.Error())
	}

	cues, err := srt.ParseFile(in.targetPath)
	if err != nil {
		return correct.ErrorResult(correct.CodeBadSubtitle, err.Error())
	}
	if len(cues) == 0 {
		return correct.ErrorResult(correct.CodeEmptySubtitles, "target has no cues")
	}

	opts := correctOptions(cfg)
	plan := correct.ChoosePlan(before, opts)
	if plan.Method == correct.MethodWhisperRequired {
		return correct.WhisperResult()
	}

	corrected, meta, err := correct.Apply(plan, cues)
	if err != nil {
		if errors.Is(err, correct.ErrCorrection) {
			logger.Warn("correction not applicable, deferring to transcription", "error", err)
			return correct.WhisperResult()
		}
		return correct.ErrorResult(correct.CodeCorrectionFailed, err.Error())
	}

	if err := srt.WriteFile(in.outputPath, corrected); err != nil {
		return correct.ErrorResult(correct.CodeWriteFailed, err.Error())
	}

	result := correct.Result{
		Status:     correct.StatusOK,
		Method:     plan.Method,
		OutputFile: in.outputPath,
		Meta:       &meta,
	}

	if in.verify {
		refPath := in.refPath
		if refPath == "" {
			refPath = before.RefPath
		}
		if refPath == "" {
			return correct.ErrorResult(correct.CodeBadAnalysis, "verification requires a reference subtitle; pass --reference")
		}
		refCues, err := srt.ParseFile(refPath)
		if err != nil {
			return correct.ErrorResult(correct.CodeBadSubtitle, err.Error())
		}
		analyzer := ctx.newAnalyzer(cfg, logger)
		verdict, _, err := correct.Evaluate(cmd.Context(), analyzer, refCues, corrected, before, meta, opts)
		if err != nil {
			if errors.Is(err, align.ErrProvider) {
				return correct.ErrorResult(correct.CodeProviderFailed, err.Error())
			}
			return correct.ErrorResult(correct.CodeCorrectionFailed, err.Error())
		}
		result.Verdict = &verdict
	}

	logger.Info("correction written",
		"method", string(plan.Method),
		"output", in.outputPath,
		"max_shift_sec", fmt.Sprintf("%.3f", meta.MaxShiftSec),
	)
	return result
}
