package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vidsqueeze/internal/config"
	"vidsqueeze/internal/encoder"
	"vidsqueeze/internal/logging"
	"vidsqueeze/internal/model"
	"vidsqueeze/internal/pipeline"
	"vidsqueeze/internal/plan"
	"vidsqueeze/internal/probe"
	"vidsqueeze/internal/ui"
	"vidsqueeze/internal/util/deps"
	"vidsqueeze/internal/util/format"
)

type ctxKey string

const optionsKey ctxKey = "options"

// runMode tweaks how a command drives the pipeline.
type runMode struct {
	ForceTUI   bool
	DryRunOnly bool
}

func runPreRun(cmd *cobra.Command, args []string) error {
	opts, err := assembleOptions(cmd, args)
	if err != nil {
		return err
	}
	cmd.SetContext(context.WithValue(cmd.Context(), optionsKey, opts))
	return nil
}

func optionsFromContext(cmd *cobra.Command) (model.Options, bool) {
	opts, ok := cmd.Context().Value(optionsKey).(model.Options)
	return opts, ok
}

func assembleOptions(cmd *cobra.Command, args []string) (model.Options, error) {
	var opts model.Options

	opts.InputPath = args[0]
	opts.OutputPath = args[1]

	audioOnly, _ := cmd.Flags().GetBool("audio-only")
	sizeSet := cmd.Flags().Changed("size")
	size, _ := cmd.Flags().GetFloat64("size")

	switch {
	case audioOnly && sizeSet:
		return opts, errors.New("-s and -a are mutually exclusive: pick a target size or audio extraction")
	case audioOnly:
		opts.Mode = model.ModeExtractAudio
	case !sizeSet:
		return opts, errors.New("a mode is required: pass -s SIZE_MB to compress or -a to extract audio")
	case size <= 0:
		return opts, fmt.Errorf("target size must be positive, got %v", size)
	default:
		opts.Mode = model.ModeCompress
		opts.TargetSizeMB = size
	}

	opts.AudioBitrateKbps, _ = cmd.Flags().GetInt("audio-bitrate")
	opts.KeepOutputOnError, _ = cmd.Flags().GetBool("keep-output-on-error")

	// Flags win when set; env/config file fill in via viper otherwise.
	opts.Verbose = getPersistentBool(cmd, "verbose", false) || config.Verbose()
	opts.NoUI = getPersistentBool(cmd, "no-ui", false) || config.NoUI()

	opts.FFmpegPath = getPersistentString(cmd, "ffmpeg", "")
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = config.FFmpegPath()
	}
	opts.FFprobePath = getPersistentString(cmd, "ffprobe", "")
	if opts.FFprobePath == "" {
		opts.FFprobePath = config.FFprobePath()
	}

	if _, err := os.Stat(opts.InputPath); err != nil {
		return opts, fmt.Errorf("input file %q does not exist", opts.InputPath)
	}

	return opts, nil
}

func runExecute(cmd *cobra.Command, args []string, mode runMode) error {
	opts, ok := optionsFromContext(cmd)
	if !ok {
		var err error
		opts, err = assembleOptions(cmd, args)
		if err != nil {
			return err
		}
	}

	if mode.DryRunOnly {
		opts.DryRun = true
		opts.NoUI = true
	}

	useTUI := mode.ForceTUI || (!opts.NoUI && !opts.DryRun && isTerminal())
	if useTUI {
		if err := ui.Run(cmd.Context(), opts); err != nil {
			return wrapExit(err)
		}
		return nil
	}

	return runPlain(cmd.Context(), opts)
}

func runPlain(ctx context.Context, opts model.Options) error {
	ffprobePath, err := deps.FindFFprobe(opts.FFprobePath)
	if err != nil {
		return wrapExit(err)
	}
	ffmpegPath := ""
	if !opts.DryRun {
		ffmpegPath, err = deps.FindFFmpeg(opts.FFmpegPath)
		if err != nil {
			return wrapExit(err)
		}
	}

	log := logging.New(os.Stderr, opts.Verbose)

	svc := pipeline.NewService(
		pipeline.WithFFmpegPath(ffmpegPath),
		pipeline.WithFFprobePath(ffprobePath),
		pipeline.WithOptions(opts),
		pipeline.WithLogger(log),
	)

	res, err := svc.RunJob(ctx)
	if err != nil {
		return wrapExit(err)
	}

	if res.Planned {
		printPlan(res)
		return nil
	}

	fmt.Printf("Saved %s (%s)\n", res.Output.OutputPath, format.HumanizeBytes(res.Output.Bytes))
	if res.Overshot {
		fmt.Fprintf(os.Stderr, "warning: output is %.0f%% of the target size\n", res.OvershootRatio*100)
	}
	return nil
}

func printPlan(res pipeline.Result) {
	fmt.Printf("Input:    %s (%s, %.1fs)\n",
		res.Source.Path, format.HumanizeBytes(res.Source.SizeBytes), res.Source.DurationSec)
	fmt.Printf("Output:   %s\n", res.Plan.OutputPath)
	if res.Plan.Enc.AudioOnly {
		fmt.Printf("Audio:    %s @ %dk\n", res.Plan.Enc.AudioCodec, res.Plan.AudioBitrateKbps)
		return
	}
	fmt.Printf("Video:    %s @ %dk\n", res.Plan.Enc.VideoCodec, res.Plan.VideoBitrateKbps)
	fmt.Printf("Audio:    %s @ %dk\n", res.Plan.Enc.AudioCodec, res.Plan.AudioBitrateKbps)
}

// wrapExit maps pipeline errors onto process exit codes.
func wrapExit(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return err
	}
	if errors.Is(err, deps.ErrNotFound) {
		return &ExitError{Code: ExitMissingDep, Err: err}
	}
	switch {
	case errors.Is(err, plan.ErrInvalidDuration),
		errors.Is(err, plan.ErrInvalidTargetSize),
		errors.Is(err, plan.ErrInvalidAudioBitrate),
		errors.Is(err, plan.ErrTargetSizeTooSmall):
		return &ExitError{Code: ExitPlanError, Err: err}
	}
	var pe *probe.Error
	if errors.As(err, &pe) {
		return &ExitError{Code: ExitProbeError, Err: err}
	}
	var ence *encoder.Error
	if errors.As(err, &ence) {
		return &ExitError{Code: ExitTranscodeError, Err: err}
	}
	return &ExitError{Code: ExitCLIError, Err: err}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
