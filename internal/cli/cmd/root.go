package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"vidsqueeze/internal/config"
)

const (
	ExitOK             = 0
	ExitCLIError       = 1
	ExitMissingDep     = 2
	ExitProbeError     = 3
	ExitPlanError      = 4
	ExitTranscodeError = 5
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vidsqueeze INPUT OUTPUT",
		Short: "Squeeze a video down to a target file size",
		Long: "Vidsqueeze re-encodes a video so the output lands near a requested file size: " +
			"it probes the source duration with ffprobe, derives the video bitrate that fits " +
			"the budget after reserving room for audio, and hands the result to ffmpeg. " +
			"With -a it skips the video entirely and rips the audio track as MP3.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(2),
		PreRunE:       runPreRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(cmd, args, runMode{})
		},
	}

	// Persistent flags available to all subcommands
	root.PersistentFlags().BoolP("verbose", "v", false, "Show full subprocess commands/output")
	root.PersistentFlags().String("ffmpeg", "", "Path to ffmpeg (default: PATH lookup)")
	root.PersistentFlags().String("ffprobe", "", "Path to ffprobe (default: PATH lookup)")
	root.PersistentFlags().Bool("no-ui", false, "Disable TUI; use plain textual output")

	// Also bind run flags on root so `vidsqueeze -s 25 in.mp4 out.mp4` works.
	bindRunFlags(root.Flags())

	// Subcommands
	root.AddCommand(newPlanCmd())
	root.AddCommand(newTuiCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func bindRunFlags(fs *pflag.FlagSet) {
	fs.Float64P("size", "s", 0, "Target output size in MB (compression mode)")
	fs.BoolP("audio-only", "a", false, "Extract the audio track as MP3 instead of re-encoding")
	fs.Int("audio-bitrate", 0, "Audio bitrate in kbps (default 128 when compressing, 192 when extracting)")
	fs.Bool("keep-output-on-error", false, "Keep the partial output file when ffmpeg fails")
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	_ = config.Init(root)
	return root.ExecuteContext(ctx)
}

// Helpers
func getPersistentString(cmd *cobra.Command, name, def string) string {
	v, err := cmd.InheritedFlags().GetString(name)
	if err != nil || v == "" {
		// Root's own persistent flags are not inherited; fall back to local lookup.
		if v2, err2 := cmd.Flags().GetString(name); err2 == nil && v2 != "" {
			return v2
		}
		return def
	}
	return v
}

func getPersistentBool(cmd *cobra.Command, name string, def bool) bool {
	if v, err := cmd.InheritedFlags().GetBool(name); err == nil {
		return v
	}
	if v, err := cmd.Flags().GetBool(name); err == nil {
		return v
	}
	return def
}
