package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidsqueeze/internal/util/deps"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (ffmpeg, ffprobe)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ff, ferr := deps.FindFFmpeg(getPersistentString(cmd, "ffmpeg", ""))
			if ferr != nil {
				return wrapExit(ferr)
			}
			fp, perr := deps.FindFFprobe(getPersistentString(cmd, "ffprobe", ""))
			if perr != nil {
				return wrapExit(perr)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "FFmpeg:  %s\n", ff)
			fmt.Fprintf(cmd.OutOrStdout(), "FFprobe: %s\n", fp)
			return nil
		},
	}
}
