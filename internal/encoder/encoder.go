// Package encoder invokes ffmpeg to re-encode video or extract audio.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vidsqueeze/internal/model"
	"vidsqueeze/internal/progress"
	"vidsqueeze/internal/util"
)

// Error reports an ffmpeg failure, carrying the tool's stderr diagnostic.
type Error struct {
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("ffmpeg failed: %v\n%s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("ffmpeg failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Options control ffmpeg execution.
type Options struct {
	FFmpegPath string
	Verbose    bool
	OutputPath string // Full path of desired output file (including extension)

	Reporter progress.Reporter // Optional progress sink
	JobID    string

	Runner util.CmdRunner // nil = os/exec

	KeepOutputOnError bool // Leave a partial output file behind on failure
}

// Compress re-encodes the source at the planned bitrates.
// It returns metadata about the resulting file on success.
func Compress(ctx context.Context, in model.SourceInfo, enc model.EncodeOptions, opts Options) (model.Output, error) {
	if in.Path == "" {
		return model.Output{}, errors.New("input path is required")
	}
	args := BuildCompressArgs(in, enc, opts.OutputPath, opts.Reporter != nil)
	if err := run(ctx, args, in.DurationSec, false, opts); err != nil {
		return model.Output{}, err
	}
	fi, err := os.Stat(opts.OutputPath)
	if err != nil {
		return model.Output{}, fmt.Errorf("stat output: %w", err)
	}
	return model.Output{
		OutputPath:       opts.OutputPath,
		Bytes:            fi.Size(),
		VideoBitrateKbps: enc.VideoBitrateKbps,
		AudioBitrateKbps: enc.AudioBitrateKbps,
		AudioOnly:        false,
	}, nil
}

// ExtractAudio drops the video stream and writes an MP3 at the given bitrate.
func ExtractAudio(ctx context.Context, in model.SourceInfo, enc model.EncodeOptions, opts Options) (model.Output, error) {
	if in.Path == "" {
		return model.Output{}, errors.New("input path is required")
	}
	args := BuildExtractAudioArgs(in.Path, enc, opts.OutputPath, opts.Reporter != nil)
	if err := run(ctx, args, in.DurationSec, true, opts); err != nil {
		return model.Output{}, err
	}
	fi, err := os.Stat(opts.OutputPath)
	if err != nil {
		return model.Output{}, fmt.Errorf("stat output: %w", err)
	}
	return model.Output{
		OutputPath:       opts.OutputPath,
		Bytes:            fi.Size(),
		AudioBitrateKbps: enc.AudioBitrateKbps,
		AudioOnly:        true,
	}, nil
}

// run executes ffmpeg, streaming -progress lines to the reporter when one
// is attached. On failure the incomplete output file is removed unless
// KeepOutputOnError is set.
func run(ctx context.Context, args []string, durationSec float64, audioOnly bool, opts Options) error {
	if opts.FFmpegPath == "" {
		return errors.New("ffmpeg path is required")
	}
	if opts.OutputPath == "" {
		return errors.New("output path is required")
	}
	if dir := filepath.Dir(opts.OutputPath); dir != "." {
		if err := util.EnsureDir(dir); err != nil {
			return fmt.Errorf("ensure output dir: %w", err)
		}
	}

	runner := opts.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}

	spec := util.CmdSpec{
		Path:    opts.FFmpegPath,
		Args:    args,
		Verbose: opts.Verbose,
	}
	if opts.Reporter != nil {
		ps := &ProgressState{}
		spec.StdoutLine = func(line string) {
			if u, ok := ps.UpdateFromLine(line, opts.JobID, durationSec, audioOnly); ok {
				opts.Reporter.Update(u)
			}
		}
		spec.StderrLine = func(line string) {
			opts.Reporter.Log(progress.Log{JobID: opts.JobID, Line: line})
		}
	}

	res, runErr := runner.Run(ctx, spec)
	if runErr != nil {
		if !opts.KeepOutputOnError {
			_ = util.RemoveIfExists(opts.OutputPath)
		}
		return &Error{
			Stderr: tailLines(string(res.Stderr), 12),
			Err:    runErr,
		}
	}
	return nil
}

// tailLines returns the last n non-empty lines of s. ffmpeg prints its
// actual error at the very end after pages of configuration banner.
func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	kept := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		kept = append(kept, lines[i])
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, "\n")
}
