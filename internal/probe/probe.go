// Package probe inspects media files with ffprobe without decoding them.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"vidsqueeze/internal/model"
	"vidsqueeze/internal/util"
)

// Error reports an ffprobe failure, carrying the tool's diagnostic output.
type Error struct {
	Path   string
	Output string // trailing stderr (or parse detail) from ffprobe
	Err    error
}

func (e *Error) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("probe %s: %v: %s", e.Path, e.Err, e.Output)
	}
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Options controls prober behavior.
type Options struct {
	FFprobePath string
	Verbose     bool
	Runner      util.CmdRunner
}

// Probe runs ffprobe against path and returns the parsed source info.
// It fails with *Error when the file is unreadable, the output is not
// valid JSON, or no positive duration can be determined.
func Probe(ctx context.Context, path string, opts Options) (model.SourceInfo, error) {
	if opts.FFprobePath == "" {
		return model.SourceInfo{}, fmt.Errorf("ffprobe path is required")
	}
	runner := opts.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}

	args := []string{
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		path,
	}
	res, runErr := runner.Run(ctx, util.CmdSpec{
		Path:          opts.FFprobePath,
		Args:          args,
		Verbose:       opts.Verbose,
		CaptureStdout: true,
	})
	if runErr != nil {
		return model.SourceInfo{}, &Error{
			Path:   path,
			Output: strings.TrimSpace(string(res.Stderr)),
			Err:    runErr,
		}
	}

	info, err := ParseJSON(res.Stdout, path)
	if err != nil {
		return model.SourceInfo{}, err
	}
	return info, nil
}

// ParseJSON converts raw ffprobe JSON output into SourceInfo.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte, path string) (model.SourceInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.SourceInfo{}, &Error{Path: path, Output: "unparseable ffprobe output", Err: err}
	}

	info := model.SourceInfo{
		Path:        path,
		DurationSec: parseFloat(raw.Format.Duration),
		SizeBytes:   parseInt64(raw.Format.Size),
	}
	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			info.HasVideo = true
			if info.Width == 0 && info.Height == 0 {
				info.Width, info.Height = s.Width, s.Height
			}
			// Some containers report duration only on the stream.
			if info.DurationSec <= 0 {
				info.DurationSec = parseFloat(s.Duration)
			}
		case "audio":
			info.HasAudio = true
		}
	}

	if info.DurationSec <= 0 {
		return model.SourceInfo{}, &Error{
			Path:   path,
			Output: "no duration metadata in container or video stream",
			Err:    fmt.Errorf("missing duration"),
		}
	}
	return info, nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

type ffprobeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Channels  int    `json:"channels"`
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
