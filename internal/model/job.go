package model

// Mode selects what the tool produces.
type Mode string

const (
	ModeCompress     Mode = "compress"
	ModeExtractAudio Mode = "extract-audio"
)

// Options holds user-configurable runtime options as parsed from flags.
type Options struct {
	Mode       Mode
	InputPath  string
	OutputPath string

	TargetSizeMB     float64 // Target output size in MB; > 0 in compress mode.
	AudioBitrateKbps int     // 0 = mode default (128 compress, 192 extract).

	FFmpegPath  string // Optional explicit path to ffmpeg.
	FFprobePath string // Optional explicit path to ffprobe.

	DryRun  bool
	Verbose bool

	NoUI              bool // Disable TUI when true
	KeepOutputOnError bool // Leave a partial output file behind on encode failure
}

// SourceInfo describes the probed input media.
type SourceInfo struct {
	Path        string
	DurationSec float64 // Seconds; must be > 0 to plan a bitrate.
	SizeBytes   int64
	Width       int // 0 if unknown
	Height      int // 0 if unknown
	HasVideo    bool
	HasAudio    bool
}

// EncodeOptions controls the ffmpeg invocation.
type EncodeOptions struct {
	AudioOnly        bool
	VideoBitrateKbps int    // Computed by the planner; unused when AudioOnly.
	AudioBitrateKbps int    // Audio bitrate in kbps.
	VideoCodec       string // e.g., "libx264".
	AudioCodec       string // "aac" for compression, "libmp3lame" for extraction.
}

// Output captures encoding results.
type Output struct {
	OutputPath       string
	Bytes            int64
	VideoBitrateKbps int // 0 in audio-only mode
	AudioBitrateKbps int
	AudioOnly        bool
}
