package encoder

import (
	"fmt"

	"vidsqueeze/internal/model"
)

// BuildCompressArgs constructs ffmpeg arguments for a size-targeted re-encode.
// The bitrates must already be resolved by the planner.
func BuildCompressArgs(in model.SourceInfo, enc model.EncodeOptions, outputPath string, includeProgress bool) []string {
	args := []string{
		"-y",
		"-i", in.Path,
		"-c:v", valueOr(enc.VideoCodec, "libx264"),
		"-b:v", fmt.Sprintf("%dk", enc.VideoBitrateKbps),
		"-c:a", valueOr(enc.AudioCodec, "aac"),
		"-b:a", fmt.Sprintf("%dk", enc.AudioBitrateKbps),
		"-movflags", "+faststart",
	}

	if includeProgress {
		args = append(args, "-progress", "pipe:1", "-nostats")
	}

	args = append(args, outputPath)
	return args
}

// BuildExtractAudioArgs constructs ffmpeg arguments for an audio-only
// extraction that drops the video stream.
func BuildExtractAudioArgs(inputPath string, enc model.EncodeOptions, outputPath string, includeProgress bool) []string {
	args := []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-c:a", valueOr(enc.AudioCodec, "libmp3lame"),
		"-b:a", fmt.Sprintf("%dk", enc.AudioBitrateKbps),
	}

	if includeProgress {
		args = append(args, "-progress", "pipe:1", "-nostats")
	}

	args = append(args, outputPath)
	return args
}

func valueOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
