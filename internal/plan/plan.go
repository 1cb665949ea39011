// Package plan converts a media duration and a target size into a
// bitrate budget for the encoder.
package plan

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultCompressAudioKbps is the audio allocation reserved in
	// compression mode when the caller does not supply one.
	DefaultCompressAudioKbps = 128
	// DefaultExtractAudioKbps is the MP3 bitrate used in audio
	// extraction mode when the caller does not supply one.
	DefaultExtractAudioKbps = 192
)

var (
	ErrInvalidDuration     = errors.New("invalid duration")
	ErrInvalidTargetSize   = errors.New("invalid target size")
	ErrInvalidAudioBitrate = errors.New("invalid audio bitrate")
	ErrTargetSizeTooSmall  = errors.New("target size too small")
)

// VideoBitrateKbps computes the video bitrate (kbps) so that audio and video
// together land near targetSizeMB for the given duration.
//
// The target size is converted using mebibyte-based bits
// (MB * 8 * 1024 * 1024), matching how most chat and upload limits are
// enforced; a decimal-megabyte conversion would undershoot by ~4.8%.
// The result is rounded down so the output stays under the target rather
// than over it.
func VideoBitrateKbps(durationSec, targetSizeMB float64, audioKbps int) (int, error) {
	if durationSec <= 0 {
		return 0, fmt.Errorf("%w: duration must be positive, got %g s", ErrInvalidDuration, durationSec)
	}
	if targetSizeMB <= 0 {
		return 0, fmt.Errorf("%w: target size must be positive, got %g MB", ErrInvalidTargetSize, targetSizeMB)
	}
	if audioKbps < 0 {
		return 0, fmt.Errorf("%w: audio bitrate must not be negative, got %d kbps", ErrInvalidAudioBitrate, audioKbps)
	}

	targetBits := targetSizeMB * 8 * 1024 * 1024
	totalKbps := targetBits / durationSec / 1000
	videoKbps := int(math.Floor(totalKbps - float64(audioKbps)))
	if videoKbps <= 0 {
		return 0, fmt.Errorf("%w: %g MB over %g s leaves no room for video after a %d kbps audio track",
			ErrTargetSizeTooSmall, targetSizeMB, durationSec, audioKbps)
	}
	return videoKbps, nil
}

// AudioParams is the parameter set for an audio-only extraction.
type AudioParams struct {
	Codec       string
	BitrateKbps int
}

// AudioExtractParams builds the fixed parameter set for audio extraction.
// A kbps of 0 means "unset" and selects the default; anything else must be
// a positive bitrate.
func AudioExtractParams(kbps int) (AudioParams, error) {
	if kbps == 0 {
		kbps = DefaultExtractAudioKbps
	}
	if kbps < 0 {
		return AudioParams{}, fmt.Errorf("%w: audio bitrate must be positive, got %d kbps", ErrInvalidAudioBitrate, kbps)
	}
	return AudioParams{Codec: "libmp3lame", BitrateKbps: kbps}, nil
}

// CompressAudioKbps resolves the audio allocation for compression mode,
// applying the default when unset.
func CompressAudioKbps(kbps int) int {
	if kbps == 0 {
		return DefaultCompressAudioKbps
	}
	return kbps
}
