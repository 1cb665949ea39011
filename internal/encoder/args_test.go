package encoder

import (
	"strings"
	"testing"

	"vidsqueeze/internal/model"
)

func TestBuildCompressArgs(t *testing.T) {
	tests := []struct {
		name            string
		in              model.SourceInfo
		enc             model.EncodeOptions
		outputPath      string
		includeProgress bool
		wantContains    []string
		wantNotContains []string
	}{
		{
			name: "planned bitrates",
			in:   model.SourceInfo{Path: "/tmp/input.mp4", DurationSec: 100},
			enc: model.EncodeOptions{
				VideoBitrateKbps: 8260,
				AudioBitrateKbps: 128,
			},
			outputPath: "/tmp/output.mp4",
			wantContains: []string{
				"-c:v", "libx264",
				"-b:v", "8260k",
				"-c:a", "aac",
				"-b:a", "128k",
				"-movflags", "+faststart",
			},
			wantNotContains: []string{"-vn", "-progress"},
		},
		{
			name: "with progress pipe",
			in:   model.SourceInfo{Path: "/tmp/input.mkv", DurationSec: 60},
			enc: model.EncodeOptions{
				VideoBitrateKbps: 2000,
				AudioBitrateKbps: 96,
			},
			outputPath:      "/tmp/out.mp4",
			includeProgress: true,
			wantContains:    []string{"-progress", "pipe:1", "-nostats"},
		},
		{
			name: "custom codecs",
			in:   model.SourceInfo{Path: "/tmp/in.mp4", DurationSec: 60},
			enc: model.EncodeOptions{
				VideoBitrateKbps: 1500,
				AudioBitrateKbps: 128,
				VideoCodec:       "libx265",
				AudioCodec:       "libopus",
			},
			outputPath:      "/tmp/out.mp4",
			wantContains:    []string{"-c:v", "libx265", "-c:a", "libopus"},
			wantNotContains: []string{"libx264", "aac"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := BuildCompressArgs(tt.in, tt.enc, tt.outputPath, tt.includeProgress)

			argsStr := strings.Join(args, " ")
			for _, want := range tt.wantContains {
				if !strings.Contains(argsStr, want) {
					t.Errorf("BuildCompressArgs() args missing %q, got: %v", want, args)
				}
			}
			for _, notWant := range tt.wantNotContains {
				if strings.Contains(argsStr, notWant) {
					t.Errorf("BuildCompressArgs() args should not contain %q, got: %v", notWant, args)
				}
			}

			if args[0] != "-y" {
				t.Errorf("BuildCompressArgs() first arg = %v, want -y", args[0])
			}
			if args[len(args)-1] != tt.outputPath {
				t.Errorf("BuildCompressArgs() last arg = %v, want %v", args[len(args)-1], tt.outputPath)
			}
		})
	}
}

func TestBuildExtractAudioArgs(t *testing.T) {
	tests := []struct {
		name            string
		inputPath       string
		enc             model.EncodeOptions
		outputPath      string
		includeProgress bool
		wantContains    []string
		wantNotContains []string
	}{
		{
			name:       "default codec",
			inputPath:  "/tmp/input.mp4",
			enc:        model.EncodeOptions{AudioOnly: true, AudioBitrateKbps: 192},
			outputPath: "/tmp/output.mp3",
			wantContains: []string{
				"-vn",
				"-c:a", "libmp3lame",
				"-b:a", "192k",
			},
			wantNotContains: []string{"-c:v", "-b:v", "-movflags", "-progress"},
		},
		{
			name:            "with progress",
			inputPath:       "/tmp/input.mp4",
			enc:             model.EncodeOptions{AudioOnly: true, AudioBitrateKbps: 320},
			outputPath:      "/tmp/output.mp3",
			includeProgress: true,
			wantContains:    []string{"-b:a", "320k", "-progress", "pipe:1", "-nostats"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := BuildExtractAudioArgs(tt.inputPath, tt.enc, tt.outputPath, tt.includeProgress)

			argsStr := strings.Join(args, " ")
			for _, want := range tt.wantContains {
				if !strings.Contains(argsStr, want) {
					t.Errorf("BuildExtractAudioArgs() args missing %q, got: %v", want, args)
				}
			}
			for _, notWant := range tt.wantNotContains {
				if strings.Contains(argsStr, notWant) {
					t.Errorf("BuildExtractAudioArgs() args should not contain %q, got: %v", notWant, args)
				}
			}

			if args[len(args)-1] != tt.outputPath {
				t.Errorf("BuildExtractAudioArgs() last arg = %v, want %v", args[len(args)-1], tt.outputPath)
			}
		})
	}
}
