package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"vidsqueeze/internal/config"
	"vidsqueeze/internal/encoder"
	"vidsqueeze/internal/model"
	"vidsqueeze/internal/plan"
	"vidsqueeze/internal/probe"
	"vidsqueeze/internal/util/deps"
)

func tempInput(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "in.mp4")
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestAssembleOptions(t *testing.T) {
	in := tempInput(t)

	cases := []struct {
		name     string
		flags    []string
		wantErr  bool
		wantMode model.Mode
		wantSize float64
	}{
		{name: "compress", flags: []string{"-s", "25"}, wantMode: model.ModeCompress, wantSize: 25},
		{name: "fractional size", flags: []string{"--size", "0.5"}, wantMode: model.ModeCompress, wantSize: 0.5},
		{name: "extract audio", flags: []string{"-a"}, wantMode: model.ModeExtractAudio},
		{name: "both modes", flags: []string{"-s", "25", "-a"}, wantErr: true},
		{name: "no mode", flags: []string{}, wantErr: true},
		{name: "zero size", flags: []string{"-s", "0"}, wantErr: true},
		{name: "negative size", flags: []string{"-s", "-3"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := newRootCmd()
			if err := root.ParseFlags(tc.flags); err != nil {
				t.Fatalf("ParseFlags: %v", err)
			}
			opts, err := assembleOptions(root, []string{in, "out.mp4"})
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", opts)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if opts.Mode != tc.wantMode {
				t.Errorf("Mode = %q, want %q", opts.Mode, tc.wantMode)
			}
			if opts.TargetSizeMB != tc.wantSize {
				t.Errorf("TargetSizeMB = %v, want %v", opts.TargetSizeMB, tc.wantSize)
			}
			if opts.InputPath != in || opts.OutputPath != "out.mp4" {
				t.Errorf("paths = %q, %q", opts.InputPath, opts.OutputPath)
			}
		})
	}
}

func TestAssembleOptions_MissingInput(t *testing.T) {
	root := newRootCmd()
	if err := root.ParseFlags([]string{"-s", "25"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if _, err := assembleOptions(root, []string{"/no/such/file.mp4", "out.mp4"}); err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func TestAssembleOptions_AudioBitrate(t *testing.T) {
	in := tempInput(t)
	root := newRootCmd()
	if err := root.ParseFlags([]string{"-a", "--audio-bitrate", "320"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	opts, err := assembleOptions(root, []string{in, "out.mp3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.AudioBitrateKbps != 320 {
		t.Errorf("AudioBitrateKbps = %d, want 320", opts.AudioBitrateKbps)
	}
}

func TestAssembleOptions_EnvFallback(t *testing.T) {
	in := tempInput(t)
	t.Setenv("VIDSQUEEZE_VERBOSE", "true")
	t.Setenv("VIDSQUEEZE_NO_UI", "true")

	root := newRootCmd()
	if err := config.Init(root); err != nil {
		t.Fatalf("config.Init: %v", err)
	}
	if err := root.ParseFlags([]string{"-s", "25"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	opts, err := assembleOptions(root, []string{in, "out.mp4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.Verbose {
		t.Error("VIDSQUEEZE_VERBOSE=true should enable Verbose when the flag is unset")
	}
	if !opts.NoUI {
		t.Error("VIDSQUEEZE_NO_UI=true should enable NoUI when the flag is unset")
	}
}

func TestWrapExit_FindToolError(t *testing.T) {
	// The TUI path surfaces tool-lookup errors as-is; they must map to the
	// missing-dependency exit code just like the plain path.
	_, err := deps.FindFFmpeg("/no/such/dir/ffmpeg")
	if err == nil {
		t.Fatal("expected lookup error")
	}
	var ee *ExitError
	if !errors.As(wrapExit(err), &ee) || ee.Code != ExitMissingDep {
		t.Fatalf("wrapExit(%v) = %+v, want code %d", err, ee, ExitMissingDep)
	}
}

func TestWrapExit(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"missing dependency", fmt.Errorf("startup: %w", deps.ErrNotFound), ExitMissingDep},
		{"plan too small", fmt.Errorf("plan: %w", plan.ErrTargetSizeTooSmall), ExitPlanError},
		{"plan bad duration", plan.ErrInvalidDuration, ExitPlanError},
		{"probe", &probe.Error{Path: "x", Err: errors.New("boom")}, ExitProbeError},
		{"encode", &encoder.Error{Err: errors.New("boom")}, ExitTranscodeError},
		{"generic", errors.New("boom"), ExitCLIError},
		{"already wrapped", &ExitError{Code: ExitMissingDep, Err: errors.New("no ffmpeg")}, ExitMissingDep},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := wrapExit(tc.err)
			var ee *ExitError
			if !errors.As(got, &ee) {
				t.Fatalf("wrapExit returned %T, want *ExitError", got)
			}
			if ee.Code != tc.wantCode {
				t.Errorf("code = %d, want %d", ee.Code, tc.wantCode)
			}
		})
	}
	if wrapExit(nil) != nil {
		t.Error("wrapExit(nil) should be nil")
	}
}
