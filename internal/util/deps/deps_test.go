package deps

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindTool_MissingIsErrNotFound(t *testing.T) {
	if _, err := FindFFmpeg("/no/such/dir/ffmpeg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindFFmpeg(bogus path) error = %v, want ErrNotFound", err)
	}
	if _, err := FindFFprobe("/no/such/dir/ffprobe"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindFFprobe(bogus path) error = %v, want ErrNotFound", err)
	}
}

func TestFindTool_CustomPath(t *testing.T) {
	p := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := FindFFmpeg(p)
	if err != nil {
		t.Fatalf("FindFFmpeg(%q) error: %v", p, err)
	}
	if got != p {
		t.Errorf("FindFFmpeg(%q) = %q", p, got)
	}
}
