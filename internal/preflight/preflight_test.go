package preflight

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"splicer/internal/config"
	"splicer/internal/services"
	"splicer/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace("space", dir, 0); !result.Passed {
		t.Fatalf("expected pass with no minimum, got %q", result.Detail)
	}
	result := CheckFreeSpace("space", dir, math.MaxUint64)
	if result.Passed {
		t.Fatal("expected failure for an impossible minimum")
	}
	if !strings.Contains(result.Detail, "required") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
	if result := CheckFreeSpace("space", filepath.Join(dir, "missing"), 0); result.Passed {
		t.Fatal("expected statfs failure for missing path")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_ReportsWorkspaceAndBinaries(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WorkDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Engine.MinFreeMiB = 0
	cfg.Engine.FFmpegBinary = "clearly-not-present-ffmpeg"
	cfg.Engine.FFprobeBinary = "clearly-not-present-ffprobe"

	results := RunAll(context.Background(), &cfg)
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	want := []string{"Work directory", "Work directory space", "Log directory", "FFmpeg"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("checks = %v, want %v", names, want)
	}

	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "FFmpeg" {
		t.Fatalf("failed = %+v", failed)
	}
}

func TestRunAll_PassesWithStubbedBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if want := filepath.Join(testsupport.BaseDir(cfg), "bin", "ffmpeg"); cfg.Engine.FFmpegBinary != want {
		t.Fatalf("ffmpeg binary = %q, want %q", cfg.Engine.FFmpegBinary, want)
	}

	results := RunAll(context.Background(), cfg)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected every check to pass, failed = %+v", failed)
	}
}

func TestWorkspaceSpaceCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	cfg.Engine.MinFreeMiB = 0
	if err := WorkspaceSpaceCheck(cfg)(context.Background()); err != nil {
		t.Fatalf("expected no minimum to pass, got %v", err)
	}

	cfg.Engine.MinFreeMiB = 1 << 40
	err := WorkspaceSpaceCheck(cfg)(context.Background())
	if !errors.Is(err, services.ErrEngineLoad) {
		t.Fatalf("expected engine load error, got %v", err)
	}
	if !strings.Contains(err.Error(), "required") {
		t.Fatalf("expected the shortfall in the error, got %q", err)
	}
}
