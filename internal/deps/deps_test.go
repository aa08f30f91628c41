package deps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected unset result %#v", results[2])
	}
}

func TestMediaRequirements(t *testing.T) {
	reqs := MediaRequirements("/opt/ffmpeg", "ffprobe")
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(reqs))
	}
	if reqs[0].Command != "/opt/ffmpeg" || reqs[0].Optional {
		t.Fatalf("ffmpeg requirement = %#v", reqs[0])
	}
	if reqs[1].Command != "ffprobe" || !reqs[1].Optional {
		t.Fatalf("ffprobe requirement = %#v", reqs[1])
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("DEPS_HELPER_MODE") {
	case "empty":
	case "fail":
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stdout, "ffmpeg version 7.1 Copyright (c) 2000-2024 the FFmpeg developers")
		fmt.Fprintln(os.Stdout, "built with gcc 14")
	}
	os.Exit(0)
}

func useHelper(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess", "--")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "DEPS_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() { commandContext = original })
}

func TestToolVersion(t *testing.T) {
	useHelper(t, "ok")
	line, err := ToolVersion(context.Background(), "ffmpeg")
	if err != nil {
		t.Fatalf("ToolVersion: %v", err)
	}
	if !strings.HasPrefix(line, "ffmpeg version 7.1") {
		t.Fatalf("unexpected version line %q", line)
	}
}

func TestToolVersionErrors(t *testing.T) {
	if _, err := ToolVersion(context.Background(), ""); err == nil {
		t.Fatal("expected error for unset binary")
	}

	useHelper(t, "fail")
	if _, err := ToolVersion(context.Background(), "ffmpeg"); err == nil {
		t.Fatal("expected error for failing binary")
	}

	useHelper(t, "empty")
	if _, err := ToolVersion(context.Background(), "ffmpeg"); err == nil || !strings.Contains(err.Error(), "empty output") {
		t.Fatalf("expected empty output error, got %v", err)
	}
}
