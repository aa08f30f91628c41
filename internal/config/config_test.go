package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"splicer/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SPLICER_NTFY_TOPIC", "https://ntfy.example/splicer")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "splicer", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "splicer", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7490" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Engine.FFmpegBinary != "ffmpeg" || cfg.Engine.X264Preset != "ultrafast" {
		t.Fatalf("unexpected engine defaults: %+v", cfg.Engine)
	}
	if cfg.Defaults.Quality != "low" || cfg.Defaults.Resolution != "1280x720" {
		t.Fatalf("unexpected preset defaults: %+v", cfg.Defaults)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.example/splicer" {
		t.Fatalf("expected ntfy topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "splicer.toml")

	type payload struct {
		Paths struct {
			WorkDir string `toml:"work_dir"`
		} `toml:"paths"`
		Engine struct {
			X264Preset string `toml:"x264_preset"`
		} `toml:"engine"`
		Defaults struct {
			Quality    string `toml:"quality"`
			Resolution string `toml:"resolution"`
		} `toml:"defaults"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.WorkDir = filepath.Join(tempDir, "work")
	custom.Engine.X264Preset = "Medium"
	custom.Defaults.Quality = "high"
	custom.Defaults.Resolution = "1080p"
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.WorkDir != filepath.Join(tempDir, "work") {
		t.Fatalf("unexpected work dir %q", cfg.Paths.WorkDir)
	}
	if cfg.Engine.X264Preset != "medium" {
		t.Fatalf("expected preset to be lowercased, got %q", cfg.Engine.X264Preset)
	}
	if cfg.Defaults.Quality != "high" || cfg.Defaults.Resolution != "1080p" {
		t.Fatalf("unexpected defaults %+v", cfg.Defaults)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Logging.Format)
	}
	if cfg.Engine.FFprobeBinary != "ffprobe" {
		t.Fatalf("expected unset fields to keep defaults, got %q", cfg.Engine.FFprobeBinary)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "splicer.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nstaging_dir = \"/tmp\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "staging_dir") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestEnvOverridesWorkDir(t *testing.T) {
	override := filepath.Join(t.TempDir(), "override")
	t.Setenv("SPLICER_WORK_DIR", override)
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.WorkDir != override {
		t.Fatalf("expected work dir from env, got %q", cfg.Paths.WorkDir)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "x264_preset") {
		t.Fatalf("sample config missing engine section: %s", contents)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if !strings.Contains(cfg.Paths.WorkDir, "splicer") {
		t.Fatalf("expected work dir to contain splicer, got %q", cfg.Paths.WorkDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad bind", func(c *config.Config) { c.Paths.APIBind = "localhost" }},
		{"bad quality", func(c *config.Config) { c.Defaults.Quality = "ultra" }},
		{"bad resolution", func(c *config.Config) { c.Defaults.Resolution = "1000x1000" }},
		{"bad preset", func(c *config.Config) { c.Engine.X264Preset = "warp" }},
		{"negative free space", func(c *config.Config) { c.Engine.MinFreeMiB = -1 }},
		{"zero timeout", func(c *config.Config) { c.Notifications.RequestTimeout = 0 }},
		{"zero upload", func(c *config.Config) { c.Server.MaxUploadMiB = 0 }},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"bad level", func(c *config.Config) { c.Logging.Level = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.WorkDir = t.TempDir()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	cfg.Paths.WorkDir = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidateAllowsOtherCodecPresets(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.VideoCodec = "libx265"
	cfg.Engine.X264Preset = "anything"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected non-x264 codec to skip preset check: %v", err)
	}
}

func TestMaxUploadBytes(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxUploadMiB = 2
	if got := cfg.MaxUploadBytes(); got != 2*1024*1024 {
		t.Fatalf("unexpected upload bytes %d", got)
	}
}
