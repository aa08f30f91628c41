package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const stubFFmpeg = `#!/bin/sh
for arg in "$@"; do last="$arg"; done
case "$last" in
*.mp4) printf 'encoded' > "$last" ;;
esac
exit 0
`

const stubFFmpegNoOutput = "#!/bin/sh\nexit 0\n"

const stubFFprobe = `#!/bin/sh
printf '{"streams":[{"index":0,"codec_type":"video","codec_name":"h264","width":1280,"height":720}],"format":{"duration":"10.000000"}}'
`

type cliTestEnv struct {
	baseDir    string
	configPath string
	workDir    string
}

type envOption func(*envSettings)

type envSettings struct {
	ffmpeg     string
	ffprobe    string
	ffmpegPath string
	minFreeMiB int64
}

func withFFmpegScript(script string) envOption {
	return func(s *envSettings) { s.ffmpeg = script }
}

func withFFmpegPath(path string) envOption {
	return func(s *envSettings) { s.ffmpegPath = path }
}

func withMinFreeMiB(mib int64) envOption {
	return func(s *envSettings) { s.minFreeMiB = mib }
}

func setupCLITestEnv(t *testing.T, opts ...envOption) *cliTestEnv {
	t.Helper()

	settings := envSettings{ffmpeg: stubFFmpeg, ffprobe: stubFFprobe}
	for _, opt := range opts {
		opt(&settings)
	}

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("SPLICER_NTFY_TOPIC", "")
	t.Setenv("SPLICER_WORK_DIR", "")
	t.Setenv("SPLICER_LOG_LEVEL", "")

	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	ffmpegPath := settings.ffmpegPath
	if ffmpegPath == "" {
		ffmpegPath = writeScript(t, binDir, "ffmpeg", settings.ffmpeg)
	}
	ffprobePath := writeScript(t, binDir, "ffprobe", settings.ffprobe)

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		workDir:    filepath.Join(base, "work"),
	}
	content := fmt.Sprintf(`[paths]
work_dir = %q
log_dir = %q
api_bind = "127.0.0.1:0"

[engine]
ffmpeg_binary = %q
ffprobe_binary = %q
min_free_mib = %d

[logging]
level = "info"
format = "console"
`, env.workDir, filepath.Join(base, "logs"), ffmpegPath, ffprobePath, settings.minFreeMiB)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func writeScript(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if env != nil {
		args = append([]string{"--config", env.configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
