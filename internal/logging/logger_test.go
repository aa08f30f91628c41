package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"splicer/internal/config"
	"splicer/internal/logging"
	"splicer/internal/services"
)

func TestNewFromConfigWritesJSONFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"

	var console bytes.Buffer
	logger, err := logging.NewFromConfig(&cfg, &console, "")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("engine loaded", logging.String("binary", "ffmpeg"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, data)
	}
	if entry["msg"] != "engine loaded" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	if entry["binary"] != "ffmpeg" {
		t.Fatalf("binary = %v", entry["binary"])
	}
	if id, _ := entry[logging.FieldSessionID].(string); id == "" {
		t.Fatalf("expected session id in %v", entry)
	}
	if entry["level"] != "info" {
		t.Fatalf("level = %v", entry["level"])
	}
	if !strings.Contains(console.String(), `"msg":"engine loaded"`) {
		t.Fatalf("expected JSON on the console writer:\n%s", console.String())
	}
}

func TestNewFromConfigLevelOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Level = "info"

	var console bytes.Buffer
	logger, err := logging.NewFromConfig(&cfg, &console, " debug ")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("pipeline step planned", logging.Int("step", 1))

	if !strings.Contains(console.String(), "DEBUG") {
		t.Fatalf("expected debug record on console:\n%s", console.String())
	}
	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"level":"debug"`) {
		t.Fatalf("expected debug record in file:\n%s", data)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleLoggerHeader(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithStage(services.WithJobID(context.Background(), "0123456789abcdef"), "trim")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "jobs")).
		Info("step started", logging.Int("step", 1))

	out := buf.String()
	for _, want := range []string{"INFO [jobs] Job 01234567 (trim) - step started", "    step: 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "job_id") {
		t.Fatalf("job id should be folded into the header:\n%s", out)
	}
}

func TestConsoleLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestConsoleLoggerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("ffmpeg output", logging.String("line", "Invalid data found"), logging.Group("spec", logging.Float64("cut", 5)))
	out := buf.String()
	if !strings.Contains(out, `line: "Invalid data found"`) {
		t.Fatalf("expected quoted value:\n%s", out)
	}
	if !strings.Contains(out, "spec.cut: 5") {
		t.Fatalf("expected grouped key:\n%s", out)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "notification failed", "notify_failed", logging.String(logging.FieldImpact, "no push sent"))

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry[logging.FieldEventType] != "notify_failed" {
		t.Fatalf("event_type = %v", entry[logging.FieldEventType])
	}
	if entry[logging.FieldImpact] != "no push sent" {
		t.Fatalf("impact overwritten: %v", entry[logging.FieldImpact])
	}
	if entry[logging.FieldErrorHint] == nil {
		t.Fatal("expected default error hint")
	}
}

func TestContextFields(t *testing.T) {
	ctx := services.WithRequestID(services.WithJobID(context.Background(), "job-1"), "req-9")
	fields := logging.ContextFields(ctx)
	got := map[string]string{}
	for _, f := range fields {
		got[f.Key] = f.Value.String()
	}
	if got[logging.FieldJobID] != "job-1" || got[logging.FieldCorrelationID] != "req-9" {
		t.Fatalf("unexpected fields %v", got)
	}
	if _, ok := got[logging.FieldStage]; ok {
		t.Fatal("stage should be absent")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should never be enabled")
	}
}
