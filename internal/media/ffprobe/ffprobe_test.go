package ffprobe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

const samplePayload = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080, "duration": "12.480000"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "48000", "channels": 2, "duration": "12.500000"}
  ],
  "format": {"filename": "base.mp4", "nb_streams": 2, "duration": "12.500000", "size": "4096", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}`

func TestParseReadsDurationAndStreams(t *testing.T) {
	result, err := Parse([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if result.DurationSeconds() != 12.5 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	video, ok := result.VideoStream()
	if !ok || video.Width != 1920 || video.Height != 1080 {
		t.Fatalf("unexpected video stream: %+v", video)
	}
	if !result.HasAudio() {
		t.Fatal("expected audio stream")
	}
	if result.SizeBytes() != 4096 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestDurationFallsBackToVideoStream(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video", Duration: "8.25"},
			{CodecType: "audio", Duration: "9.0"},
		},
		Format: Format{Duration: "N/A"},
	}
	if got := result.DurationSeconds(); got != 8.25 {
		t.Fatalf("expected video stream duration, got %v", got)
	}
}

func TestInvalidNumbersAreZero(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", Size: "-1"}}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected 0 duration, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected 0 size, got %d", result.SizeBytes())
	}
}

func TestInspectBytesRunsProbe(t *testing.T) {
	restore := stubCommand(t, "ok")
	defer restore()

	result, err := InspectBytes(context.Background(), "ffprobe", "clip.mp4", []byte("not really video"))
	if err != nil {
		t.Fatalf("InspectBytes returned error: %v", err)
	}
	if result.DurationSeconds() != 12.5 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestInspectSurfacesStderr(t *testing.T) {
	restore := stubCommand(t, "fail")
	defer restore()

	_, err := Inspect(context.Background(), "ffprobe", "/tmp/missing.mp4")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "Invalid data found") {
		t.Fatalf("expected stderr detail in error, got %q", got)
	}
}

func TestInspectBytesRejectsEmpty(t *testing.T) {
	if _, err := InspectBytes(context.Background(), "ffprobe", "clip.mp4", nil); err == nil {
		t.Fatal("expected error for empty clip")
	}
}

func stubCommand(t *testing.T, mode string) func() {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "FFPROBE_HELPER_MODE="+mode)
		return cmd
	}
	return func() { commandContext = original }
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("FFPROBE_HELPER_MODE") {
	case "fail":
		fmt.Fprintln(os.Stderr, "/tmp/missing.mp4: Invalid data found when processing input")
		os.Exit(1)
	default:
		fmt.Fprint(os.Stdout, samplePayload)
	}
	os.Exit(0)
}
