package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"splicer/internal/logs"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append log: %v", err)
	}
}

func TestTailLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splicer.log")
	writeLog(t, path, "a\nb\nc\n")

	chunk, err := logs.Tail(path, 2, logs.Filter{})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(chunk.Lines) != 2 || chunk.Lines[0] != "b" || chunk.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", chunk.Lines)
	}
	if chunk.Offset != 6 {
		t.Fatalf("offset = %d, want 6", chunk.Offset)
	}
}

func TestTailMissingFile(t *testing.T) {
	chunk, err := logs.Tail(filepath.Join(t.TempDir(), "absent.log"), 5, logs.Filter{})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(chunk.Lines) != 0 || chunk.Offset != 0 {
		t.Fatalf("expected empty chunk, got %+v", chunk)
	}
}

func TestTailFiltersByJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splicer.log")
	writeLog(t, path, `{"msg":"one","job_id":"a"}
{"msg":"two","job_id":"b"}
not json
{"msg":"three","job_id":"a"}
`)

	chunk, err := logs.Tail(path, 10, logs.Filter{JobID: "a"})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(chunk.Lines) != 2 {
		t.Fatalf("expected 2 lines for job a, got %#v", chunk.Lines)
	}
}

func TestReadFromLeavesPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splicer.log")
	writeLog(t, path, "first\nsecond")

	chunk, err := logs.ReadFrom(path, 0, logs.Filter{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(chunk.Lines) != 1 || chunk.Offset != 6 {
		t.Fatalf("unexpected chunk %+v", chunk)
	}

	appendLog(t, path, "\n")
	chunk, err = logs.ReadFrom(path, chunk.Offset, logs.Filter{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(chunk.Lines) != 1 || chunk.Lines[0] != "second" {
		t.Fatalf("unexpected lines %#v", chunk.Lines)
	}
}

func TestReadFromRestartsAfterTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splicer.log")
	writeLog(t, path, "new\n")

	chunk, err := logs.ReadFrom(path, 100, logs.Filter{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(chunk.Lines) != 1 || chunk.Lines[0] != "new" {
		t.Fatalf("unexpected lines %#v", chunk.Lines)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splicer.log")
	writeLog(t, path, "start\n")
	start, err := logs.Tail(path, 0, logs.Filter{})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var seen []string
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, start.Offset, logs.Filter{}, 10*time.Millisecond, func(line string) {
			mu.Lock()
			seen = append(seen, line)
			mu.Unlock()
		})
	}()

	appendLog(t, path, "later\n")
	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for followed line")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("follow: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != "later" {
		t.Fatalf("unexpected followed lines %#v", seen)
	}
}
