package jobs_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"splicer/internal/engine/enginetest"
	"splicer/internal/jobs"
	"splicer/internal/logging"
	"splicer/internal/pipeline"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) entries(t *testing.T, msg string) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []map[string]any
	for line := range strings.Lines(b.buf.String()) {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %v\n%s", err, line)
		}
		if entry["msg"] == msg {
			out = append(out, entry)
		}
	}
	return out
}

func TestSubmitLogsGenerationAndReplacement(t *testing.T) {
	var logs lockedBuffer
	logger, err := logging.New(logging.Options{Format: "json", Writer: &logs})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	eng := enginetest.New()
	eng.On(pipeline.CompressedName, enginetest.Script{Output: []byte("encoded")})
	m := jobs.NewManager(eng, jobs.WithLogger(logger))

	first, err := m.Submit(context.Background(), compressRequest())
	if err != nil {
		t.Fatalf("Submit compress: %v", err)
	}
	waitTerminal(t, m, first.ID)
	second, err := m.Submit(context.Background(), stitchRequest(4))
	if err != nil {
		t.Fatalf("Submit stitch: %v", err)
	}
	waitTerminal(t, m, second.ID)

	submitted := logs.entries(t, "job submitted")
	if len(submitted) != 2 {
		t.Fatalf("expected 2 submission records, got %d", len(submitted))
	}
	if submitted[0]["replaces_output"] != false || submitted[1]["replaces_output"] != true {
		t.Fatalf("replaces_output = %v, %v", submitted[0]["replaces_output"], submitted[1]["replaces_output"])
	}
	if submitted[1]["generation"] != float64(second.Generation) || second.Generation <= first.Generation {
		t.Fatalf("generation = %v, job generations %d then %d", submitted[1]["generation"], first.Generation, second.Generation)
	}
	if _, ok := submitted[0]["cut_seconds"]; ok {
		t.Fatal("compress submission should not log a cut point")
	}
	if submitted[1]["cut_seconds"] != 4.0 {
		t.Fatalf("cut_seconds = %v", submitted[1]["cut_seconds"])
	}
	if submitted[1][logging.FieldJobID] != second.ID {
		t.Fatalf("job_id = %v, want %s", submitted[1][logging.FieldJobID], second.ID)
	}
}
