package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSessionIDHandlerAddsAttr(t *testing.T) {
	var buf bytes.Buffer
	h := newSessionIDHandler(slog.NewJSONHandler(&buf, nil), "sess-1")
	slog.New(h).With("component", "server").Info("listening")
	if !strings.Contains(buf.String(), `"session_id":"sess-1"`) {
		t.Fatalf("missing session id: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"component":"server"`) {
		t.Fatalf("missing component: %s", buf.String())
	}
}

func TestSessionIDHandlerPassThrough(t *testing.T) {
	if _, ok := newSessionIDHandler(nil, "x").(NoopHandler); !ok {
		t.Fatal("nil base should yield NoopHandler")
	}
	base := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if newSessionIDHandler(base, "") != base {
		t.Fatal("empty session id should return base unchanged")
	}
}
