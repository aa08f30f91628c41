package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// Clip returns size bytes of placeholder media content. A size <= 0 yields a
// single byte.
func Clip(size int) []byte {
	if size <= 0 {
		size = 1
	}
	return bytes.Repeat([]byte{0x42}, size)
}

// WriteClip writes a placeholder clip named name under dir and returns its
// path.
func WriteClip(t testing.TB, dir, name string, size int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, Clip(size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
