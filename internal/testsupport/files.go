package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteMedia creates a fake media file of the requested size under dir and
// returns its path. The content is a position-dependent byte pattern so tests
// can verify that uploaded parts arrive in order and intact.
func WriteMedia(t testing.TB, dir, name string, size int64) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	buf := make([]byte, 32*1024)
	var written int64
	for written < size {
		for i := range buf {
			buf[i] = byte((written + int64(i)) % 251)
		}
		chunk := int64(len(buf))
		if remaining := size - written; remaining < chunk {
			chunk = remaining
		}
		if _, err := f.Write(buf[:chunk]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		written += chunk
	}
	return path
}
