package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTempFile writes data to a file called name in a temp
// directory that's removed when the test ends, and returns the path.
func WriteTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Cannot write temp file %s: %v", path, err)
	}
	return path
}
