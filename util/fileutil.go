package util

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// FileExists returns true if the file at path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ExpandTilde expands a leading ~ in filePath to the current user's
// home directory.
func ExpandTilde(filePath string) (string, error) {
	if !strings.HasPrefix(filePath, "~") {
		return filePath, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(usr.HomeDir, filePath[1:]), nil
}

// LooksSafeToDelete returns true if filePath is at least minLength
// characters long and contains at least minSeparators path separators.
// This keeps us from deleting things like "/" or "/usr/local" because
// of a bad setting.
func LooksSafeToDelete(filePath string, minLength, minSeparators int) bool {
	separators := strings.Count(filePath, string(os.PathSeparator))
	return len(filePath) >= minLength && separators >= minSeparators
}
