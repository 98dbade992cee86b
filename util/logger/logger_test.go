package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brandpulse/brandpulse-demo/util/logger"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logging.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logging.WARNING, logger.ParseLevel(" WARNING "))
	assert.Equal(t, logging.CRITICAL, logger.ParseLevel("CRITICAL"))
	assert.Equal(t, logging.INFO, logger.ParseLevel(""))
	assert.Equal(t, logging.INFO, logger.ParseLevel("chatty"))
}

func TestInitLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	log, filename := logger.InitLogger(dir, logging.INFO)
	require.NotNil(t, log)
	assert.Equal(t, dir, filepath.Dir(filename))
	assert.True(t, strings.HasSuffix(filename, ".log"))

	log.Info("hello from the test")
	log.Debug("this should be filtered")
	data, err := os.ReadFile(filename)
	require.Nil(t, err)
	assert.Contains(t, string(data), "[INFO] hello from the test")
	assert.NotContains(t, string(data), "filtered")
}

func TestInitLoggerStdout(t *testing.T) {
	log, filename := logger.InitLogger("", logging.INFO)
	require.NotNil(t, log)
	assert.Equal(t, "", filename)
}

func TestMinioProgressLogger(t *testing.T) {
	log := logger.DiscardLogger("progress-test")
	progress := logger.NewMinioProgressLogger(log, "clip.mp4", 200*1024*1024)
	chunk := make([]byte, 50*1024*1024)
	n, err := progress.Read(chunk)
	assert.Nil(t, err)
	assert.Equal(t, len(chunk), n)
	assert.InDelta(t, 25.0, progress.PercentComplete(), 0.001)
	progress.Read(chunk)
	assert.InDelta(t, 50.0, progress.PercentComplete(), 0.001)

	empty := logger.NewMinioProgressLogger(log, "empty", 0)
	empty.Read([]byte("abc"))
	assert.Equal(t, 0.0, empty.PercentComplete())
}
