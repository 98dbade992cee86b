package logger

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/op/go-logging"
)

var logLevels = map[string]logging.Level{
	"CRITICAL": logging.CRITICAL,
	"ERROR":    logging.ERROR,
	"WARNING":  logging.WARNING,
	"NOTICE":   logging.NOTICE,
	"INFO":     logging.INFO,
	"DEBUG":    logging.DEBUG,
}

// ParseLevel converts a level name like "info" or "DEBUG" into a
// logging.Level. Unknown names return INFO.
func ParseLevel(name string) logging.Level {
	if level, ok := logLevels[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return level
	}
	return logging.INFO
}

/*
InitLogger creates and returns a logger suitable for logging
human-readable message. Also returns the path to the log file.
If logDir is empty, the logger writes to stdout and the returned
path is empty.
*/
func InitLogger(logDir string, logLevel logging.Level) (*logging.Logger, string) {
	processName := path.Base(os.Args[0])
	var writer io.Writer = os.Stdout
	filename := ""
	if logDir != "" {
		filename = filepath.Join(logDir, fmt.Sprintf("%s.log", processName))
		file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open log file '%s': %v\n", filename, err)
			os.Exit(1)
		}
		writer = file
	}
	return newLogger(processName, writer, logLevel), filename
}

// DiscardLogger returns a logger that writes nowhere. Tests and
// library callers that don't care about log output use this.
func DiscardLogger(name string) *logging.Logger {
	return newLogger(name, io.Discard, logging.CRITICAL)
}

func newLogger(name string, writer io.Writer, logLevel logging.Level) *logging.Logger {
	log := logging.MustGetLogger(name)
	format := logging.MustStringFormatter("[%{level}] %{message}")
	backend := logging.NewLogBackend(writer, "", stdlog.LstdFlags|stdlog.LUTC)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
	leveled.SetLevel(logLevel, name)
	log.SetBackend(leveled)
	return log
}
