package common

import (
	"strings"

	"github.com/op/go-logging"
)

// Tracer lets us write Minio HTTP trace output to our logs at
// DEBUG level.
type Tracer struct {
	logger *logging.Logger
}

func NewTracer(logger *logging.Logger) *Tracer {
	return &Tracer{
		logger: logger,
	}
}

func (t *Tracer) Write(p []byte) (n int, err error) {
	msg := strings.TrimRight(string(p), "\r\n")
	if msg != "" {
		t.logger.Debug(msg)
	}
	return len(p), nil
}
