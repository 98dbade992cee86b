package logger

import (
	"github.com/op/go-logging"
)

// MinioProgressLogger logs the progress of uploads through the
// Progress option of minio.PutObjectOptions. Minio passes every
// chunk it reads from the source to Read.
type MinioProgressLogger struct {
	logger         *logging.Logger
	chunkNumber    int
	totalBytes     int64
	fileSize       int64
	lastPctPrinted float64
	prefix         string
}

const _10MB = int64(10485760)
const _100MB = int64(104857600)
const _1GB = int64(1073741824)

// NewMinioProgressLogger creates a new MinioProgressLogger.
func NewMinioProgressLogger(logger *logging.Logger, prefix string, fileSize int64) *MinioProgressLogger {
	return &MinioProgressLogger{
		logger:      logger,
		prefix:      prefix,
		chunkNumber: 1,
		fileSize:    fileSize,
	}
}

// Read fulfills the io.Reader interface required by minio's Progress
// option. It consumes nothing; it only counts bytes and prints progress
// updates into the log, trying not to be too verbose.
func (e *MinioProgressLogger) Read(p []byte) (n int, err error) {
	e.totalBytes += int64(len(p))
	pctComplete := e.PercentComplete()
	if e.shouldPrint(pctComplete) {
		e.logger.Infof("%s : chunk %d, %d of %d bytes, %3.2f%% complete",
			e.prefix, e.chunkNumber, e.totalBytes, e.fileSize, pctComplete)
		e.lastPctPrinted = pctComplete
	}
	e.chunkNumber++
	return len(p), nil
}

// PercentComplete returns the share of the file read so far.
func (e *MinioProgressLogger) PercentComplete() float64 {
	if e.fileSize <= 0 {
		return 0
	}
	return (float64(e.totalBytes) / float64(e.fileSize)) * 100
}

// shouldPrint returns true if the logger should print a message to the log.
// Small files upload quickly, so we don't log them at all. Larger videos
// get an update at fixed steps.
func (e *MinioProgressLogger) shouldPrint(pctComplete float64) bool {
	diff := pctComplete - e.lastPctPrinted
	if e.fileSize > _1GB {
		return diff >= 5.0
	}
	if e.fileSize > _100MB {
		return diff >= 20.0
	}
	if e.fileSize > _10MB {
		return diff >= 50.0
	}
	return false
}
