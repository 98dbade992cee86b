package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brandpulse/brandpulse-demo/util"
)

// MediaBlob is a file supplied by the user: the video, or one of the
// player or jersey images.
type MediaBlob struct {
	// FileName is the name of the file on the user's machine. We use
	// only the base name and extension.
	FileName string

	// ContentType is the type the browser or caller declared. May be
	// empty, in which case we derive it from the file extension.
	ContentType string

	// Data is the file's content.
	Data []byte
}

func NewMediaBlob(fileName, contentType string, data []byte) *MediaBlob {
	return &MediaBlob{
		FileName:    filepath.Base(fileName),
		ContentType: contentType,
		Data:        data,
	}
}

// MediaBlobFromFile reads the file at path into a new MediaBlob.
// The content type is left empty.
func MediaBlobFromFile(path string) (*MediaBlob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot read %s: %v", path, err)
	}
	return NewMediaBlob(path, "", data), nil
}

func (b *MediaBlob) Size() int64 {
	return int64(len(b.Data))
}

// Extension returns the blob's lower-case file extension, with the dot.
func (b *MediaBlob) Extension() string {
	return util.LowerExtension(b.FileName)
}

// IsEmpty returns true if the blob is missing or has no content.
func (b *MediaBlob) IsEmpty() bool {
	return b == nil || len(b.Data) == 0
}
