package service

import (
	"time"
)

// StorageReference describes one object the storage uploader wrote.
// URL is either a public URL or a time-limited signed URL, depending
// on configuration.
type StorageReference struct {
	Bucket      string    `json:"bucket"`
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	ETag        string    `json:"etag,omitempty"`
	Role        string    `json:"role,omitempty"`
	StoredAt    time.Time `json:"stored_at"`
}
