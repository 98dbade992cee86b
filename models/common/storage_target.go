package common

import (
	"fmt"
	"net/url"
	"strings"
)

// StorageTarget describes the bucket where reference mode stores
// submission media, and how to build public URLs for stored keys.
type StorageTarget struct {
	Bucket        string
	Host          string
	PublicURLBase string
	Region        string
	Secure        bool
}

// URLFor returns the public URL for the specified key. When
// PublicURLBase is set (for a CDN or a virtual-hosted bucket name),
// the key is appended to it. Otherwise this returns a path-style URL
// like https://s3.amazonaws.com/my-bucket/input_videos/clip.mp4
func (target *StorageTarget) URLFor(key string) string {
	escaped := escapeKey(key)
	if target.PublicURLBase != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(target.PublicURLBase, "/"), escaped)
	}
	scheme := "http"
	if target.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, target.Host, target.Bucket, escaped)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
