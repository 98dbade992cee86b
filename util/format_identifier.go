package util

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/richardlehane/siegfried"
)

// sniffLength is the number of leading bytes we look at when
// identifying a file. http.DetectContentType never reads more
// than 512, and siegfried's magic-number signatures for the
// video and image formats we accept all sit in the first few KB.
const sniffLength = 64 * 1024

type IdRecord struct {
	MatchType string
	MimeType  string
	Succeeded bool
}

// FormatIdentifier identifies the type of uploaded media. When it's
// created with a siegfried signature file, it uses siegfried's PRONOM
// matching. Otherwise, it falls back to the content sniffing in
// net/http, which knows the common image formats and MP4.
type FormatIdentifier struct {
	sf *siegfried.Siegfried
}

// NewFormatIdentifier returns a new FormatIdentifier. Param signatureFile
// is the path to a siegfried signature file (e.g. default.sig). If it's
// empty, the identifier uses content sniffing only.
func NewFormatIdentifier(signatureFile string) (*FormatIdentifier, error) {
	if signatureFile == "" {
		return &FormatIdentifier{}, nil
	}
	sf, err := siegfried.Load(signatureFile)
	if err != nil {
		return nil, fmt.Errorf("Cannot load signature file %s: %v", signatureFile, err)
	}
	return &FormatIdentifier{sf: sf}, nil
}

// UsesSiegfried returns true if this identifier loaded a signature file.
func (f *FormatIdentifier) UsesSiegfried() bool {
	return f.sf != nil
}

// Identify returns an IdRecord describing the type of data. If the
// type can't be determined, IdRecord.Succeeded is false and MimeType
// is application/octet-stream.
func (f *FormatIdentifier) Identify(filename string, data []byte) *IdRecord {
	if len(data) > sniffLength {
		data = data[:sniffLength]
	}
	if f.sf != nil {
		if record := f.identifyWithSiegfried(data); record != nil {
			return record
		}
	}
	mimeType := http.DetectContentType(data)
	if idx := strings.Index(mimeType, ";"); idx > -1 {
		mimeType = mimeType[:idx]
	}
	return &IdRecord{
		MatchType: "sniff",
		MimeType:  mimeType,
		Succeeded: mimeType != "application/octet-stream",
	}
}

// identifyWithSiegfried matches on content only. Given a file name,
// siegfried also reports matches on the extension alone, and the
// extension is exactly what we can't trust.
func (f *FormatIdentifier) identifyWithSiegfried(data []byte) *IdRecord {
	ids, err := f.sf.Identify(bytes.NewReader(data), "", "")
	if err != nil {
		return nil
	}
	for _, id := range ids {
		if !id.Known() {
			continue
		}
		for _, value := range id.Values() {
			if looksLikeMimeType(value) {
				return &IdRecord{
					MatchType: "siegfried",
					MimeType:  value,
					Succeeded: true,
				}
			}
		}
	}
	return nil
}

// Matches returns true if data looks like the media family ("video" or
// "image") expected for filename. Sniffers return
// application/octet-stream for containers they don't know (QuickTime,
// for instance), so an unidentified file passes on its extension alone.
// A file identified as something else does not pass.
func (f *FormatIdentifier) Matches(family, filename string, data []byte) bool {
	record := f.Identify(filename, data)
	if !record.Succeeded {
		return true
	}
	return strings.HasPrefix(record.MimeType, family+"/")
}

func looksLikeMimeType(value string) bool {
	return strings.HasPrefix(value, "video/") || strings.HasPrefix(value, "image/")
}
