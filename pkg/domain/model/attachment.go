package model

import (
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Attachment is a file stored by the backend for a log.
type Attachment struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	URL          string `json:"url,omitempty"`
}

func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.MimeType, "image/")
}

// DisplayName falls back to the stored filename when the original name is unknown.
func (a Attachment) DisplayName() string {
	if a.OriginalName != "" {
		return a.OriginalName
	}
	return a.Filename
}

func (a Attachment) SizeLabel() string {
	return FormatFileSize(a.Size)
}

// UploadPath is the site relative path the stored file is served from.
func (a Attachment) UploadPath() string {
	return UploadPath(a.Filename)
}

// UploadPath escapes filename as a single path segment under /uploads.
func UploadPath(filename string) string {
	return "/uploads/" + url.PathEscape(filename)
}

var fileSizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with 1024-based units and at most two
// decimals, trimming trailing zeros: 0 is "0 Bytes", 1536 is "1.5 KB".
func FormatFileSize(size int64) string {
	if size <= 0 {
		return "0 Bytes"
	}
	const k = 1024.0
	b := float64(size)
	i := int(math.Floor(math.Log(b) / math.Log(k)))
	if i >= len(fileSizeUnits) {
		i = len(fileSizeUnits) - 1
	}
	v := b / math.Pow(k, float64(i))
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + " " + fileSizeUnits[i]
}

// Download is a file streamed from the backend's upload store.
type Download struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}
