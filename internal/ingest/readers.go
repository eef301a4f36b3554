package ingest

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/sitesmith-cli/internal/utils"
)

// Reader converts raw file bytes into the stored content string.
type Reader interface {
	CanRead(name, mimeType string) bool
	Read(data []byte, mimeType string) (string, error)
}

var registry []Reader

// Register adds a reader. Readers are consulted in registration order.
func Register(r Reader) {
	registry = append(registry, r)
}

func init() {
	Register(imageReader{})
}

// readContent picks the first matching reader and falls back to text.
func readContent(name, mimeType string, data []byte) (string, error) {
	for _, r := range registry {
		if r.CanRead(name, mimeType) {
			return r.Read(data, mimeType)
		}
	}
	return textReader{}.Read(data, mimeType)
}

// imageReader inlines images as base64 data URIs.
type imageReader struct{}

func (imageReader) CanRead(_, mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

func (imageReader) Read(data []byte, mimeType string) (string, error) {
	return utils.EncodeDataURI(mimeType, data), nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// textReader decodes bytes as UTF-8, dropping a leading BOM and replacing
// invalid sequences with U+FFFD.
type textReader struct{}

func (textReader) CanRead(string, string) bool { return true }

func (textReader) Read(data []byte, _ string) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}
