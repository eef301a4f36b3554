package utils

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrNotDataURI is returned when a string is not a base64 data URI.
var ErrNotDataURI = errors.New("not a base64 data URI")

// EncodeDataURI returns data as a data:<mime>;base64,<payload> URI.
func EncodeDataURI(mimeType string, data []byte) string {
	var sb strings.Builder
	sb.Grow(len(mimeType) + base64.StdEncoding.EncodedLen(len(data)) + 13)
	sb.WriteString("data:")
	sb.WriteString(mimeType)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(data))
	return sb.String()
}

// DecodeDataURI splits a base64 data URI into its mime type and payload.
func DecodeDataURI(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, ErrNotDataURI
	}
	header, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return "", nil, ErrNotDataURI
	}
	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, ErrNotDataURI
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}
	return mimeType, b, nil
}

// IsDataURI reports whether s is an inlined data URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}
