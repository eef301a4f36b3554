package utils_test

import (
	"errors"
	"testing"

	"github.com/KaramelBytes/sitesmith-cli/internal/utils"
)

func TestDataURIRoundTrip(t *testing.T) {
	uri := utils.EncodeDataURI("image/png", []byte{0x89, 'P', 'N', 'G'})
	if uri != "data:image/png;base64,iVBORw==" {
		t.Fatalf("unexpected uri: %q", uri)
	}
	mimeType, data, err := utils.DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if mimeType != "image/png" || string(data) != "\x89PNG" {
		t.Fatalf("unexpected decode: %q %q", mimeType, data)
	}
}

func TestDecodeDataURIRejectsPlainURLs(t *testing.T) {
	for _, in := range []string{"https://example.com/a.png", "data:text/plain,hello", "data:image/png;base64"} {
		if _, _, err := utils.DecodeDataURI(in); !errors.Is(err, utils.ErrNotDataURI) {
			t.Errorf("%q: expected ErrNotDataURI, got %v", in, err)
		}
	}
}
