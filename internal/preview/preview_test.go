package preview

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/pixelbatch/convert-pipeline/pkg/convert"
)

func TestGenerateRoundTrip(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0x01, 0x02}

	data, uri, err := Generate(bytes.NewReader(payload), "image/png")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("Generate should return the verbatim source bytes")
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("unexpected URI prefix: %q", uri)
	}

	decoded, mimeType, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("DecodeDataURI: %v", err)
	}
	if mimeType != "image/png" {
		t.Errorf("got media type %q, want image/png", mimeType)
	}
	if !bytes.Equal(decoded, payload) {
		t.Error("decoded bytes differ from source")
	}
}

func TestGenerateReadError(t *testing.T) {
	_, _, err := Generate(iotest.ErrReader(errors.New("disk fault")), "image/jpeg")
	if err == nil {
		t.Fatal("Generate should fail on an unreadable source")
	}
	if !errors.Is(err, convert.ErrRead) {
		t.Errorf("error should wrap ErrRead, got %v", err)
	}
}

func TestGenerateTruncatedStream(t *testing.T) {
	r := iotest.TimeoutReader(bytes.NewReader(make([]byte, 4096)))
	// First read succeeds, second fails: the source cannot be fully read.
	_, _, err := Generate(r, "image/png")
	if !errors.Is(err, convert.ErrRead) {
		t.Errorf("truncated stream should wrap ErrRead, got %v", err)
	}
}

func TestDecodeDataURIMalformed(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{name: "not a data URI", uri: "https://example.com/a.png"},
		{name: "no comma", uri: "data:image/png;base64"},
		{name: "bad base64", uri: "data:image/png;base64,???"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeDataURI(tt.uri); !errors.Is(err, convert.ErrDecode) {
				t.Errorf("DecodeDataURI(%q) should wrap ErrDecode, got %v", tt.uri, err)
			}
		})
	}
}
