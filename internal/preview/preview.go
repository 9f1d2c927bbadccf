// Package preview turns an accepted file's raw bytes into a
// displayable data URI. The preview is the verbatim source re-encoded
// for transport, not a thumbnail: no resizing, no format
// normalization.
package preview

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/pixelbatch/convert-pipeline/pkg/convert"
)

// Generate reads the entire byte source and encodes it as a base64
// data URI, returning both the raw bytes and the URI. A short or
// failed read yields convert.ErrRead; the caller must not mark the
// record ready in that case.
func Generate(r io.Reader, mimeType string) ([]byte, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", convert.ErrRead, err)
	}
	return data, EncodeDataURI(data, mimeType), nil
}

// EncodeDataURI wraps raw bytes in a data URI.
func EncodeDataURI(data []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI recovers the raw bytes and media type from a data URI
// produced by EncodeDataURI.
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("%w: not a data URI", convert.ErrDecode)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: malformed data URI", convert.ErrDecode)
	}
	mimeType, _ := strings.CutSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", convert.ErrDecode, err)
	}
	return data, mimeType, nil
}
