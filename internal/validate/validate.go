// Package validate decides whether a candidate file may enter the
// pipeline. It is a boundary check on the declared type and size, not
// a security scan: no content sniffing is performed.
package validate

import (
	"fmt"

	"github.com/pixelbatch/convert-pipeline/pkg/convert"
)

// MaxFileSize is the intake size ceiling.
const MaxFileSize = 50 << 20 // 50 MiB

// allowedTypes is the fixed MIME allow-list for intake.
var allowedTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// File checks a candidate's declared MIME type and size. It returns
// nil when the file is accepted; the error wraps convert.ErrValidation
// with a human-readable reason for the caller to surface.
func File(mimeType string, size int64) error {
	if !allowedTypes[mimeType] {
		return fmt.Errorf("%w: unsupported file type %q", convert.ErrValidation, mimeType)
	}
	if size > MaxFileSize {
		return fmt.Errorf("%w: file exceeds the 50MB size limit", convert.ErrValidation)
	}
	return nil
}

// Allowed reports whether a MIME type is on the intake allow-list.
func Allowed(mimeType string) bool {
	return allowedTypes[mimeType]
}
