package convert

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is an output encoding. It is a closed set: anything not
// produced by ParseFormat is rejected at the boundary rather than
// passed through as a free string.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatWebP Format = "webp"
	FormatAVIF Format = "avif"
)

// Formats lists every supported output format in priority order.
var Formats = []Format{FormatAVIF, FormatWebP, FormatJPEG, FormatPNG, FormatGIF}

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "gif":
		return FormatGIF, nil
	case "webp":
		return FormatWebP, nil
	case "avif":
		return FormatAVIF, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", ErrValidation, s)
	}
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// MIME returns the media type for the format.
func (f Format) MIME() string {
	return "image/" + string(f)
}

// Options selects the target encoding for a conversion. A single
// shared instance is mutated by user controls and read by both the
// local converter and the batch delegate at the moment of conversion.
type Options struct {
	Format  Format
	Quality int // 1-100, encoder-defined; higher is less lossy
}

// DefaultOptions matches the initial UI state.
func DefaultOptions() Options {
	return Options{Format: FormatWebP, Quality: 80}
}

// Validate checks the options against the closed format set and the
// quality range.
func (o Options) Validate() error {
	if _, err := ParseFormat(string(o.Format)); err != nil {
		return err
	}
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("%w: quality %d out of range 1-100", ErrValidation, o.Quality)
	}
	return nil
}

// ArchiveName is the filename used when delivering a batch archive.
const ArchiveName = "images-converted.zip"

// DerivedName builds the download filename for a converted image:
// the original name with its extension replaced by the target format's.
func DerivedName(original string, f Format) string {
	stem := strings.TrimSuffix(original, filepath.Ext(original))
	if stem == "" {
		stem = "image"
	}
	return stem + "." + f.Ext()
}
