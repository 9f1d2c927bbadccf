// Package converter re-encodes a single image record into the
// requested output format, applying the record's rotation. It is the
// local counterpart to the remote batch endpoint.
package converter

import (
	"bytes"
	"fmt"
	"image"

	// Register decoders for every intake format Go can decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"

	"github.com/pixelbatch/convert-pipeline/internal/preview"
	"github.com/pixelbatch/convert-pipeline/internal/registry"
	"github.com/pixelbatch/convert-pipeline/pkg/convert"
)

// Convert decodes the record's current bytes (the edited version when
// present, the preview otherwise), rotates them per the record, and
// encodes the result at options.Quality. The record is not mutated.
//
// Rotation of 90 or 270 degrees swaps the output dimensions relative
// to the source; no scaling is performed. Crop regions are tracked on
// the record but deliberately not applied here.
func Convert(rec *registry.Record, opts convert.Options) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if !rec.Ready() {
		return nil, fmt.Errorf("%w: record %s has not finished intake", convert.ErrDecode, rec.ID)
	}

	uri := rec.EditedURI
	if uri == "" {
		uri = rec.PreviewURI
	}
	data, _, err := preview.DecodeDataURI(uri)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", convert.ErrDecode, err)
	}

	img = rotate(img, rec.Rotation)

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: zero-size image", convert.ErrEncode)
	}

	enc, err := encoderFor(opts.Format)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, img, opts.Quality); err != nil {
		return nil, fmt.Errorf("%w: %v", convert.ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// rotate applies a clockwise rotation in right-angle steps. The
// imaging rotations are counter-clockwise, hence the inversion.
func rotate(img image.Image, degrees int) image.Image {
	switch degrees {
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
