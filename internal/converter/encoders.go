package converter

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	webpenc "github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"github.com/pixelbatch/convert-pipeline/pkg/convert"
)

// Encoder writes an image in one output format at the given quality.
// Quality is 1-100; its meaning is encoder-defined and lossless
// encoders ignore it.
type Encoder interface {
	Format() convert.Format
	Encode(w io.Writer, img image.Image, quality int) error
}

// encoders maps each encodable format to its encoder. AVIF is absent:
// no encoder exists on this platform, so requesting it fails with
// convert.ErrEncode at lookup time rather than mis-encoding.
var encoders = map[convert.Format]Encoder{
	convert.FormatJPEG: jpegEncoder{},
	convert.FormatPNG:  pngEncoder{},
	convert.FormatGIF:  gifEncoder{},
	convert.FormatWebP: webpEncoder{},
}

// encoderFor resolves the encoder for a format.
func encoderFor(f convert.Format) (Encoder, error) {
	enc, ok := encoders[f]
	if !ok {
		return nil, fmt.Errorf("%w: no %s encoder on this platform", convert.ErrEncode, f)
	}
	return enc, nil
}

// EncodableFormats returns the formats the local converter can
// produce, in the priority order of convert.Formats.
func EncodableFormats() []convert.Format {
	var out []convert.Format
	for _, f := range convert.Formats {
		if _, ok := encoders[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

type jpegEncoder struct{}

func (jpegEncoder) Format() convert.Format { return convert.FormatJPEG }

func (jpegEncoder) Encode(w io.Writer, img image.Image, quality int) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
}

type pngEncoder struct{}

func (pngEncoder) Format() convert.Format { return convert.FormatPNG }

func (pngEncoder) Encode(w io.Writer, img image.Image, _ int) error {
	return png.Encode(w, img)
}

type gifEncoder struct{}

func (gifEncoder) Format() convert.Format { return convert.FormatGIF }

func (gifEncoder) Encode(w io.Writer, img image.Image, _ int) error {
	return gif.Encode(w, img, nil)
}

type webpEncoder struct{}

func (webpEncoder) Format() convert.Format { return convert.FormatWebP }

func (webpEncoder) Encode(w io.Writer, img image.Image, quality int) error {
	opts, err := webpenc.NewLossyEncoderOptions(webpenc.PresetDefault, float32(quality))
	if err != nil {
		return err
	}
	return webp.Encode(w, img, opts)
}
