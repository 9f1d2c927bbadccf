package convert

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "webp", want: FormatWebP},
		{in: "WEBP", want: FormatWebP},
		{in: "jpg", want: FormatJPEG},
		{in: "jpeg", want: FormatJPEG},
		{in: "png", want: FormatPNG},
		{in: "gif", want: FormatGIF},
		{in: "avif", want: FormatAVIF},
		{in: " png ", want: FormatPNG},
		{in: "bmp", wantErr: true},
		{in: "", wantErr: true},
		{in: "image/webp", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFormat(%q) = %q, want error", tt.in, got)
				}
				if !errors.Is(err, ErrValidation) {
					t.Errorf("error should wrap ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "defaults", opts: DefaultOptions()},
		{name: "min quality", opts: Options{Format: FormatJPEG, Quality: 1}},
		{name: "max quality", opts: Options{Format: FormatPNG, Quality: 100}},
		{name: "zero quality", opts: Options{Format: FormatWebP, Quality: 0}, wantErr: true},
		{name: "over quality", opts: Options{Format: FormatWebP, Quality: 101}, wantErr: true},
		{name: "free-string format", opts: Options{Format: Format("tiff"), Quality: 80}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("Validate() = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate(): %v", err)
			}
		})
	}
}

func TestDerivedName(t *testing.T) {
	tests := []struct {
		original string
		format   Format
		want     string
	}{
		{original: "photo.png", format: FormatWebP, want: "photo.webp"},
		{original: "photo.jpeg", format: FormatJPEG, want: "photo.jpg"},
		{original: "archive.tar.gz", format: FormatPNG, want: "archive.tar.png"},
		{original: "noext", format: FormatGIF, want: "noext.gif"},
		{original: ".png", format: FormatAVIF, want: "image.avif"},
	}

	for _, tt := range tests {
		if got := DerivedName(tt.original, tt.format); got != tt.want {
			t.Errorf("DerivedName(%q, %q) = %q, want %q", tt.original, tt.format, got, tt.want)
		}
	}
}
