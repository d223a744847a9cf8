package source

import (
	"image"
	"path/filepath"
	"strings"
)

// Decoder turns a frame file into pixels. Implementations must be safe to
// call from a goroutine other than the one that owns the display.
type Decoder interface {
	Decode(path string) (image.Image, error)
}

// DecoderFunc adapts a plain function to Decoder.
type DecoderFunc func(path string) (image.Image, error)

func (f DecoderFunc) Decode(path string) (image.Image, error) {
	return f(path)
}

// AutoDecoder picks a decoder by file extension: PDF frames go through
// MuPDF, everything else through the image codecs.
type AutoDecoder struct {
	Image Decoder
	PDF   Decoder
}

func NewAutoDecoder(dpi int) *AutoDecoder {
	return &AutoDecoder{
		Image: ImageDecoder{},
		PDF:   &PDFDecoder{DPI: dpi},
	}
}

func (d *AutoDecoder) Decode(path string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") && d.PDF != nil {
		return d.PDF.Decode(path)
	}
	return d.Image.Decode(path)
}
