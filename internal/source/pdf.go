package source

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// PDFDecoder rasterizes one page of a PDF file, for sequences exported as
// vector frames.
type PDFDecoder struct {
	DPI  int
	Page int
}

func (d *PDFDecoder) Decode(path string) (image.Image, error) {
	// A document per call keeps the decoder usable from the loader goroutine.
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if d.Page >= doc.NumPage() {
		return nil, fmt.Errorf("%s: page %d out of %d", path, d.Page, doc.NumPage())
	}

	dpi := d.DPI
	if dpi <= 0 {
		dpi = 72
	}
	return doc.ImageDPI(d.Page, float64(dpi))
}
