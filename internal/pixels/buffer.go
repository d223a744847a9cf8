package pixels

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Buffer is one decoded frame stored in a fixed Kind.
type Buffer struct {
	kind Kind
	img  draw.Image
}

// FromImage converts a decoded image into a Buffer of the requested kind.
// The result is anchored at (0,0) regardless of the source bounds.
func FromImage(src image.Image, kind Kind) (*Buffer, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	sb := src.Bounds()
	r := image.Rect(0, 0, sb.Dx(), sb.Dy())
	dst := Get(kind, r)
	draw.Draw(dst, r, src, sb.Min, draw.Src)
	return &Buffer{kind: kind, img: dst}, nil
}

func (b *Buffer) Kind() Kind { return b.kind }

// Image returns the backing image, nil after Release.
func (b *Buffer) Image() image.Image {
	if b.img == nil {
		return nil
	}
	return b.img
}

func (b *Buffer) Bounds() image.Rectangle {
	if b.img == nil {
		return image.Rectangle{}
	}
	return b.img.Bounds()
}

func (b *Buffer) Width() int  { return b.Bounds().Dx() }
func (b *Buffer) Height() int { return b.Bounds().Dy() }

// SizeBytes is the approximate memory held by the pixel data.
func (b *Buffer) SizeBytes() int {
	return b.Width() * b.Height() * b.kind.BytesPerPixel()
}

// Release hands the backing image back to the pool. The buffer is empty afterwards.
func (b *Buffer) Release() {
	if b == nil || b.img == nil {
		return
	}
	Put(b.kind, b.img)
	b.img = nil
}
