package pixels

import (
	"image"
	"image/color"
)

// RGBA32F is an in-memory image of premultiplied float32 RGBA samples in [0,1].
type RGBA32F struct {
	Pix    []float32
	Stride int
	Rect   image.Rectangle
}

func NewRGBA32F(r image.Rectangle) *RGBA32F {
	return &RGBA32F{
		Pix:    make([]float32, 4*r.Dx()*r.Dy()),
		Stride: 4 * r.Dx(),
		Rect:   r,
	}
}

func (p *RGBA32F) ColorModel() color.Model { return color.RGBA64Model }

func (p *RGBA32F) Bounds() image.Rectangle { return p.Rect }

func (p *RGBA32F) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*4
}

func (p *RGBA32F) At(x, y int) color.Color {
	return p.RGBA64At(x, y)
}

func (p *RGBA32F) RGBA64At(x, y int) color.RGBA64 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return color.RGBA64{}
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+4 : i+4]
	return color.RGBA64{R: to16(s[0]), G: to16(s[1]), B: to16(s[2]), A: to16(s[3])}
}

func (p *RGBA32F) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	r, g, b, a := c.RGBA()
	s := p.Pix[i : i+4 : i+4]
	s[0] = float32(r) / 0xffff
	s[1] = float32(g) / 0xffff
	s[2] = float32(b) / 0xffff
	s[3] = float32(a) / 0xffff
}

func to16(v float32) uint16 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}
