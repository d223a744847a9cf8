package texture

import (
	"errors"
	"image"

	"golang.org/x/image/draw"

	"github.com/ivlev/imgseq/internal/pixels"
)

var ErrEmptyBuffer = errors.New("texture: upload of empty buffer")

// Provider is implemented by anything that exposes a display texture.
type Provider interface {
	Texture() *Texture
}

// Texture is a display-ready RGBA surface that is updated in place on
// every upload. It is not safe for concurrent use: only the goroutine that
// owns the display may touch it.
type Texture struct {
	img       *image.RGBA
	size      image.Point // zero means follow the uploaded frame
	minFilter Filter
	magFilter Filter
	uploads   int
}

type Option func(*Texture)

// WithSize fixes the texture dimensions; frames of another size are resampled.
func WithSize(width, height int) Option {
	return func(t *Texture) {
		if width > 0 && height > 0 {
			t.size = image.Pt(width, height)
		}
	}
}

func WithFilters(minFilter, magFilter Filter) Option {
	return func(t *Texture) {
		t.minFilter = minFilter
		t.magFilter = magFilter
	}
}

func New(opts ...Option) *Texture {
	t := &Texture{minFilter: Linear, magFilter: Linear}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Upload copies buf into the texture. The backing image is reallocated
// only when the target size changes.
func (t *Texture) Upload(buf *pixels.Buffer) error {
	if buf == nil || buf.Image() == nil {
		return ErrEmptyBuffer
	}
	src := buf.Image()
	sb := src.Bounds()

	size := t.size
	if size == (image.Point{}) {
		size = sb.Size()
	}
	r := image.Rectangle{Max: size}
	if t.img == nil || t.img.Rect != r {
		t.img = image.NewRGBA(r)
	}

	if sb.Size() == size {
		draw.Draw(t.img, r, src, sb.Min, draw.Src)
	} else {
		f := t.magFilter
		if size.X*size.Y < sb.Dx()*sb.Dy() {
			f = t.minFilter
		}
		f.interpolator().Scale(t.img, r, src, sb, draw.Src, nil)
	}
	t.uploads++
	return nil
}

// Image returns the current contents, or nil before the first upload.
func (t *Texture) Image() image.Image {
	if t.img == nil {
		return nil
	}
	return t.img
}

// RGBA exposes the backing surface for sinks that want raw bytes.
func (t *Texture) RGBA() *image.RGBA { return t.img }

func (t *Texture) Allocated() bool { return t.img != nil }

func (t *Texture) Width() int {
	if t.img == nil {
		return 0
	}
	return t.img.Rect.Dx()
}

func (t *Texture) Height() int {
	if t.img == nil {
		return 0
	}
	return t.img.Rect.Dy()
}

// Uploads counts successful uploads since creation.
func (t *Texture) Uploads() int { return t.uploads }

// SetMinMagFilter takes effect on the next upload.
func (t *Texture) SetMinMagFilter(minFilter, magFilter Filter) {
	t.minFilter = minFilter
	t.magFilter = magFilter
}

func (t *Texture) MinMagFilter() (Filter, Filter) {
	return t.minFilter, t.magFilter
}
