package pixels

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(10, 20, 10+w, 20+h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 0, G: 0, B: 0, A: 255}
			if (x+y)%2 == 0 {
				c = color.NRGBA{R: 255, G: 128, B: 0, A: 255}
			}
			img.SetNRGBA(10+x, 20+y, c)
		}
	}
	return img
}

func TestFromImageKinds(t *testing.T) {
	src := checker(4, 3)

	for _, kind := range []Kind{Uint8, Uint16, Float32} {
		t.Run(kind.String(), func(t *testing.T) {
			buf, err := FromImage(src, kind)
			if err != nil {
				t.Fatalf("FromImage failed: %v", err)
			}
			if buf.Kind() != kind {
				t.Errorf("Expected kind %s, got %s", kind, buf.Kind())
			}
			if buf.Width() != 4 || buf.Height() != 3 {
				t.Errorf("Expected 4x3, got %dx%d", buf.Width(), buf.Height())
			}
			if buf.Bounds().Min != (image.Point{}) {
				t.Errorf("Expected origin at 0,0, got %v", buf.Bounds().Min)
			}

			r, g, b, a := buf.Image().At(0, 0).RGBA()
			if r>>8 != 255 || g>>8 != 128 || b != 0 || a>>8 != 255 {
				t.Errorf("Unexpected pixel at 0,0: %d %d %d %d", r>>8, g>>8, b>>8, a>>8)
			}
			r, _, _, _ = buf.Image().At(1, 0).RGBA()
			if r != 0 {
				t.Errorf("Expected black pixel at 1,0, got r=%d", r)
			}

			if want := 4 * 3 * kind.BytesPerPixel(); buf.SizeBytes() != want {
				t.Errorf("Expected %d bytes, got %d", want, buf.SizeBytes())
			}
		})
	}
}

func TestFromImageRejectsUnknownKind(t *testing.T) {
	_, err := FromImage(checker(1, 1), Kind(7))
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("Expected ErrUnsupportedKind, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", Uint8, false},
		{"uint8", Uint8, false},
		{"16", Uint16, false},
		{"RGBA64", Uint16, false},
		{"float", Float32, false},
		{"double", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRGBA32FClampsSamples(t *testing.T) {
	img := NewRGBA32F(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA64{R: 0xffff, G: 0x8000, B: 0, A: 0xffff})
	img.Pix[4] = 1.5  // out of range high
	img.Pix[5] = -0.5 // out of range low

	c := img.RGBA64At(0, 0)
	if c.R != 0xffff || c.G != 0x8000 || c.B != 0 || c.A != 0xffff {
		t.Errorf("Unexpected color %+v", c)
	}
	c = img.RGBA64At(1, 0)
	if c.R != 0xffff || c.G != 0 {
		t.Errorf("Expected clamped samples, got %+v", c)
	}
	if (img.RGBA64At(5, 5) != color.RGBA64{}) {
		t.Error("Expected zero color outside bounds")
	}
}

func TestReleaseEmptiesBuffer(t *testing.T) {
	buf, err := FromImage(checker(2, 2), Uint8)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	buf.Release()
	if buf.Image() != nil {
		t.Error("Expected nil image after Release")
	}
	if buf.Width() != 0 {
		t.Errorf("Expected zero width after Release, got %d", buf.Width())
	}
	buf.Release() // second release is a no-op

	got := Get(Uint8, image.Rect(0, 0, 2, 2))
	if got.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("Pool returned wrong bounds %v", got.Bounds())
	}
}
