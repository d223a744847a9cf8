package source

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestImageDecoder(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "frame.png")
	writePNG(t, good, 6, 5)

	bad := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(bad, []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}

	var d ImageDecoder
	img, err := d.Decode(good)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 5 {
		t.Errorf("Expected 6x5, got %v", img.Bounds())
	}

	w, h, err := d.Dimensions(good)
	if err != nil || w != 6 || h != 5 {
		t.Errorf("Dimensions = %d,%d,%v", w, h, err)
	}

	if _, err := d.Decode(bad); err == nil {
		t.Error("Expected error for corrupt file")
	}
	if _, err := d.Decode(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestAutoDecoderDispatch(t *testing.T) {
	var pdfCalls, imageCalls int
	d := &AutoDecoder{
		Image: DecoderFunc(func(string) (image.Image, error) {
			imageCalls++
			return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
		}),
		PDF: DecoderFunc(func(string) (image.Image, error) {
			pdfCalls++
			return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
		}),
	}

	for _, p := range []string{"a.png", "b.PDF", "c.jpg", "d.pdf"} {
		if _, err := d.Decode(p); err != nil {
			t.Fatalf("Decode(%s) failed: %v", p, err)
		}
	}
	if pdfCalls != 2 || imageCalls != 2 {
		t.Errorf("Expected 2/2 calls, got pdf=%d image=%d", pdfCalls, imageCalls)
	}
}
