// Package fixture writes synthetic frame sequences. Every frame is a QR
// code carrying its own index, so a played-back frame can be identified
// by scanning it.
package fixture

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"

	"github.com/ivlev/imgseq/internal/catalog"
	"github.com/ivlev/imgseq/internal/pixels"
)

// Content is the text encoded into the frame with the given index.
func Content(index int) string {
	return fmt.Sprintf("frame %d", index)
}

// Frame renders the QR code for index on a size x size canvas.
func Frame(index, size int) (image.Image, error) {
	q, err := qrcode.New(Content(index), qrcode.Medium)
	if err != nil {
		return nil, err
	}
	code := q.Image(size)

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(canvas, canvas.Bounds(), code, code.Bounds(), draw.Src, nil)
	return canvas, nil
}

// WriteFrame encodes the frame for index to path; the format follows the
// extension (png or jpg).
func WriteFrame(path string, index, size int) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return fmt.Errorf("unsupported fixture format: %s", path)
	}

	img, err := Frame(index, size)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if ext == ".png" {
		return png.Encode(f, img)
	}
	return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
}

// WriteRange writes the frames a range load with the same arguments would
// look for and returns their paths.
func WriteRange(prefix, filetype string, start, end, digits, size int) ([]string, error) {
	paths, err := catalog.Range(prefix, filetype, start, end, digits, pixels.Uint8)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(prefix); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	for i, p := range paths {
		if err := WriteFrame(p, start+i, size); err != nil {
			return nil, fmt.Errorf("frame %d: %w", start+i, err)
		}
	}
	return paths, nil
}

// Corrupt overwrites path with bytes no decoder accepts.
func Corrupt(path string) error {
	return os.WriteFile(path, []byte("this is not an image"), 0644)
}
