package video

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSink writes every frame as dir/frame_NNNNN.png.
type PNGSink struct {
	Dir    string
	frames int
}

func NewPNGSink(dir string) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &PNGSink{Dir: dir}, nil
}

func (s *PNGSink) WriteFrame(img image.Image) error {
	path := filepath.Join(s.Dir, fmt.Sprintf("frame_%05d.png", s.frames))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("png encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.frames++
	return nil
}

func (s *PNGSink) Frames() int { return s.frames }

func (s *PNGSink) Close() error { return nil }
