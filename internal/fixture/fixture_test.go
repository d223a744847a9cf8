package fixture

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	_ "image/jpeg"
	_ "image/png"
)

func TestWriteRange(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "seq", "shot_")

	paths, err := WriteRange(prefix, "png", 1, 3, 4, 64)
	if err != nil {
		t.Fatalf("WriteRange failed: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("Expected 3 paths, got %d", len(paths))
	}
	if filepath.Base(paths[0]) != "shot_0001.png" {
		t.Errorf("Unexpected first path %s", paths[0])
	}

	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			t.Fatalf("open %s: %v", p, err)
		}
		cfg, _, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", p, err)
		}
		if cfg.Width != 64 || cfg.Height != 64 {
			t.Errorf("Expected 64x64, got %dx%d", cfg.Width, cfg.Height)
		}
	}
}

func TestFramesDiffer(t *testing.T) {
	a, err := Frame(1, 48)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Frame(2, 48)
	if err != nil {
		t.Fatal(err)
	}

	same := true
	for y := 0; y < 48 && same; y++ {
		for x := 0; x < 48; x++ {
			if a.At(x, y) != b.At(x, y) {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("Expected frames with different indices to differ")
	}
}

func TestWriteFrameRejectsUnknownFormat(t *testing.T) {
	if err := WriteFrame(filepath.Join(t.TempDir(), "x.gif"), 0, 32); err == nil {
		t.Error("Expected error for unsupported format")
	}
}
