package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ivlev/imgseq/internal/pixels"
	"github.com/ivlev/imgseq/internal/sequence"
	"github.com/ivlev/imgseq/internal/texture"
)

var (
	ErrNoInput        = errors.New("either folder or range must be set")
	ErrAmbiguousInput = errors.New("folder and range are mutually exclusive")
)

// Range describes prefix+start..end+"."+filetype.
type Range struct {
	Prefix   string `yaml:"prefix"`
	Filetype string `yaml:"filetype"`
	Start    int    `yaml:"start"`
	End      int    `yaml:"end"`
	Digits   int    `yaml:"digits,omitempty"`
}

type Config struct {
	Folder    string `yaml:"folder,omitempty"`
	Range     *Range `yaml:"range,omitempty"`
	Extension string `yaml:"extension,omitempty"`
	MaxFrames int    `yaml:"max_frames,omitempty"`
	Threaded  bool   `yaml:"threaded"`

	FPS       float64       `yaml:"fps"`
	PixelKind pixels.Kind   `yaml:"pixel_kind"`
	LoadYield time.Duration `yaml:"load_yield"`
	DPI       int           `yaml:"dpi"`

	Width     int    `yaml:"width,omitempty"` // 0 follows the frame size
	Height    int    `yaml:"height,omitempty"`
	MinFilter string `yaml:"min_filter"`
	MagFilter string `yaml:"mag_filter"`

	Loops   int    `yaml:"loops"`
	Output  string `yaml:"output,omitempty"` // *.mp4 goes through ffmpeg, anything else is a PNG directory
	Encoder string `yaml:"encoder,omitempty"`
	Quality int    `yaml:"quality,omitempty"`
}

func Default() *Config {
	opts := sequence.DefaultOptions()
	return &Config{
		FPS:       opts.FrameRate,
		PixelKind: opts.Kind,
		LoadYield: opts.LoadYield,
		DPI:       150,
		MinFilter: texture.Linear.String(),
		MagFilter: texture.Linear.String(),
		Loops:     1,
	}
}

func (c *Config) Validate() error {
	switch {
	case c.Folder == "" && c.Range == nil:
		return ErrNoInput
	case c.Folder != "" && c.Range != nil:
		return ErrAmbiguousInput
	}
	if c.Range != nil && c.Range.End < c.Range.Start {
		return fmt.Errorf("range %d..%d is empty", c.Range.Start, c.Range.End)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: %v", sequence.ErrInvalidFrameRate, c.FPS)
	}
	if !c.PixelKind.Valid() {
		return fmt.Errorf("%w: %d", pixels.ErrUnsupportedKind, int(c.PixelKind))
	}
	if (c.Width > 0) != (c.Height > 0) {
		return fmt.Errorf("width and height must be set together: %dx%d", c.Width, c.Height)
	}
	if c.Loops < 0 {
		return fmt.Errorf("negative loop count: %d", c.Loops)
	}
	if _, _, err := c.Filters(); err != nil {
		return err
	}
	return nil
}

// SequenceOptions converts the load settings.
func (c *Config) SequenceOptions() sequence.Options {
	return sequence.Options{
		Extension: c.Extension,
		MaxFrames: c.MaxFrames,
		Threaded:  c.Threaded,
		FrameRate: c.FPS,
		Kind:      c.PixelKind,
		LoadYield: c.LoadYield,
	}
}

func (c *Config) Filters() (minFilter, magFilter texture.Filter, err error) {
	if minFilter, err = texture.ParseFilter(c.MinFilter); err != nil {
		return
	}
	magFilter, err = texture.ParseFilter(c.MagFilter)
	return
}

// Texture builds the display texture described by the config.
func (c *Config) Texture() (*texture.Texture, error) {
	minFilter, magFilter, err := c.Filters()
	if err != nil {
		return nil, err
	}
	return texture.New(
		texture.WithSize(c.Width, c.Height),
		texture.WithFilters(minFilter, magFilter),
	), nil
}
