package sequence

import (
	"log"
	"time"

	"github.com/ivlev/imgseq/internal/catalog"
	"github.com/ivlev/imgseq/internal/pixels"
	"github.com/ivlev/imgseq/internal/source"
	"github.com/ivlev/imgseq/internal/system"
	"github.com/ivlev/imgseq/internal/texture"
)

// Logger receives diagnostics. It is called from the loader goroutine as
// well, so implementations must be safe for concurrent use; *log.Logger is.
type Logger interface {
	Printf(format string, v ...any)
}

// Options holds the load configuration of a Sequence. Extension, MaxFrames,
// Threaded and Kind are fixed once a load has started.
type Options struct {
	Extension string        // folder filter, "png" or ".png"; empty lists all files
	MaxFrames int           // 0 = unlimited
	Threaded  bool          // folder loads decode every frame on a worker goroutine
	FrameRate float64       // frames per second for time-based access
	Kind      pixels.Kind   // per-frame pixel storage
	LoadYield time.Duration // pause between frames in background mode
}

func DefaultOptions() Options {
	return Options{
		FrameRate: 30,
		Kind:      pixels.Uint8,
		LoadYield: 15 * time.Millisecond,
	}
}

type Option func(*Sequence)

func WithDecoder(d source.Decoder) Option {
	return func(s *Sequence) { s.decoder = d }
}

func WithLister(l catalog.Lister) Option {
	return func(s *Sequence) { s.lister = l }
}

func WithTexture(t *texture.Texture) Option {
	return func(s *Sequence) { s.tex = t }
}

func WithLogger(l Logger) Option {
	return func(s *Sequence) { s.log = l }
}

// WithMemoryProbe replaces the available-memory source used for the preload
// advisory. A nil probe disables the advisory.
func WithMemoryProbe(probe func() (uint64, error)) Option {
	return func(s *Sequence) { s.memProbe = probe }
}

func defaults(s *Sequence) {
	if s.decoder == nil {
		s.decoder = source.ImageDecoder{}
	}
	if s.lister == nil {
		s.lister = catalog.DirLister{}
	}
	if s.tex == nil {
		s.tex = texture.New()
	}
	if s.log == nil {
		s.log = log.Default()
	}
}

var defaultMemoryProbe = system.AvailableMemory
