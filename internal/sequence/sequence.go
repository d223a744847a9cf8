// Package sequence plays a numbered series of still images as if it were a
// movie: frames are addressed by index, time or percent and decoded on
// demand, with the resident frame mirrored into a single display texture.
//
// A Sequence belongs to one goroutine, the one that owns the display. The
// only work done elsewhere is the background preload started by a threaded
// folder load; the owner observes its completion by calling Update once per
// tick, and no other call may mutate the sequence until then.
package sequence

import (
	"fmt"

	"github.com/ivlev/imgseq/internal/catalog"
	"github.com/ivlev/imgseq/internal/pixels"
	"github.com/ivlev/imgseq/internal/source"
	"github.com/ivlev/imgseq/internal/system"
	"github.com/ivlev/imgseq/internal/texture"
)

var _ texture.Provider = (*Sequence)(nil)

type Sequence struct {
	opts     Options
	decoder  source.Decoder
	lister   catalog.Lister
	tex      *texture.Texture
	log      Logger
	memProbe func() (uint64, error)

	frames  []frame
	folder  string
	current int // resident frame, -1 if none
	loaded  bool
	width   int
	height  int

	job *LoadJob
}

func New(opts Options, deps ...Option) *Sequence {
	if opts.FrameRate <= 0 {
		opts.FrameRate = DefaultOptions().FrameRate
	}
	if opts.MaxFrames < 0 {
		opts.MaxFrames = 0
	}
	s := &Sequence{
		opts:     opts,
		memProbe: defaultMemoryProbe,
		current:  -1,
	}
	for _, dep := range deps {
		dep(s)
	}
	defaults(s)
	return s
}

func (s *Sequence) report(op string, err error) error {
	s.log.Printf("[!] sequence.%s: %v", op, err)
	return err
}

// --- configuration ---

func (s *Sequence) configurable(op string) error {
	if s.job != nil {
		return s.report(op, ErrLoadInProgress)
	}
	if s.loaded {
		return s.report(op, ErrConfigLocked)
	}
	return nil
}

// SetExtension limits folder loads to files with the given extension.
func (s *Sequence) SetExtension(ext string) error {
	if err := s.configurable("SetExtension"); err != nil {
		return err
	}
	s.opts.Extension = ext
	return nil
}

// SetMaxFrames caps folder loads; 0 or less means no limit.
func (s *Sequence) SetMaxFrames(n int) error {
	if err := s.configurable("SetMaxFrames"); err != nil {
		return err
	}
	if n < 0 {
		n = 0
	}
	s.opts.MaxFrames = n
	return nil
}

func (s *Sequence) EnableThreadedLoad(enable bool) error {
	if err := s.configurable("EnableThreadedLoad"); err != nil {
		return err
	}
	s.opts.Threaded = enable
	return nil
}

// SetPixelKind selects the storage of decoded frames. The kind is checked
// when the next catalog is built.
func (s *Sequence) SetPixelKind(kind pixels.Kind) error {
	if err := s.configurable("SetPixelKind"); err != nil {
		return err
	}
	s.opts.Kind = kind
	return nil
}

func (s *Sequence) SetFrameRate(rate float64) error {
	if rate <= 0 {
		return s.report("SetFrameRate", fmt.Errorf("%w: %v", ErrInvalidFrameRate, rate))
	}
	s.opts.FrameRate = rate
	return nil
}

// SetMinMagFilter changes texture resampling and refreshes the resident frame.
func (s *Sequence) SetMinMagFilter(minFilter, magFilter texture.Filter) {
	s.tex.SetMinMagFilter(minFilter, magFilter)
	if s.job == nil && s.current >= 0 {
		if err := s.tex.Upload(s.frames[s.current].buf); err != nil {
			s.report("SetMinMagFilter", err)
		}
	}
}

// --- loading ---

// LoadRange loads prefix+start..end+"."+filetype, zero-padding the index to
// digits when digits > 0. Frames are decoded lazily; frame 0 is made
// resident right away.
func (s *Sequence) LoadRange(prefix, filetype string, start, end, digits int) error {
	s.Unload()

	paths, err := catalog.Range(prefix, filetype, start, end, digits, s.opts.Kind)
	if err != nil {
		return s.report("LoadRange", err)
	}
	s.frames = newFrames(paths)
	return s.completeLoading()
}

// LoadFolder loads every matching file of folder. In threaded mode it
// returns at once and the work continues in the background; poll Update to
// finish the load.
func (s *Sequence) LoadFolder(folder string) error {
	s.Unload()
	s.folder = folder

	if s.opts.Threaded {
		s.job = startLoadJob(s)
		return nil
	}

	if err := s.buildFolderCatalog(); err != nil {
		return s.report("LoadFolder", err)
	}
	return s.completeLoading()
}

// buildFolderCatalog runs on the loader goroutine in threaded mode.
func (s *Sequence) buildFolderCatalog() error {
	paths, err := catalog.Folder(s.lister, s.folder, s.opts.Extension, s.opts.MaxFrames, s.opts.Kind)
	if err != nil {
		s.frames = nil
		return err
	}
	s.frames = newFrames(paths)
	s.log.Printf("[*] %d frames found in %s", len(paths), s.folder)
	return nil
}

func (s *Sequence) completeLoading() error {
	if len(s.frames) == 0 {
		return s.report("completeLoading", ErrEmptySequence)
	}

	s.loaded = true
	s.current = -1
	s.loadFrame(0)

	// Dimensions come from frame 0 only; if it failed they keep their
	// previous values.
	if f := s.frames[0]; f.state == stateDecoded {
		s.width = f.buf.Width()
		s.height = f.buf.Height()
	}
	return nil
}

// PreloadAll decodes every frame not attempted yet, in order. Failures are
// recorded per frame and do not stop the loop. Frame 0 is made resident
// afterwards.
func (s *Sequence) PreloadAll() error {
	if s.job != nil {
		return s.report("PreloadAll", ErrLoadInProgress)
	}
	if len(s.frames) == 0 {
		return s.report("PreloadAll", ErrEmptySequence)
	}
	s.preloadFrames(nil)
	return s.completeLoading()
}

// preloadFrames is shared by PreloadAll and the loader goroutine. With a
// job it checks for cancellation and yields before every frame, and never
// touches the texture.
func (s *Sequence) preloadFrames(job *LoadJob) {
	advised := false
	for i := range s.frames {
		if job != nil && !job.yield(s.opts.LoadYield) {
			return
		}

		s.decodeFrame(i)
		if f := s.frames[i]; !advised && f.state == stateDecoded {
			advised = true
			s.adviseMemory(f.buf.SizeBytes())
		}

		if job != nil {
			job.attempted.Add(1)
		}
	}
}

func (s *Sequence) adviseMemory(frameBytes int) {
	if s.memProbe == nil {
		return
	}
	avail, err := s.memProbe()
	if err != nil {
		return
	}
	if err := system.CheckPreload(len(s.frames), frameBytes, avail); err != nil {
		s.log.Printf("[!] preload of %d frames: %v", len(s.frames), err)
	}
}

// Unload drops every decoded frame and the catalog, cancelling a
// background load first. Safe to call at any time.
func (s *Sequence) Unload() {
	if s.job != nil {
		s.CancelLoad()
	}
	s.reset()
}

func (s *Sequence) reset() {
	for i := range s.frames {
		s.frames[i].buf.Release()
	}
	s.frames = nil
	s.folder = ""
	s.loaded = false
	s.width = 0
	s.height = 0
	s.current = -1
}

// --- frame cache ---

// EnsureFrameReady makes index the resident frame, decoding it if needed.
// Asking for the resident frame again does nothing. When the frame fails to
// decode the previous resident frame stays on the texture.
func (s *Sequence) EnsureFrameReady(index int) error {
	if s.job != nil {
		return s.report("EnsureFrameReady", ErrLoadInProgress)
	}
	return s.loadFrame(index)
}

func (s *Sequence) loadFrame(index int) error {
	if index == s.current {
		return nil
	}
	if index < 0 || index >= len(s.frames) {
		return s.report("loadFrame", fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(s.frames)))
	}
	if err := s.decodeFrame(index); err != nil {
		return err
	}
	if err := s.tex.Upload(s.frames[index].buf); err != nil {
		return s.report("loadFrame", err)
	}
	s.current = index
	return nil
}

// decodeFrame decodes a frame that was never attempted. It is the only
// writer of frame state and runs on the loader goroutine during a
// background preload.
func (s *Sequence) decodeFrame(index int) error {
	f := &s.frames[index]
	switch f.state {
	case stateDecoded:
		return nil
	case stateFailed:
		return fmt.Errorf("%w: %s", ErrFrameDecode, f.path)
	}

	img, err := s.decoder.Decode(f.path)
	var buf *pixels.Buffer
	if err == nil {
		buf, err = pixels.FromImage(img, s.opts.Kind)
	}
	if err != nil {
		f.state = stateFailed
		s.log.Printf("[!] Image failed to load: %s: %v", f.path, err)
		return fmt.Errorf("%w: %s: %v", ErrFrameDecode, f.path, err)
	}

	f.buf = buf
	f.state = stateDecoded
	return nil
}

// Prefetch decodes index without making it resident, to read ahead of
// playback.
func (s *Sequence) Prefetch(index int) error {
	if s.job != nil {
		return s.report("Prefetch", ErrLoadInProgress)
	}
	if index < 0 || index >= len(s.frames) {
		return s.report("Prefetch", fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(s.frames)))
	}
	return s.decodeFrame(index)
}

func (s *Sequence) resident() *pixels.Buffer {
	if s.job != nil || s.current < 0 {
		return nil
	}
	return s.frames[s.current].buf
}

// PixelsForFrame returns the pixels of index. If the frame cannot be made
// resident the last resident frame is returned, or nil if there is none.
// The buffer stays valid until the sequence is unloaded.
func (s *Sequence) PixelsForFrame(index int) *pixels.Buffer {
	s.SetFrame(index)
	return s.resident()
}

func (s *Sequence) PixelsForTime(seconds float64) *pixels.Buffer {
	s.SetFrameForTime(seconds)
	return s.resident()
}

func (s *Sequence) PixelsForPercent(percent float64) *pixels.Buffer {
	s.SetFrameAtPercent(percent)
	return s.resident()
}

// TextureForFrame makes index resident and returns the shared texture.
func (s *Sequence) TextureForFrame(index int) *texture.Texture {
	s.SetFrame(index)
	return s.tex
}

func (s *Sequence) TextureForTime(seconds float64) *texture.Texture {
	s.SetFrameForTime(seconds)
	return s.tex
}

func (s *Sequence) TextureForPercent(percent float64) *texture.Texture {
	s.SetFrameAtPercent(percent)
	return s.tex
}

// Texture returns the texture holding the resident frame.
func (s *Sequence) Texture() *texture.Texture {
	return s.tex
}

// --- queries ---

// PercentLoaded is 1 once loaded and the background progress while a
// threaded load is running; otherwise 0.
func (s *Sequence) PercentLoaded() float64 {
	if s.loaded {
		return 1
	}
	if s.job != nil {
		return s.job.Progress()
	}
	return 0
}

func (s *Sequence) IsLoaded() bool { return s.loaded }

func (s *Sequence) IsLoading() bool {
	return s.job != nil && s.job.Loading()
}

func (s *Sequence) CurrentFrame() int { return s.current }

func (s *Sequence) Width() int  { return s.width }
func (s *Sequence) Height() int { return s.height }

func (s *Sequence) FrameRate() float64 { return s.opts.FrameRate }

func (s *Sequence) Options() Options { return s.opts }

// FilePath returns the file behind index.
func (s *Sequence) FilePath(index int) (string, error) {
	if s.job != nil {
		return "", s.report("FilePath", ErrLoadInProgress)
	}
	if index < 0 || index >= len(s.frames) {
		return "", s.report("FilePath", fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(s.frames)))
	}
	return s.frames[index].path, nil
}

// FrameFailed reports whether index was attempted and could not be decoded.
func (s *Sequence) FrameFailed(index int) bool {
	return s.stateOf(index) == stateFailed
}

func (s *Sequence) FrameDecoded(index int) bool {
	return s.stateOf(index) == stateDecoded
}

func (s *Sequence) stateOf(index int) frameState {
	if s.job != nil || index < 0 || index >= len(s.frames) {
		return stateNotAttempted
	}
	return s.frames[index].state
}
