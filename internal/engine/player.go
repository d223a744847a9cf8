// Package engine drives a sequence from a host loop: it issues the load,
// polls background progress once per tick and feeds the resident frame to a
// sink.
package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ivlev/imgseq/internal/config"
	"github.com/ivlev/imgseq/internal/sequence"
	"github.com/ivlev/imgseq/internal/source"
	"github.com/ivlev/imgseq/internal/video"
)

type Player struct {
	Config *config.Config
	Seq    *sequence.Sequence
	Sink   video.FrameSink // nil plays without output

	// OnlyChanges skips ticks that did not change the resident frame. Leave
	// it off for constant-rate sinks such as ffmpeg.
	OnlyChanges bool
	Out         io.Writer

	lastFrame    int
	lastProgress int
	written      int
}

// NewPlayer builds the sequence described by cfg. deps override the
// decoder, lister or logger of the sequence.
func NewPlayer(cfg *config.Config, sink video.FrameSink, deps ...sequence.Option) (*Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tex, err := cfg.Texture()
	if err != nil {
		return nil, err
	}

	base := []sequence.Option{
		sequence.WithTexture(tex),
		sequence.WithDecoder(source.NewAutoDecoder(cfg.DPI)),
	}
	seq := sequence.New(cfg.SequenceOptions(), append(base, deps...)...)

	return &Player{
		Config:       cfg,
		Seq:          seq,
		Sink:         sink,
		Out:          os.Stdout,
		lastFrame:    -1,
		lastProgress: -1,
	}, nil
}

// Start issues the configured load. With a threaded folder load it returns
// before any frame is decoded.
func (p *Player) Start() error {
	p.lastFrame = -1
	p.lastProgress = -1
	p.written = 0

	if r := p.Config.Range; r != nil {
		return p.Seq.LoadRange(r.Prefix, r.Filetype, r.Start, r.End, r.Digits)
	}
	return p.Seq.LoadFolder(p.Config.Folder)
}

// Tick advances playback to elapsed seconds since the load completed. It
// reports done once the configured number of loops has been played.
func (p *Player) Tick(elapsed float64) (done bool, err error) {
	completed, err := p.Seq.Update()
	if err != nil {
		return true, err
	}
	if completed {
		fmt.Fprintf(p.Out, "[*] Loaded %d frames (%dx%d)\n", p.Seq.TotalFrames(), p.Seq.Width(), p.Seq.Height())
	}
	if p.Seq.Job() != nil {
		p.reportProgress()
		return false, nil
	}
	if !p.Seq.IsLoaded() {
		return true, sequence.ErrNotLoaded
	}

	fps := p.Seq.FrameRate()
	length := p.Seq.LengthInSeconds()
	if p.Config.Loops > 0 && elapsed >= float64(p.Config.Loops)*length-0.5/fps {
		return true, nil
	}

	// Sample the middle of the frame interval so rounding never lands on
	// the previous frame.
	tex := p.Seq.TextureForTime(elapsed + 0.5/fps)
	img := tex.Image()
	if img == nil || p.Sink == nil {
		return false, nil
	}

	frame := p.Seq.CurrentFrame()
	if p.OnlyChanges && frame == p.lastFrame {
		return false, nil
	}
	p.lastFrame = frame

	if err := p.Sink.WriteFrame(img); err != nil {
		return true, fmt.Errorf("frame %d: %w", frame, err)
	}
	p.written++
	return false, nil
}

func (p *Player) reportProgress() {
	pct := int(p.Seq.PercentLoaded() * 100)
	if pct/10 == p.lastProgress/10 && p.lastProgress >= 0 {
		return
	}
	p.lastProgress = pct
	fmt.Fprintf(p.Out, "[>] Loading: %d%%\n", pct)
}

// Written is the number of frames handed to the sink.
func (p *Player) Written() int { return p.written }

// Run starts the load and ticks at the frame rate until playback is done or
// ctx is cancelled. The playback clock starts once loading has finished, and
// advances one frame per tick.
func (p *Player) Run(ctx context.Context) error {
	startTime := time.Now()
	if err := p.Start(); err != nil {
		return err
	}

	fps := p.Seq.FrameRate()
	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	played := 0
	for {
		done, err := p.Tick(float64(played) / fps)
		if err != nil {
			return err
		}
		if done {
			break
		}
		if p.Seq.Job() == nil {
			played++
		}

		select {
		case <-ctx.Done():
			p.Seq.CancelLoad()
			return ctx.Err()
		case <-ticker.C:
		}
	}

	fmt.Fprintf(p.Out, "[*] Played %d frames in %.2fs\n", p.written, time.Since(startTime).Seconds())
	return nil
}
