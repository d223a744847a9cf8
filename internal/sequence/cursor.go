package sequence

import (
	"fmt"
	"math"
)

// TotalFrames is the catalog size; 0 while a background load owns the catalog.
func (s *Sequence) TotalFrames() int {
	if s.job != nil {
		return 0
	}
	return len(s.frames)
}

// LengthInSeconds is the sequence duration at the current frame rate.
func (s *Sequence) LengthInSeconds() float64 {
	return float64(s.TotalFrames()) / s.opts.FrameRate
}

// FrameIndexAtPercent maps percent to a frame index. Values outside [0,1]
// wrap around, so playback loops.
func (s *Sequence) FrameIndexAtPercent(percent float64) (int, error) {
	total := s.TotalFrames()
	if total == 0 {
		return 0, s.report("FrameIndexAtPercent", ErrEmptySequence)
	}
	return frameIndexAtPercent(percent, total), nil
}

func frameIndexAtPercent(percent float64, total int) int {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		return 0
	}
	if percent < 0 || percent > 1 {
		percent -= math.Floor(percent)
	}
	return min(int(percent*float64(total)), total-1)
}

// PercentAtFrameIndex maps index linearly from [0,total-1] to [0,1].
func (s *Sequence) PercentAtFrameIndex(index int) (float64, error) {
	total := s.TotalFrames()
	if total == 0 {
		return 0, s.report("PercentAtFrameIndex", ErrEmptySequence)
	}
	return percentAtFrameIndex(index, total), nil
}

func percentAtFrameIndex(index, total int) float64 {
	if total < 2 {
		return 0
	}
	p := float64(index) / float64(total-1)
	return math.Max(0, math.Min(1, p))
}

// SetFrame makes index resident; indices past the end wrap around.
func (s *Sequence) SetFrame(index int) error {
	if s.job != nil {
		return s.report("SetFrame", ErrLoadInProgress)
	}
	if !s.loaded {
		return s.report("SetFrame", ErrNotLoaded)
	}
	if index < 0 {
		return s.report("SetFrame", fmt.Errorf("%w: %d", ErrNegativeIndex, index))
	}
	return s.loadFrame(index % len(s.frames))
}

// SetFrameForTime selects the frame shown seconds into playback.
func (s *Sequence) SetFrameForTime(seconds float64) error {
	if s.job != nil {
		return s.report("SetFrameForTime", ErrLoadInProgress)
	}
	total := s.TotalFrames()
	if total == 0 {
		return s.report("SetFrameForTime", ErrEmptySequence)
	}
	duration := float64(total) / s.opts.FrameRate
	return s.SetFrameAtPercent(seconds / duration)
}

func (s *Sequence) SetFrameAtPercent(percent float64) error {
	if s.job != nil {
		return s.report("SetFrameAtPercent", ErrLoadInProgress)
	}
	index, err := s.FrameIndexAtPercent(percent)
	if err != nil {
		return err
	}
	return s.SetFrame(index)
}
