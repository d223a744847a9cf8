package sequence

import "github.com/ivlev/imgseq/internal/pixels"

type frameState int

const (
	stateNotAttempted frameState = iota
	stateDecoded
	stateFailed
)

// frame is one catalog entry. A failed frame is never retried and a decoded
// one is never decoded again until the sequence is unloaded.
type frame struct {
	path  string
	state frameState
	buf   *pixels.Buffer
}

func newFrames(paths []string) []frame {
	frames := make([]frame, len(paths))
	for i, p := range paths {
		frames[i] = frame{path: p}
	}
	return frames
}
