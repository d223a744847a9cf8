package sequence

import "errors"

var (
	ErrIndexOutOfRange  = errors.New("frame index out of range")
	ErrFrameDecode      = errors.New("frame failed to decode")
	ErrNotLoaded        = errors.New("sequence is not loaded")
	ErrNegativeIndex    = errors.New("negative frame index")
	ErrEmptySequence    = errors.New("sequence has no frames")
	ErrConfigLocked     = errors.New("configuration must be set before load")
	ErrLoadInProgress   = errors.New("background load in progress")
	ErrInvalidFrameRate = errors.New("frame rate must be positive")
)
