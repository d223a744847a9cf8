// Package catalog resolves a sequence description into the ordered list of
// frame files, one per logical frame index.
package catalog

import (
	"fmt"

	"github.com/ivlev/imgseq/internal/pixels"
)

// Range builds paths like prefix + index + "." + filetype for start..end
// inclusive. With digits > 0 the index is zero-padded to that width:
//
//	Range("myImage", "jpg", 4, 7, 3, pixels.Uint8)
//	// myImage004.jpg myImage005.jpg myImage006.jpg myImage007.jpg
func Range(prefix, filetype string, start, end, digits int, kind pixels.Kind) ([]string, error) {
	if end < start {
		return nil, fmt.Errorf("%w: %d..%d", ErrEmptyRange, start, end)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPixelFormat, kind)
	}

	paths := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		if digits > 0 {
			paths = append(paths, fmt.Sprintf("%s%0*d.%s", prefix, digits, i, filetype))
		} else {
			paths = append(paths, fmt.Sprintf("%s%d.%s", prefix, i, filetype))
		}
	}
	return paths, nil
}

// Folder lists folder through l, keeping at most maxFrames entries when
// maxFrames > 0.
func Folder(l Lister, folder, ext string, maxFrames int, kind pixels.Kind) ([]string, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPixelFormat, kind)
	}

	paths, err := l.List(folder, ext)
	if err != nil {
		return nil, err
	}
	if maxFrames > 0 && len(paths) > maxFrames {
		paths = paths[:maxFrames]
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFilesFound, folder)
	}
	return paths, nil
}
