package catalog

import "errors"

var (
	ErrEmptyRange             = errors.New("end index precedes start index")
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")
	ErrFolderNotFound         = errors.New("folder not found")
	ErrNoFilesFound           = errors.New("no image files found")
)
