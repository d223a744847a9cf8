package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Lister enumerates the frame files of a folder in a stable order.
type Lister interface {
	List(folder, ext string) ([]string, error)
}

// DirLister lists regular, non-hidden files of a directory sorted by name.
// An empty ext lists every file; otherwise the match is case-insensitive
// and a leading dot is optional.
type DirLister struct{}

func (DirLister) List(folder, ext string) ([]string, error) {
	fi, err := os.Stat(folder)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
		}
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrFolderNotFound, folder)
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}

	want := normalizeExt(ext)
	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if want != "" && normalizeExt(filepath.Ext(name)) != want {
			continue
		}
		paths = append(paths, filepath.Join(folder, name))
	}
	sort.Strings(paths)

	return paths, nil
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
