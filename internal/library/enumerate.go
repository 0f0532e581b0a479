package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

var (
	ErrRootNotFound = errors.New("directory does not exist")
	ErrNotDirectory = errors.New("not a directory")
)

// DefaultExtensions lists the audio container and codec formats that are
// considered for comparison.
var DefaultExtensions = []string{
	".aiff", ".aif", ".aifc",
	".ape", ".apl",
	".bwf",
	".flac",
	".mp3", ".mp4",
	".m4a", ".m4b", ".m4p", ".m4r",
	".mpc",
	".ogg",
	".tta",
	".wma",
	".wv",
}

// Extensions is an allow-list of file extensions. Matching is case-sensitive.
type Extensions map[string]bool

// NewExtensions builds an allow-list from exts, or from DefaultExtensions
// when exts is empty.
func NewExtensions(exts []string) Extensions {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(Extensions, len(exts))
	for _, ext := range exts {
		set[ext] = true
	}
	return set
}

// Allowed reports whether path has an allowed extension.
func (e Extensions) Allowed(path string) bool {
	return e[filepath.Ext(path)]
}

// WarnFunc receives entries that could not be read during a walk.
type WarnFunc func(path string, err error)

// Enumerate recursively finds all audio files under root. Unreadable
// subdirectories are reported to warn and skipped. The returned paths are
// in walk order.
func Enumerate(fs afero.Fs, root string, exts Extensions, warn WarnFunc) ([]string, error) {
	if root == "" {
		return nil, fmt.Errorf("directory path cannot be empty")
	}

	info, err := fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	var files []string

	err = afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("failed to read %s: %w", root, err)
			}
			if warn != nil {
				warn(path, err)
			}
			return nil
		}

		if !info.IsDir() && exts.Allowed(path) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", root, err)
	}

	return files, nil
}
