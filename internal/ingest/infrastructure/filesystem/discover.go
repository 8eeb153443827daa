package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DefaultPattern matches CSV exports.
const DefaultPattern = "*.csv"

// ErrInputDirMissing is returned when the input directory does not exist.
var ErrInputDirMissing = errors.New("filesystem: input directory missing")

// Discover lists regular files in dir matching pattern, sorted by path.
func Discover(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrInputDirMissing, dir)
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInputDirMissing, dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(matches))
	for _, match := range matches {
		stat, err := os.Stat(match)
		if err != nil || !stat.Mode().IsRegular() {
			continue
		}
		paths = append(paths, match)
	}
	sort.Strings(paths)
	return paths, nil
}
