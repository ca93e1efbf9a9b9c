package task

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ownerWrite is always set on installed files.
const ownerWrite = 0o200

// makeParentDirs creates the missing ancestors of path and returns how many
// directories it created.
func makeParentDirs(path string) (int64, error) {
	var missing []string
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(dir); err == nil {
			break
		} else if !errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("stat %s: %w", dir, err)
		}
		missing = append(missing, dir)
		if parent := filepath.Dir(dir); parent == dir {
			break
		}
	}

	var created int64
	for i := len(missing) - 1; i >= 0; i-- {
		err := os.Mkdir(missing[i], 0o755)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("create directory %s: %w", missing[i], err)
		}
		created++
	}
	return created, nil
}

// openForWrite opens path for writing, truncating it. A write-protected
// existing file is first made writable, then deleted, before giving up.
func openForWrite(path string) (*os.File, error) {
	const flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	f, err := os.OpenFile(path, flags, 0o644)
	if err == nil {
		return f, nil
	}
	firstErr := err

	if info, statErr := os.Lstat(path); statErr == nil {
		if chmodErr := os.Chmod(path, info.Mode().Perm()|ownerWrite); chmodErr == nil {
			if f, err = os.OpenFile(path, flags, 0o644); err == nil {
				return f, nil
			}
		}
		if rmErr := os.Remove(path); rmErr == nil {
			if f, err = os.OpenFile(path, flags, 0o644); err == nil {
				return f, nil
			}
		}
	}
	return nil, fmt.Errorf("open %s for writing: %w", path, firstErr)
}

// removeFile deletes path, retrying once after making it writable. A missing
// file is not an error.
func removeFile(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if chmodErr := os.Chmod(path, 0o666); chmodErr == nil {
		if err = os.Remove(path); err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}
	return fmt.Errorf("remove %s: %w", path, err)
}

// removeCreatedDirs removes up to count directories, starting at dir and
// walking upward. It stops at the first directory that is not empty or cannot
// be removed.
func removeCreatedDirs(dir string, count int64) {
	for ; count > 0; count-- {
		if err := os.Remove(dir); err != nil {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// pruneEmptyDirs removes empty directories from dir upward, never touching
// root or anything outside it.
func pruneEmptyDirs(dir, root string) {
	root = filepath.Clean(root)
	for dir = filepath.Clean(dir); dir != root; dir = filepath.Dir(dir) {
		rel, err := filepath.Rel(root, dir)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
	}
}
