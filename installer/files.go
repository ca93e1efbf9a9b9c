package installer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// StepDeleteDirIfEmpty creates a Step that deletes a directory if it's empty.
// Skips if the directory doesn't exist or is not empty.
func StepDeleteDirIfEmpty(path string) Step {
	return Step{
		Name:     fmt.Sprintf("Remove %s", filepath.Base(path)),
		Optional: true,
		Action: func() StepResult {
			entries, err := os.ReadDir(path)
			if os.IsNotExist(err) {
				return Skipped("not found")
			}
			if err != nil {
				return Failed(err)
			}
			if len(entries) > 0 {
				return Skipped("not empty")
			}
			if err := os.Remove(path); err != nil {
				return Failed(err)
			}
			return Success("")
		},
	}
}

// copyExecutable copies src to dst with mode 0755, replacing dst.
func copyExecutable(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer srcFile.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	_ = os.Remove(dst)

	dstFile, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return fmt.Errorf("copy content: %w", err)
	}
	return dstFile.Close()
}

// DirExists returns true if the directory exists.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
