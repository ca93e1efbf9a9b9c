package task

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/crafted-tech/selfinstall/archive"
)

// CopyFile installs one file. Its content is embedded in the archive.
type CopyFile struct {
	// Source is read while the archive is built. It is not archived.
	Source string
	// Target may contain @Variable@ placeholders.
	Target string
	// Permissions are the POSIX permission bits to restore on the copy.
	Permissions os.FileMode

	path        string
	dir         string
	createdDirs int64
}

// NewCopyFile returns a task that installs source as target.
func NewCopyFile(source, target string, perm os.FileMode) *CopyFile {
	return &CopyFile{Source: source, Target: target, Permissions: perm.Perm()}
}

func (c *CopyFile) Kind() Kind { return KindCopyFile }

// Describe returns a short summary.
func (c *CopyFile) Describe() string {
	if c.path != "" {
		return "Copy " + c.path
	}
	return "Copy " + c.Target
}

// Path returns the resolved target after execution.
func (c *CopyFile) Path() string { return c.path }

// WriteToInstaller writes the target, the permissions and the file content.
func (c *CopyFile) WriteToInstaller(w io.Writer) error {
	src, err := os.Open(c.Source)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	perm := c.Permissions
	if perm == 0 {
		perm = info.Mode().Perm()
	}

	if err := archive.AppendString(w, c.Target); err != nil {
		return err
	}
	if err := archive.AppendInt(w, int64(perm)); err != nil {
		return err
	}
	if err := archive.AppendInt(w, info.Size()); err != nil {
		return err
	}
	if n, err := io.CopyN(w, src, info.Size()); err != nil {
		return fmt.Errorf("archive %s (%d of %d bytes): %w", c.Source, n, info.Size(), err)
	}
	return nil
}

// ReadAndExecuteFromInstaller creates the target file from the archive.
func (c *CopyFile) ReadAndExecuteFromInstaller(env Env, r io.Reader) error {
	target, err := archive.RetrieveString(r)
	if err != nil {
		return fmt.Errorf("copy file target: %w", err)
	}
	perm, err := archive.RetrieveInt(r)
	if err != nil {
		return fmt.Errorf("copy file permissions: %w", err)
	}
	size, err := archive.RetrieveInt(r)
	if err != nil {
		return fmt.Errorf("copy file size: %w", err)
	}
	if size < 0 {
		return fmt.Errorf("copy file size %d: %w", size, archive.ErrCorrupt)
	}

	c.Target = target
	c.Permissions = os.FileMode(perm).Perm()
	path := filepath.Clean(filepath.FromSlash(env.ReplaceVariables(target)))
	env.SetProgressText("Copying " + path)

	c.dir = filepath.Dir(path)
	created, err := makeParentDirs(path)
	c.createdDirs = created
	if err != nil {
		return err
	}

	dst, err := openForWrite(path)
	if err != nil {
		return err
	}
	c.path = path

	if n, err := io.CopyN(dst, r, size); err != nil {
		dst.Close()
		return fmt.Errorf("write %s (%d of %d bytes): %w", path, n, size, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(path, c.Permissions|ownerWrite); err != nil {
		return fmt.Errorf("set permissions on %s: %w", path, err)
	}
	return nil
}

// WriteToUninstaller writes the resolved path, permissions and the number of
// directories created for it.
func (c *CopyFile) WriteToUninstaller(w io.Writer) error {
	if err := archive.AppendString(w, c.path); err != nil {
		return err
	}
	if err := archive.AppendInt(w, int64(c.Permissions)); err != nil {
		return err
	}
	return archive.AppendInt(w, c.createdDirs)
}

// ReadAndExecuteFromUninstaller removes the file recorded at install time.
func (c *CopyFile) ReadAndExecuteFromUninstaller(env Env, r io.Reader) error {
	path, err := archive.RetrieveString(r)
	if err != nil {
		return fmt.Errorf("copy file path: %w", err)
	}
	perm, err := archive.RetrieveInt(r)
	if err != nil {
		return fmt.Errorf("copy file permissions: %w", err)
	}
	created, err := archive.RetrieveInt(r)
	if err != nil {
		return fmt.Errorf("copy file directory count: %w", err)
	}
	c.path = path
	c.dir = filepath.Dir(path)
	c.Permissions = os.FileMode(perm).Perm()
	c.createdDirs = created
	env.SetProgressText("Removing " + path)
	return c.Undo()
}

// Undo deletes the file and the directories created for it.
func (c *CopyFile) Undo() error {
	if c.path != "" {
		if err := removeFile(c.path); err != nil {
			return err
		}
	}
	if c.dir != "" {
		removeCreatedDirs(c.dir, c.createdDirs)
	}
	return nil
}
