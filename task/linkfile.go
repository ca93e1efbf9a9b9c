package task

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/crafted-tech/selfinstall/archive"
)

// LinkFile creates a symbolic link at Target pointing to LinkTarget.
type LinkFile struct {
	Target      string
	LinkTarget  string
	Permissions os.FileMode

	path        string
	dir         string
	createdDirs int64
}

// NewLinkFile returns a task that creates target as a link to linkTarget.
func NewLinkFile(target, linkTarget string, perm os.FileMode) *LinkFile {
	return &LinkFile{Target: target, LinkTarget: linkTarget, Permissions: perm.Perm()}
}

func (l *LinkFile) Kind() Kind { return KindLinkFile }

// Describe returns a short summary.
func (l *LinkFile) Describe() string {
	return fmt.Sprintf("Link %s -> %s", l.Target, l.LinkTarget)
}

func (l *LinkFile) writeFields(w io.Writer, target string) error {
	if err := archive.AppendString(w, target); err != nil {
		return err
	}
	if err := archive.AppendString(w, l.LinkTarget); err != nil {
		return err
	}
	return archive.AppendInt(w, int64(l.Permissions))
}

func (l *LinkFile) readFields(r io.Reader) (string, error) {
	target, err := archive.RetrieveString(r)
	if err != nil {
		return "", fmt.Errorf("link path: %w", err)
	}
	linkTarget, err := archive.RetrieveString(r)
	if err != nil {
		return "", fmt.Errorf("link target: %w", err)
	}
	perm, err := archive.RetrieveInt(r)
	if err != nil {
		return "", fmt.Errorf("link permissions: %w", err)
	}
	l.LinkTarget = linkTarget
	l.Permissions = os.FileMode(perm).Perm()
	return target, nil
}

// WriteToInstaller writes the link location, its target and permissions.
func (l *LinkFile) WriteToInstaller(w io.Writer) error {
	return l.writeFields(w, l.Target)
}

// ReadAndExecuteFromInstaller creates the link, replacing whatever file
// already sits at its location.
func (l *LinkFile) ReadAndExecuteFromInstaller(env Env, r io.Reader) error {
	target, err := l.readFields(r)
	if err != nil {
		return err
	}
	l.Target = target
	path := filepath.Clean(filepath.FromSlash(env.ReplaceVariables(target)))
	linkTarget := filepath.FromSlash(env.ReplaceVariables(l.LinkTarget))
	env.SetProgressText("Linking " + path)

	l.dir = filepath.Dir(path)
	created, err := makeParentDirs(path)
	l.createdDirs = created
	if err != nil {
		return err
	}
	if err := os.Symlink(linkTarget, path); err != nil {
		_ = os.Remove(path)
		if err := os.Symlink(linkTarget, path); err != nil {
			return fmt.Errorf("create link %s pointing to %s: %w", path, linkTarget, err)
		}
	}
	l.path = path
	l.LinkTarget = linkTarget
	return nil
}

// WriteToUninstaller writes the resolved link location and the number of
// directories created for it.
func (l *LinkFile) WriteToUninstaller(w io.Writer) error {
	if err := l.writeFields(w, l.path); err != nil {
		return err
	}
	return archive.AppendInt(w, l.createdDirs)
}

// ReadAndExecuteFromUninstaller removes the link and its created directories.
func (l *LinkFile) ReadAndExecuteFromUninstaller(env Env, r io.Reader) error {
	path, err := l.readFields(r)
	if err != nil {
		return err
	}
	created, err := archive.RetrieveInt(r)
	if err != nil {
		return fmt.Errorf("link directory count: %w", err)
	}
	l.path = path
	l.dir = filepath.Dir(path)
	l.createdDirs = created
	env.SetProgressText("Removing " + path)
	return l.Undo()
}

// Undo deletes the link and the directories created for it. A missing link
// is not an error.
func (l *LinkFile) Undo() error {
	if l.path != "" {
		if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove link %s: %w", l.path, err)
		}
	}
	if l.dir != "" {
		removeCreatedDirs(l.dir, l.createdDirs)
	}
	return nil
}
