package task

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/crafted-tech/selfinstall/archive"
	"github.com/crafted-tech/selfinstall/platform"
)

// MenuShortcut adds an entry to the start menu (or the desktop entry
// directory on Linux). Target is the entry's location below the menu root,
// LinkTarget the command it launches; a program path with spaces must be
// quoted and may be followed by arguments.
type MenuShortcut struct {
	Target      string
	LinkTarget  string
	Description string

	root string
	path string
}

// NewMenuShortcut returns a task that creates a menu entry at target
// launching linkTarget.
func NewMenuShortcut(target, linkTarget, description string) *MenuShortcut {
	return &MenuShortcut{Target: target, LinkTarget: linkTarget, Description: description}
}

func (m *MenuShortcut) Kind() Kind { return KindMenuShortcut }

// Describe returns a short summary.
func (m *MenuShortcut) Describe() string {
	return fmt.Sprintf("Shortcut %s -> %s", m.Target, m.LinkTarget)
}

// Path returns the shortcut file after execution.
func (m *MenuShortcut) Path() string { return m.path }

// WriteToInstaller writes the entry location, the command and the
// description.
func (m *MenuShortcut) WriteToInstaller(w io.Writer) error {
	if err := archive.AppendString(w, m.Target); err != nil {
		return err
	}
	if err := archive.AppendString(w, m.LinkTarget); err != nil {
		return err
	}
	return archive.AppendString(w, m.Description)
}

// MenuRoot returns the start menu directory for all users or the current
// user.
func MenuRoot(allUsers bool) (string, error) {
	if allUsers {
		return platform.StartMenuPath()
	}
	return platform.UserStartMenuPath()
}

// ReadAndExecuteFromInstaller creates the shortcut below the menu root that
// matches the AllUsers variable.
func (m *MenuShortcut) ReadAndExecuteFromInstaller(env Env, r io.Reader) error {
	target, err := archive.RetrieveString(r)
	if err != nil {
		return fmt.Errorf("shortcut location: %w", err)
	}
	linkTarget, err := archive.RetrieveString(r)
	if err != nil {
		return fmt.Errorf("shortcut target: %w", err)
	}
	description, err := archive.RetrieveString(r)
	if err != nil {
		return fmt.Errorf("shortcut description: %w", err)
	}
	m.Target = env.ReplaceVariables(target)
	m.LinkTarget = env.ReplaceVariables(linkTarget)
	m.Description = env.ReplaceVariables(description)

	root, err := MenuRoot(env.Value("AllUsers") == "true")
	if err != nil {
		return fmt.Errorf("locate start menu: %w", err)
	}
	path := filepath.Join(root, filepath.FromSlash(m.Target))
	if filepath.Ext(path) != platform.ShortcutExt {
		path += platform.ShortcutExt
	}
	env.SetProgressText("Creating shortcut " + path)

	m.root = root
	if _, err := makeParentDirs(path); err != nil {
		return err
	}
	m.path = path

	program, args := platform.SplitCommand(m.LinkTarget)
	err = platform.CreateShortcut(path, platform.Shortcut{
		Target:      filepath.FromSlash(program),
		Arguments:   args,
		Description: m.Description,
	})
	if err != nil {
		return fmt.Errorf("create shortcut %s: %w", path, err)
	}
	return nil
}

// WriteToUninstaller writes the menu root and the shortcut file.
func (m *MenuShortcut) WriteToUninstaller(w io.Writer) error {
	if err := archive.AppendString(w, m.root); err != nil {
		return err
	}
	return archive.AppendString(w, m.path)
}

// ReadAndExecuteFromUninstaller removes the shortcut recorded at install
// time, under the root that was current then.
func (m *MenuShortcut) ReadAndExecuteFromUninstaller(env Env, r io.Reader) error {
	root, err := archive.RetrieveString(r)
	if err != nil {
		return fmt.Errorf("shortcut root: %w", err)
	}
	path, err := archive.RetrieveString(r)
	if err != nil {
		return fmt.Errorf("shortcut path: %w", err)
	}
	m.root, m.path = root, path
	env.SetProgressText("Removing shortcut " + path)
	return m.Undo()
}

// Undo deletes the shortcut and every directory left empty between it and
// the menu root.
func (m *MenuShortcut) Undo() error {
	if m.path == "" {
		return nil
	}
	if err := platform.DeleteShortcut(m.path); err != nil {
		return fmt.Errorf("remove shortcut %s: %w", m.path, err)
	}
	if m.root != "" {
		pruneEmptyDirs(filepath.Dir(m.path), m.root)
	}
	return nil
}
