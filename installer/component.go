package installer

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/crafted-tech/selfinstall/archive"
	"github.com/crafted-tech/selfinstall/task"
)

// Component states used by SuggestedState, WantedState and CurrentState.
const (
	StateAlwaysInstalled = "AlwaysInstalled"
	StateInstalled       = "Installed"
	StateUninstalled     = "Uninstalled"
)

// Component variable names.
const (
	VarName             = "Name"
	VarDisplayName      = "DisplayName"
	VarDescription      = "Description"
	VarSuggestedState   = "SuggestedState"
	VarWantedState      = "WantedState"
	VarCurrentState     = "CurrentState"
	VarTaskCount        = "TaskCount"
	VarComponentStart   = "ComponentStart"
	VarCompressedSize   = "CompressedSize"
	VarUncompressedSize = "UncompressedSize"
)

// Component is an independently selectable bundle of tasks with its own
// variables. Tasks are only populated while an archive is being built; an
// archived component loads them from the image when it is installed.
type Component struct {
	in    *Installer
	vars  archive.Dictionary
	tasks []task.Task
}

func newComponent(in *Installer, vars archive.Dictionary) *Component {
	if vars == nil {
		vars = archive.Dictionary{}
	}
	return &Component{in: in, vars: vars}
}

// Value returns a component variable.
func (c *Component) Value(key string) string { return c.vars.Value(key) }

// SetValue sets a component variable.
func (c *Component) SetValue(key, value string) { c.vars.SetValue(key, value) }

// Variables returns a copy of the component variables.
func (c *Component) Variables() archive.Dictionary { return c.vars.Clone() }

func (c *Component) Name() string        { return c.vars.Value(VarName) }
func (c *Component) DisplayName() string { return c.vars.Value(VarDisplayName) }
func (c *Component) Description() string { return c.vars.Value(VarDescription) }

func (c *Component) SetDisplayName(s string) { c.vars.SetValue(VarDisplayName, s) }
func (c *Component) SetDescription(s string) { c.vars.SetValue(VarDescription, s) }

// SuggestedState defaults to Installed.
func (c *Component) SuggestedState() string {
	if s := c.vars.Value(VarSuggestedState); s != "" {
		return s
	}
	return StateInstalled
}

func (c *Component) SetSuggestedState(s string) { c.vars.SetValue(VarSuggestedState, s) }

// WantedState is the user's choice. Empty means "use the suggested state".
func (c *Component) WantedState() string     { return c.vars.Value(VarWantedState) }
func (c *Component) SetWantedState(s string) { c.vars.SetValue(VarWantedState, s) }

func (c *Component) CurrentState() string     { return c.vars.Value(VarCurrentState) }
func (c *Component) SetCurrentState(s string) { c.vars.SetValue(VarCurrentState, s) }

// IsSelected reports whether the component will be installed. Components
// suggested as AlwaysInstalled cannot be deselected.
func (c *Component) IsSelected() bool {
	if c.SuggestedState() == StateAlwaysInstalled {
		return true
	}
	state := c.WantedState()
	if state == "" {
		state = c.SuggestedState()
	}
	return state != StateUninstalled
}

// Tasks returns the tasks appended while building.
func (c *Component) Tasks() []task.Task { return c.tasks }

// TaskCount returns the archived task count, or the number of appended tasks
// while building.
func (c *Component) TaskCount() int64 {
	if c.vars.Contains(VarTaskCount) {
		return c.intValue(VarTaskCount)
	}
	return int64(len(c.tasks))
}

// UncompressedSize returns the archived size of the task stream.
func (c *Component) UncompressedSize() int64 { return c.intValue(VarUncompressedSize) }

func (c *Component) intValue(key string) int64 {
	n, err := strconv.ParseInt(c.vars.Value(key), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (c *Component) setIntValue(key string, n int64) {
	c.vars.SetValue(key, strconv.FormatInt(n, 10))
}

// AppendTask appends t. Archive order is execution order.
func (c *Component) AppendTask(t task.Task) {
	c.tasks = append(c.tasks, t)
}

// AppendSettingsTask appends a task that stores key=value in the product
// settings.
func (c *Component) AppendSettingsTask(key, value string) {
	c.AppendTask(task.NewWriteSettings(key, value))
}

// AppendDirectoryTasks appends a CopyFile task for every regular file below
// source and a LinkFile task for every symlink, all copies first. Variables
// in source are expanded now; target keeps its placeholders for install
// time. Link targets are stored relative to the link's directory.
func (c *Component) AppendDirectoryTasks(source, target string) error {
	root := filepath.Clean(c.in.ReplaceVariables(source))
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", root)
	}

	var copies, links []task.Task
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		dst := path.Join(target, filepath.ToSlash(rel))

		info, err := os.Lstat(p)
		if err != nil {
			return err
		}
		switch mode := info.Mode(); {
		case mode.IsRegular():
			copies = append(copies, task.NewCopyFile(p, dst, mode.Perm()))
		case mode&fs.ModeSymlink != 0:
			linkTarget, err := os.Readlink(p)
			if err != nil {
				return err
			}
			if filepath.IsAbs(linkTarget) {
				if linkTarget, err = filepath.Rel(filepath.Dir(p), linkTarget); err != nil {
					return err
				}
			}
			links = append(links, task.NewLinkFile(dst, filepath.ToSlash(linkTarget), mode.Perm()))
		default:
			c.in.log.Debug("Skipping special file %s", p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}

	c.tasks = append(c.tasks, copies...)
	c.tasks = append(c.tasks, links...)
	return nil
}
