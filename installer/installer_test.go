package installer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crafted-tech/selfinstall/archive"
	"github.com/crafted-tech/selfinstall/platform"
	"github.com/crafted-tech/selfinstall/task"
)

var fakeCode = []byte("\x7fELF pretend this is machine code\x00\x01\x02")

type fakeRegistrar struct {
	mu      sync.Mutex
	entries map[string]platform.AppInfo
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{entries: map[string]platform.AppInfo{}}
}

func (r *fakeRegistrar) Register(key string, _ bool, info platform.AppInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = info
	return nil
}

func (r *fakeRegistrar) Unregister(key string, _ bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
	return nil
}

func (r *fakeRegistrar) Find(key string, _ bool) (*platform.AppInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.entries[key]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

// buildInstaller runs a creator over product and returns the installer path.
func buildInstaller(t *testing.T, product Product, vars map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	creatorPath := filepath.Join(dir, "creator")
	require.NoError(t, os.WriteFile(creatorPath, fakeCode, 0o755))
	output := filepath.Join(dir, "setup")

	all := map[string]string{VarOutputFile: output}
	for k, v := range vars {
		all[k] = v
	}
	in, err := New(product, WithImagePath(creatorPath), WithVariables(all))
	require.NoError(t, err)
	defer in.Close()
	require.Equal(t, archive.RoleCreator, in.Role())

	require.NoError(t, in.Run(context.Background()))
	require.Equal(t, StatusSucceeded, in.Status())
	return output
}

func openImage(t *testing.T, path string, opts ...Option) *Installer {
	t.Helper()
	in, err := New(nil, append([]Option{WithImagePath(path)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { in.Close() })
	return in
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEndToEnd(t *testing.T) {
	src := writeFile(t, filepath.Join(t.TempDir(), "hello.txt"), "hi")
	setup := buildInstaller(t, ProductFunc(func(in *Installer) error {
		c := in.AddComponent("core")
		c.AppendTask(task.NewCopyFile(src, "@TargetDir@/out.txt", 0))
		return nil
	}), map[string]string{VarProductName: "Demo", VarVersion: "1.0"})

	data, err := os.ReadFile(setup)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, fakeCode), "installer starts with the creator's code")

	target := filepath.Join(t.TempDir(), "x")
	reg := newFakeRegistrar()
	var events []EventType
	in := openImage(t, setup,
		WithVariables(map[string]string{VarTargetDir: target}),
		WithRegistrar(reg),
		WithListener(func(e Event) {
			if e.Type != ProgressChanged {
				events = append(events, e.Type)
			}
		}))
	require.Equal(t, archive.RoleInstaller, in.Role())
	require.Equal(t, "Demo", in.Value(VarProductName))

	require.NoError(t, in.Run(context.Background()))
	require.Equal(t, StatusSucceeded, in.Status())
	require.Equal(t, 100, in.InstallationProgress())
	require.Equal(t, []EventType{InstallationStarted, InstallationFinished}, events)
	require.Equal(t, StateInstalled, in.Component("core").CurrentState())

	out, err := os.ReadFile(filepath.Join(target, "out.txt"))
	require.NoError(t, err)
	require.Equal(t, "hi", string(out))

	uninstallerPath := in.UninstallerPath()
	require.Equal(t, target, filepath.Dir(uninstallerPath))
	info, ok := reg.entries["Demo"]
	require.True(t, ok)
	require.Equal(t, target, info.InstallLocation)
	require.Equal(t, "1.0", info.DisplayVersion)
	require.True(t, info.NoModify)

	un := openImage(t, uninstallerPath, WithRegistrar(reg))
	require.Equal(t, archive.RoleUninstaller, un.Role())
	require.Equal(t, target, un.Value(VarTargetDir))
	require.Empty(t, un.Components())
	un.relocate = nil

	require.NoError(t, un.Run(context.Background()))
	require.Equal(t, StatusSucceeded, un.Status())

	_, err = os.Stat(filepath.Join(target, "out.txt"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(uninstallerPath)
	require.True(t, os.IsNotExist(err), "uninstaller removes itself")
	_, err = os.Stat(target)
	require.True(t, os.IsNotExist(err), "created target directory is removed")
	require.Empty(t, reg.entries)
}

func TestUninstallRemovesLinkOnlyDirs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "bin", "real"), "real")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "lib"), 0o755))
	require.NoError(t, os.Symlink("../bin/real", filepath.Join(src, "lib", "link")))

	setup := buildInstaller(t, ProductFunc(func(in *Installer) error {
		return in.AddComponent("core").AppendDirectoryTasks(src, "@TargetDir@")
	}), map[string]string{VarProductName: "Links"})

	target := filepath.Join(t.TempDir(), "x")
	reg := newFakeRegistrar()
	in := openImage(t, setup, WithVariables(map[string]string{VarTargetDir: target}), WithRegistrar(reg))
	require.NoError(t, in.Run(context.Background()))
	dest, err := os.Readlink(filepath.Join(target, "lib", "link"))
	require.NoError(t, err)
	require.Equal(t, filepath.FromSlash("../bin/real"), dest)

	un := openImage(t, in.UninstallerPath(), WithRegistrar(reg))
	un.relocate = nil
	require.NoError(t, un.Run(context.Background()))
	_, err = os.Stat(target)
	require.True(t, os.IsNotExist(err), "target directory is gone after uninstall")
}

func TestArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a"), "alpha")
	b := writeFile(t, filepath.Join(dir, "b"), "bravo")

	original := map[string][]task.Task{
		"first": {
			task.NewCopyFile(a, "@TargetDir@/a", 0o644),
			task.NewPatchFile("@TargetDir@/a", []byte("alp"), []byte("ALP")),
		},
		"empty": nil,
		"third": {task.NewCopyFile(b, "@TargetDir@/sub/b", 0o600)},
	}
	order := []string{"first", "empty", "third"}

	setup := buildInstaller(t, ProductFunc(func(in *Installer) error {
		for _, name := range order {
			c := in.AddComponent(name)
			c.SetDisplayName("Component " + name)
			c.SetValue("@Scratch", "dropped")
			for _, tk := range original[name] {
				c.AppendTask(tk)
			}
		}
		in.SetValue("@Temporary", "dropped")
		return nil
	}), map[string]string{VarProductName: "RoundTrip"})

	in := openImage(t, setup)
	require.Equal(t, archive.RoleInstaller, in.Role())
	require.Len(t, in.Components(), len(order))
	require.False(t, in.ContainsValue("@Temporary"))

	for i, c := range in.Components() {
		name := order[i]
		require.Equal(t, name, c.Name())
		require.Equal(t, "Component "+name, c.DisplayName())
		require.Empty(t, c.Value("@Scratch"))
		require.Equal(t, int64(len(original[name])), c.TaskCount())

		blob, err := in.image.ComponentBlob(
			c.intValue(VarComponentStart),
			c.intValue(VarCompressedSize),
			c.intValue(VarUncompressedSize),
		)
		require.NoError(t, err)
		want, err := encodeInstallStream(original[name])
		require.NoError(t, err)
		require.Equal(t, string(want), string(blob))
	}
}

func TestInstallFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a"), "A")
	b := writeFile(t, filepath.Join(dir, "b"), "B")
	c := writeFile(t, filepath.Join(dir, "c"), "C")

	setup := buildInstaller(t, ProductFunc(func(in *Installer) error {
		comp := in.AddComponent("core")
		comp.AppendTask(task.NewCopyFile(a, "@TargetDir@/a.txt", 0))
		comp.AppendTask(task.NewCopyFile(b, "@TargetDir@/nested/b.txt", 0))
		// a.txt is a file, so this parent directory can never be created.
		comp.AppendTask(task.NewCopyFile(c, "@TargetDir@/a.txt/c.txt", 0))
		return nil
	}), nil)

	target := filepath.Join(t.TempDir(), "x")
	reg := newFakeRegistrar()
	var finished Event
	var warnings []string
	in := openImage(t, setup,
		WithVariables(map[string]string{VarTargetDir: target, VarProductName: "Demo"}),
		WithRegistrar(reg),
		WithListener(func(e Event) {
			switch e.Type {
			case InstallationFinished:
				finished = e
			case Warning:
				warnings = append(warnings, e.Text)
			}
		}))

	err := in.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, StatusFailed, in.Status())
	require.Equal(t, StatusFailed, finished.Status)
	require.NotEmpty(t, warnings)

	for _, p := range []string{"a.txt", "nested/b.txt", "nested", "uninstall"} {
		_, err := os.Stat(filepath.Join(target, filepath.FromSlash(p)))
		require.True(t, os.IsNotExist(err), p)
	}
	_, err = os.Stat(target)
	require.True(t, os.IsNotExist(err), "target directory created by the install is removed")
	require.Empty(t, reg.entries)

	require.Error(t, in.Run(context.Background()), "a run happens once")
}

func TestSelectiveInstall(t *testing.T) {
	dir := t.TempDir()
	core := writeFile(t, filepath.Join(dir, "core"), "core")
	extra := writeFile(t, filepath.Join(dir, "extra"), "extra payload")

	setup := buildInstaller(t, ProductFunc(func(in *Installer) error {
		in.AddComponent("core").AppendTask(task.NewCopyFile(core, "@TargetDir@/core", 0))
		in.AddComponent("extra").AppendTask(task.NewCopyFile(extra, "@TargetDir@/extra", 0))
		return nil
	}), nil)

	target := t.TempDir()
	in := openImage(t, setup,
		WithVariables(map[string]string{VarTargetDir: target}),
		WithRegistrar(newFakeRegistrar()))

	skipped := in.Component("extra")
	skipped.SetWantedState(StateUninstalled)
	require.False(t, skipped.IsSelected())
	// Any attempt to read this component would now fail.
	skipped.SetValue(VarComponentStart, "-1")

	var progress []int
	in.Subscribe(func(e Event) {
		if e.Type == ProgressChanged {
			progress = append(progress, e.Progress)
		}
	})

	require.NoError(t, in.Run(context.Background()))
	require.FileExists(t, filepath.Join(target, "core"))
	require.NoFileExists(t, filepath.Join(target, "extra"))
	require.Contains(t, progress, 100)
	require.Empty(t, skipped.CurrentState())
}

func TestAlwaysInstalledCannotBeDeselected(t *testing.T) {
	in := &Installer{vars: archive.Dictionary{}, log: NewMemoryLogger()}
	c := in.AddComponent("core")
	c.SetSuggestedState(StateAlwaysInstalled)
	c.SetWantedState(StateUninstalled)
	require.True(t, c.IsSelected())

	d := in.AddComponent("docs")
	require.True(t, d.IsSelected())
	d.SetSuggestedState(StateUninstalled)
	require.False(t, d.IsSelected())
	d.SetWantedState(StateInstalled)
	require.True(t, d.IsSelected())
}

func TestInterruptRollsBack(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a"), "A")
	b := writeFile(t, filepath.Join(dir, "b"), "B")

	setup := buildInstaller(t, ProductFunc(func(in *Installer) error {
		c := in.AddComponent("core")
		c.AppendTask(task.NewCopyFile(a, "@TargetDir@/a", 0))
		c.AppendTask(task.NewCopyFile(b, "@TargetDir@/b", 0))
		return nil
	}), nil)

	target := t.TempDir()
	var in *Installer
	in = openImage(t, setup,
		WithVariables(map[string]string{VarTargetDir: target}),
		WithRegistrar(newFakeRegistrar()),
		WithYield(func() { in.Interrupt() }))

	err := in.Run(context.Background())
	require.ErrorIs(t, err, ErrCancelled)
	require.Equal(t, StatusCanceledByUser, in.Status())
	require.NoFileExists(t, filepath.Join(target, "a"))
	require.NoFileExists(t, filepath.Join(target, "b"))
}

func TestCancelledContext(t *testing.T) {
	src := writeFile(t, filepath.Join(t.TempDir(), "a"), "A")
	setup := buildInstaller(t, ProductFunc(func(in *Installer) error {
		in.AddComponent("core").AppendTask(task.NewCopyFile(src, "@TargetDir@/a", 0))
		return nil
	}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	target := t.TempDir()
	in := openImage(t, setup, WithVariables(map[string]string{VarTargetDir: target}), WithRegistrar(newFakeRegistrar()))
	err := in.Run(ctx)
	require.ErrorIs(t, err, ErrCancelled)
	require.ErrorIs(t, err, context.Canceled)
	require.NoFileExists(t, filepath.Join(target, "a"))
}

func TestMissingTargetDir(t *testing.T) {
	setup := buildInstaller(t, ProductFunc(func(in *Installer) error {
		in.AddComponent("core")
		return nil
	}), nil)

	in := openImage(t, setup, WithRegistrar(newFakeRegistrar()))
	err := in.Run(context.Background())
	var cfg *ConfigError
	require.True(t, errors.As(err, &cfg))
	require.Equal(t, VarTargetDir, cfg.Variable)
	require.ErrorIs(t, err, ErrMissingVariable)
	require.Equal(t, StatusFailed, in.Status())
}

func TestCreatorConfigErrors(t *testing.T) {
	dir := t.TempDir()
	creatorPath := filepath.Join(dir, "creator")
	require.NoError(t, os.WriteFile(creatorPath, fakeCode, 0o755))

	in, err := New(nil, WithImagePath(creatorPath))
	require.NoError(t, err)
	defer in.Close()
	var cfg *ConfigError
	require.True(t, errors.As(in.Run(context.Background()), &cfg))
	require.Equal(t, VarOutputFile, cfg.Variable)

	product := ProductFunc(func(in *Installer) error { return MissingVariable(VarSourceDir) })
	in2, err := New(product, WithImagePath(creatorPath),
		WithVariables(map[string]string{VarOutputFile: filepath.Join(dir, "setup")}))
	require.NoError(t, err)
	defer in2.Close()
	require.True(t, errors.As(in2.Run(context.Background()), &cfg))
	require.Equal(t, VarSourceDir, cfg.Variable)
	require.NoFileExists(t, filepath.Join(dir, "setup"))
}

func TestExistingInstallDetection(t *testing.T) {
	src := writeFile(t, filepath.Join(t.TempDir(), "a"), "A")
	setup := buildInstaller(t, ProductFunc(func(in *Installer) error {
		in.AddComponent("core").AppendTask(task.NewCopyFile(src, "@TargetDir@/a", 0))
		return nil
	}), map[string]string{VarProductName: "Demo", VarVersion: "2.0"})

	reg := newFakeRegistrar()
	reg.entries["Demo"] = platform.AppInfo{DisplayName: "Demo", DisplayVersion: "1.4"}

	in := openImage(t, setup,
		WithVariables(map[string]string{VarTargetDir: t.TempDir()}),
		WithRegistrar(reg))
	require.NoError(t, in.Run(context.Background()))
	require.Equal(t, "Upgrade", in.Value(VarInstallAction))
	require.Equal(t, "1.4", in.Value(VarInstalledVersion))
	require.Equal(t, "2.0", reg.entries["Demo"].DisplayVersion)

	un := openImage(t, in.UninstallerPath())
	require.False(t, un.ContainsValue(VarInstallAction), "temporary variables are not persisted")
	require.Equal(t, "Demo", un.Value(VarProductName))
}

func TestAppendDirectoryTasks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "bin", "tool"), "tool")
	writeFile(t, filepath.Join(src, "lib", "libx.so.1"), "lib")
	require.NoError(t, os.Symlink("libx.so.1", filepath.Join(src, "lib", "libx.so")))
	require.NoError(t, os.Symlink(filepath.Join(src, "bin", "tool"), filepath.Join(src, "tool-link")))

	in := &Installer{vars: archive.Dictionary{"SourceDir": src}, log: NewMemoryLogger()}
	c := in.AddComponent("core")
	require.NoError(t, c.AppendDirectoryTasks("@SourceDir@", "@TargetDir@/app"))

	tasks := c.Tasks()
	require.Len(t, tasks, 4)
	require.Equal(t, task.KindCopyFile, tasks[0].Kind())
	require.Equal(t, task.KindCopyFile, tasks[1].Kind())
	require.Equal(t, task.KindLinkFile, tasks[2].Kind())
	require.Equal(t, task.KindLinkFile, tasks[3].Kind())

	require.Equal(t, "@TargetDir@/app/bin/tool", tasks[0].(*task.CopyFile).Target)
	rel := tasks[2].(*task.LinkFile)
	require.Equal(t, "@TargetDir@/app/lib/libx.so", rel.Target)
	require.Equal(t, "libx.so.1", rel.LinkTarget)
	abs := tasks[3].(*task.LinkFile)
	require.Equal(t, "@TargetDir@/app/tool-link", abs.Target)
	require.Equal(t, "bin/tool", abs.LinkTarget, "absolute links become relative")

	require.Error(t, c.AppendDirectoryTasks(filepath.Join(src, "missing"), "@TargetDir@"))
}

func TestDumpVariables(t *testing.T) {
	in := &Installer{vars: archive.Dictionary{"b": "2", "a": "1"}}
	var buf bytes.Buffer
	require.NoError(t, in.DumpVariables(&buf))
	require.Equal(t, "a=1\nb=2\n", buf.String())
}
