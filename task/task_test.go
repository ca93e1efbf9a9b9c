package task

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeEnv struct {
	vars     map[string]string
	progress []string
}

func newFakeEnv(vars map[string]string) *fakeEnv {
	return &fakeEnv{vars: vars}
}

func (e *fakeEnv) ReplaceVariables(s string) string {
	for k, v := range e.vars {
		s = strings.ReplaceAll(s, "@"+k+"@", v)
	}
	return s
}

func (e *fakeEnv) ReplaceVariablesInBytes(b []byte) []byte {
	return []byte(e.ReplaceVariables(string(b)))
}

func (e *fakeEnv) Value(key string) string { return e.vars[key] }

func (e *fakeEnv) SetProgressText(text string) { e.progress = append(e.progress, text) }

// install writes t's install form and executes it on a fresh task of the
// same kind, then returns that task and its uninstall form.
func install(t *testing.T, env Env, src Task) (Task, []byte) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, src.WriteToInstaller(&buf))

	installed, err := New(src.Kind())
	require.NoError(t, err)
	require.NoError(t, installed.ReadAndExecuteFromInstaller(env, &buf))
	require.Zero(t, buf.Len(), "install form fully consumed")

	var un bytes.Buffer
	require.NoError(t, installed.WriteToUninstaller(&un))
	return installed, un.Bytes()
}

func uninstall(t *testing.T, env Env, kind Kind, payload []byte) Task {
	t.Helper()
	u, err := New(kind)
	require.NoError(t, err)
	r := bytes.NewReader(payload)
	require.NoError(t, u.ReadAndExecuteFromUninstaller(env, r))
	require.Zero(t, r.Len(), "uninstall form fully consumed")
	return u
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New(Kind(42))
	require.Error(t, err)
	require.Equal(t, "Kind(42)", Kind(42).String())
	require.Equal(t, "PatchFile", KindPatchFile.String())
}

func TestCopyFileRoundTrip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o640))

	target := t.TempDir()
	env := newFakeEnv(map[string]string{"TargetDir": target})

	installed, payload := install(t, env, NewCopyFile(src, "@TargetDir@/a/b/out.txt", 0))
	out := filepath.Join(target, "a", "b", "out.txt")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
	require.Equal(t, out, installed.(*CopyFile).Path())
	if runtime.GOOS != "windows" {
		info, err := os.Stat(out)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	}

	uninstall(t, env, KindCopyFile, payload)
	_, err = os.Stat(out)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(target, "a"))
	require.True(t, os.IsNotExist(err), "created directories are removed")
	_, err = os.Stat(target)
	require.NoError(t, err, "pre-existing directory is kept")

	require.NoError(t, installed.Undo())
	require.NoError(t, installed.Undo())
}

func TestCopyFileReplacesReadOnlyTarget(t *testing.T) {
	src := filepath.Join(t.TempDir(), "new")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o644))

	target := t.TempDir()
	out := filepath.Join(target, "out")
	require.NoError(t, os.WriteFile(out, []byte("old content"), 0o444))

	env := newFakeEnv(map[string]string{"TargetDir": target})
	install(t, env, NewCopyFile(src, "@TargetDir@/out", 0))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
}

func TestLinkFileRoundTrip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	target := t.TempDir()
	env := newFakeEnv(map[string]string{"TargetDir": target})
	require.NoError(t, os.WriteFile(filepath.Join(target, "lib.so.1"), nil, 0o644))

	installed, payload := install(t, env, NewLinkFile("@TargetDir@/lib.so", "lib.so.1", 0o777))
	link := filepath.Join(target, "lib.so")
	dest, err := os.Readlink(link)
	require.NoError(t, err)
	require.Equal(t, "lib.so.1", dest)

	// Running again replaces the existing link.
	install(t, env, NewLinkFile("@TargetDir@/lib.so", "lib.so.1", 0o777))

	uninstall(t, env, KindLinkFile, payload)
	_, err = os.Lstat(link)
	require.True(t, os.IsNotExist(err))
	require.NoError(t, installed.Undo())
}

func TestLinkFileRemovesCreatedDirs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	target := t.TempDir()
	env := newFakeEnv(map[string]string{"TargetDir": target})

	installed, payload := install(t, env, NewLinkFile("@TargetDir@/lib/x/link", "../../real", 0o777))
	link := filepath.Join(target, "lib", "x", "link")
	_, err := os.Lstat(link)
	require.NoError(t, err)

	uninstall(t, env, KindLinkFile, payload)
	_, err = os.Stat(filepath.Join(target, "lib"))
	require.True(t, os.IsNotExist(err), "created directories are removed")
	_, err = os.Stat(target)
	require.NoError(t, err, "pre-existing directory is kept")

	// Rollback takes the same path.
	installed, _ = install(t, env, NewLinkFile("@TargetDir@/lib/x/link", "../../real", 0o777))
	require.NoError(t, installed.Undo())
	_, err = os.Stat(filepath.Join(target, "lib"))
	require.True(t, os.IsNotExist(err))
}

func TestWriteSettingsRestoresPrevious(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if runtime.GOOS != "linux" {
		t.Skip("settings store location is only redirected on linux")
	}
	env := newFakeEnv(map[string]string{
		"Publisher":   "Acme",
		"ProductName": "Widget",
		"TargetDir":   "/opt/widget",
	})

	first, firstPayload := install(t, env, NewWriteSettings("InstallDir", "@TargetDir@"))
	require.Equal(t, "/opt/widget", first.(*WriteSettings).Value)

	env.vars["TargetDir"] = "/opt/widget2"
	_, secondPayload := install(t, env, NewWriteSettings("InstallDir", "@TargetDir@"))

	// Undo in reverse order: the second write restores the first value.
	uninstall(t, env, KindWriteSettings, secondPayload)
	requireSetting(t, "Acme/Widget", "InstallDir", "/opt/widget", true)

	uninstall(t, env, KindWriteSettings, firstPayload)
	requireSetting(t, "Acme/Widget", "InstallDir", "", false)
}

func TestSettingsScope(t *testing.T) {
	require.Equal(t, "Acme/Widget", SettingsScope("Acme", "Widget"))
	require.Equal(t, "Widget", SettingsScope("", "Widget"))
}

func TestPatchBytes(t *testing.T) {
	tests := []struct {
		name              string
		data, needle, rep string
		want              string
		found             bool
	}{
		{"same length", "xxABCDyy", "ABCD", "1234", "xx1234yy", true},
		{"shorter replacement", "xxABCDyy", "ABCD", "12", "xx12CDyy", true},
		{"longer replacement truncated", "xxABCDyy", "ABCD", "123456", "xx1234yy", true},
		{"first occurrence only", "ABAB", "AB", "Z", "ZBAB", true},
		{"not found", "xxxx", "AB", "Z", "xxxx", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(tt.data)
			require.Equal(t, tt.found, patchBytes(data, []byte(tt.needle), []byte(tt.rep)))
			require.Equal(t, tt.want, string(data))
		})
	}
}

func TestPatchFile(t *testing.T) {
	target := t.TempDir()
	path := filepath.Join(target, "app.cfg")
	require.NoError(t, os.WriteFile(path, []byte("home=@@@@@@@@@@@@@@@@@@@@;"), 0o644))
	env := newFakeEnv(map[string]string{"TargetDir": target, "Home": "/srv"})

	installed, payload := install(t, env, NewPatchFile("@TargetDir@/app.cfg", []byte("@@@@"), []byte("@Home@")))
	require.True(t, installed.(*PatchFile).Patched())
	require.Empty(t, payload)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "home=/srv@@@@@@@@@@@@@@@@;", string(data))

	uninstall(t, env, KindPatchFile, payload)
	require.NoError(t, installed.Undo())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "home=/srv@@@@@@@@@@@@@@@@;", string(data), "patches are not reverted")
}

func TestPatchEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	env := newFakeEnv(map[string]string{})

	installed, _ := install(t, env, NewPatchFile(path, []byte("x"), []byte("y")))
	require.False(t, installed.(*PatchFile).Patched())
}
