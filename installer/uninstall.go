package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/crafted-tech/selfinstall/archive"
	"github.com/crafted-tech/selfinstall/platform"
	"github.com/crafted-tech/selfinstall/task"
)

// UninstallerPath returns where the uninstaller is written: TargetDir joined
// with UninstallerName, which defaults to "uninstall" ("uninstall.exe" on
// Windows).
func (in *Installer) UninstallerPath() string {
	name := in.Value(VarUninstallerName)
	if name == "" {
		name = "uninstall"
		if runtime.GOOS == "windows" {
			name += ".exe"
		}
	}
	return filepath.Join(in.Value(VarTargetDir), name)
}

// writeUninstaller writes the code, the uninstall forms of executed in
// reverse order and the persistent global variables.
func (in *Installer) writeUninstaller(executed []task.Task) (err error) {
	path := in.UninstallerPath()
	in.SetProgressText("Writing uninstaller " + path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for uninstaller: %w", err)
	}

	w, err := archive.Create(path, 0o755)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			w.Close()
			os.Remove(path)
		}
	}()

	if err := w.CopyCode(in.image.Code(), in.image.CodeSize()); err != nil {
		return err
	}
	tasksStart := w.Offset()
	if err := archive.AppendInt(w, int64(len(executed))); err != nil {
		return fmt.Errorf("write task count: %w", err)
	}
	for i := len(executed) - 1; i >= 0; i-- {
		t := executed[i]
		if err := archive.AppendInt(w, int64(t.Kind())); err != nil {
			return fmt.Errorf("write task kind: %w", err)
		}
		if err := t.WriteToUninstaller(w); err != nil {
			return fmt.Errorf("uninstall form of %s: %w", t.Describe(), err)
		}
	}

	global := in.Variables()
	global.RemoveTemporaryKeys()
	globalStart, err := w.WriteDictionary(global)
	if err != nil {
		return err
	}
	err = w.WriteTrailer(archive.Trailer{
		TasksStart:            tasksStart,
		VariablesStart:        globalStart,
		ComponentCount:        0,
		TasksOffsetsStart:     globalStart,
		VariablesOffsetsStart: globalStart,
		VariableDataStart:     globalStart,
		Marker:                archive.RoleUninstaller.Marker(),
	})
	if err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	in.log.Info("Wrote uninstaller %s with %d tasks", path, len(executed))
	return nil
}

// uninstall undoes the recorded tasks in stored order. Undo failures are
// warnings; a stream that cannot be decoded stops the run.
func (in *Installer) uninstall(ctx context.Context) error {
	in.emit(Event{Type: UninstallationStarted})

	err := in.undoRecordedTasks(ctx)
	if err != nil {
		in.log.Error("Uninstallation failed: %v", err)
		in.ShowWarning("Uninstallation failed: " + err.Error())
		in.finish(UninstallationFinished, statusFor(err))
		return err
	}

	if err := in.runSteps(in.postUninstallSteps()); err != nil {
		in.finish(UninstallationFinished, StatusFailed)
		return err
	}
	in.setProgress(100)
	in.finish(UninstallationFinished, StatusSucceeded)
	return nil
}

func (in *Installer) undoRecordedTasks(ctx context.Context) error {
	count, r, err := in.image.UninstallStream()
	if err != nil {
		return err
	}
	in.log.Info("Undoing %d tasks", count)

	for i := int64(0); i < count; i++ {
		if err := in.checkCancelled(ctx); err != nil {
			return err
		}
		kind, err := archive.RetrieveInt(r)
		if err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
		t, err := task.New(task.Kind(kind))
		if err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
		if err := t.ReadAndExecuteFromUninstaller(in, r); err != nil {
			if isDecodeError(err) {
				return fmt.Errorf("task %d: %w", i, err)
			}
			in.ShowWarning(fmt.Sprintf("Could not undo %s: %v", t.Describe(), err))
		}
		in.setProgress(int((i + 1) * 100 / count))
		in.yieldToUI()
	}
	return nil
}

func isDecodeError(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, archive.ErrCorrupt)
}

// relocateUninstaller copies the image to a temp directory, marks the copy
// as a temporary uninstaller and starts it. The copy performs the uninstall
// and removes this image.
func (in *Installer) relocateUninstaller() error {
	dir, err := os.MkdirTemp("", "selfinstall-uninstall-")
	if err != nil {
		return in.fail(fmt.Errorf("create temp directory: %w", err))
	}
	tmp := filepath.Join(dir, filepath.Base(in.imagePath))
	if err := copyExecutable(in.imagePath, tmp); err != nil {
		os.RemoveAll(dir)
		return in.fail(fmt.Errorf("copy uninstaller: %w", err))
	}
	if err := archive.RewriteMarker(tmp, archive.RoleTempUninstaller); err != nil {
		os.RemoveAll(dir)
		return in.fail(err)
	}

	args := append([]string(nil), in.forwardArgs...)
	if path := in.log.Path(); path != "" {
		args = append(args, "--log-file", path)
	}
	args = append(args, VarUninstallerPath+"="+in.imagePath)
	if err := platform.StartDetached(tmp, args); err != nil {
		os.RemoveAll(dir)
		return in.fail(err)
	}

	in.log.Info("Relocated uninstaller to %s", tmp)
	in.setFinalStatus(StatusSucceeded)
	return nil
}
