package installer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/crafted-tech/selfinstall/archive"
	"github.com/crafted-tech/selfinstall/task"
)

// install executes the selected components. Any error rolls back every
// executed task in reverse order.
func (in *Installer) install(ctx context.Context) error {
	targetDir, err := in.absTargetDir()
	if err != nil {
		return in.fail(err)
	}
	in.detectExistingInstall()
	if !DirExists(targetDir) {
		in.SetValue(varTargetDirCreated, "true")
	}

	var selected []*Component
	var total int64
	for _, c := range in.components {
		if !c.IsSelected() {
			in.log.Info("Skipping component %s", c.Name())
			continue
		}
		selected = append(selected, c)
		total += c.UncompressedSize()
	}
	in.log.Info("Installing %d of %d components (%d bytes) into %s",
		len(selected), len(in.components), total, targetDir)

	in.emit(Event{Type: InstallationStarted})

	var executed []task.Task
	err = in.executeComponents(ctx, selected, total, &executed)
	if err == nil {
		err = in.writeUninstaller(executed)
	}
	if err != nil {
		in.log.Error("Installation failed: %v", err)
		in.rollback(executed)
		in.ShowWarning("Installation failed: " + err.Error())
		in.finish(InstallationFinished, statusFor(err))
		return err
	}

	for _, c := range selected {
		c.SetCurrentState(StateInstalled)
	}
	if err := in.runSteps(in.postInstallSteps()); err != nil {
		in.finish(InstallationFinished, StatusFailed)
		return err
	}
	in.setProgress(100)
	in.finish(InstallationFinished, StatusSucceeded)
	return nil
}

// executeComponents decompresses each component's task stream and runs its
// tasks. Every task is appended to executed before it runs so a partial
// change is rolled back too.
func (in *Installer) executeComponents(ctx context.Context, components []*Component, total int64, executed *[]task.Task) error {
	var done int64
	for _, c := range components {
		if err := in.checkCancelled(ctx); err != nil {
			return err
		}
		in.log.Step("Installing component %s", c.Name())

		blob, err := in.image.ComponentBlob(
			c.intValue(VarComponentStart),
			c.intValue(VarCompressedSize),
			c.intValue(VarUncompressedSize),
		)
		if err != nil {
			return fmt.Errorf("component %s: %w", c.Name(), err)
		}

		r := bytes.NewReader(blob)
		count := c.TaskCount()
		for i := int64(0); i < count; i++ {
			if err := in.checkCancelled(ctx); err != nil {
				return err
			}
			before := r.Len()
			kind, err := archive.RetrieveInt(r)
			if err != nil {
				return fmt.Errorf("component %s task %d: %w", c.Name(), i, err)
			}
			t, err := task.New(task.Kind(kind))
			if err != nil {
				return fmt.Errorf("component %s task %d: %w", c.Name(), i, err)
			}

			*executed = append(*executed, t)
			if err := t.ReadAndExecuteFromInstaller(in, r); err != nil {
				return fmt.Errorf("%s: %w", t.Describe(), err)
			}
			in.log.Debug("Done: %s", t.Describe())

			done += int64(before - r.Len())
			if total > 0 {
				in.setProgress(int(done * 100 / total))
			}
			in.yieldToUI()
		}
	}
	return nil
}

// rollback undoes executed in reverse. Failures are logged, never returned,
// so they cannot hide the error that caused the rollback.
func (in *Installer) rollback(executed []task.Task) {
	if len(executed) == 0 {
		return
	}
	in.log.Warn("Rolling back %d tasks", len(executed))
	in.SetProgressText("Rolling back")

	var result *multierror.Error
	for i := len(executed) - 1; i >= 0; i-- {
		t := executed[i]
		if err := t.Undo(); err != nil {
			result = multierror.Append(result, fmt.Errorf("undo %s: %w", t.Describe(), err))
		}
	}
	if err := formatErrorOrNil(result); err != nil {
		in.log.Error("Rollback incomplete: %v", err)
	}
}

func formatErrorOrNil(err *multierror.Error) error {
	if err != nil {
		err.ErrorFormat = formatErrors
	}
	return err.ErrorOrNil()
}

func formatErrors(es []error) string {
	if len(es) == 1 {
		return fmt.Sprintf("1 error occurred:\n\t* %s", es[0])
	}
	points := make([]string, len(es))
	for i, err := range es {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s", len(es), strings.Join(points, "\n\t"))
}
