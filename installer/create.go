package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crafted-tech/selfinstall/archive"
	"github.com/crafted-tech/selfinstall/task"
)

// create asks the product for its components and writes the installer
// archive to OutputFile.
func (in *Installer) create(ctx context.Context) error {
	output := in.Value(VarOutputFile)
	if output == "" {
		return in.fail(MissingVariable(VarOutputFile))
	}
	if samePath(output, in.imagePath) {
		return in.fail(&ConfigError{Variable: VarOutputFile, Reason: "must not be the running image"})
	}
	if in.product == nil {
		return in.fail(errors.New("no product to build"))
	}

	in.SetProgressText("Collecting components")
	if err := in.product.CreateComponents(in); err != nil {
		return in.fail(fmt.Errorf("create components: %w", err))
	}

	if err := in.writeInstallerImage(ctx, output); err != nil {
		return in.fail(fmt.Errorf("write %s: %w", output, err))
	}

	in.setProgress(100)
	in.log.Info("Wrote installer %s with %d components", output, len(in.components))
	in.setFinalStatus(StatusSucceeded)
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// encodeInstallStream writes each task's kind followed by its install form.
func encodeInstallStream(tasks []task.Task) ([]byte, error) {
	var buf bytes.Buffer
	for _, t := range tasks {
		if err := archive.AppendInt(&buf, int64(t.Kind())); err != nil {
			return nil, err
		}
		if err := t.WriteToInstaller(&buf); err != nil {
			return nil, fmt.Errorf("%s: %w", t.Describe(), err)
		}
	}
	return buf.Bytes(), nil
}

// writeInstallerImage lays out code, compressed task blobs, component
// dictionaries, the global dictionary, both offset tables and the trailer.
func (in *Installer) writeInstallerImage(ctx context.Context, path string) (err error) {
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
	taskOffsets := make([]int64, 0, len(in.components))
	for i, c := range in.components {
		if err := in.checkCancelled(ctx); err != nil {
			return err
		}
		in.SetProgressText("Archiving " + c.Name())

		payload, err := encodeInstallStream(c.tasks)
		if err != nil {
			return fmt.Errorf("component %s: %w", c.Name(), err)
		}
		compressed, err := archive.Compress(payload)
		if err != nil {
			return fmt.Errorf("component %s: %w", c.Name(), err)
		}
		start, err := w.WriteBlob(compressed)
		if err != nil {
			return fmt.Errorf("component %s: %w", c.Name(), err)
		}

		c.setIntValue(VarTaskCount, int64(len(c.tasks)))
		c.setIntValue(VarComponentStart, start)
		c.setIntValue(VarCompressedSize, int64(len(compressed)))
		c.setIntValue(VarUncompressedSize, int64(len(payload)))
		taskOffsets = append(taskOffsets, start)

		in.log.Info("Component %s: %d tasks, %d bytes (%d compressed)",
			c.Name(), len(c.tasks), len(payload), len(compressed))
		in.setProgress((i + 1) * 100 / len(in.components))
		in.yieldToUI()
	}

	variablesStart := w.Offset()
	variableOffsets := make([]int64, 0, len(in.components))
	for _, c := range in.components {
		d := c.vars.Clone()
		d.RemoveTemporaryKeys()
		off, err := w.WriteDictionary(d)
		if err != nil {
			return fmt.Errorf("component %s: %w", c.Name(), err)
		}
		variableOffsets = append(variableOffsets, off)
	}

	global := in.Variables()
	global.RemoveTemporaryKeys()
	globalStart, err := w.WriteDictionary(global)
	if err != nil {
		return err
	}
	taskOffsetsStart, err := w.WriteOffsets(taskOffsets)
	if err != nil {
		return err
	}
	variableOffsetsStart, err := w.WriteOffsets(variableOffsets)
	if err != nil {
		return err
	}

	err = w.WriteTrailer(archive.Trailer{
		TasksStart:            tasksStart,
		VariablesStart:        variablesStart,
		ComponentCount:        int64(len(in.components)),
		TasksOffsetsStart:     taskOffsetsStart,
		VariablesOffsetsStart: variableOffsetsStart,
		VariableDataStart:     globalStart,
		Marker:                archive.RoleInstaller.Marker(),
	})
	if err != nil {
		return err
	}
	return w.Close()
}
