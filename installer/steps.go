package installer

import (
	"fmt"
	"path/filepath"

	"github.com/crafted-tech/selfinstall/platform"
)

// StepScheduleFileDelete creates a Step that removes a file once it is no
// longer in use.
func StepScheduleFileDelete(path string) Step {
	return Step{
		Name:     fmt.Sprintf("Remove %s", filepath.Base(path)),
		Optional: true,
		Action: func() StepResult {
			if err := platform.ScheduleFileDelete(path); err != nil {
				return Failed(err)
			}
			return Success("")
		},
	}
}

// StepRegisterProduct creates a Step that adds the uninstall registry entry.
func (in *Installer) StepRegisterProduct() Step {
	return Step{
		Name:     "Register product",
		Optional: true,
		Action: func() StepResult {
			key := in.RegistryKey()
			if key == "" {
				return Skipped("no product name")
			}
			if err := in.registrar.Register(key, in.AllUsers(), in.appInfo()); err != nil {
				return Failed(err)
			}
			return Success(key)
		},
	}
}

// StepUnregisterProduct creates a Step that removes the uninstall registry
// entry.
func (in *Installer) StepUnregisterProduct() Step {
	return Step{
		Name:     "Unregister product",
		Optional: true,
		Action: func() StepResult {
			key := in.RegistryKey()
			if key == "" {
				return Skipped("no product name")
			}
			if err := in.registrar.Unregister(key, in.AllUsers()); err != nil {
				return Failed(err)
			}
			return Success(key)
		},
	}
}

func (in *Installer) postInstallSteps() []Step {
	return []Step{in.StepRegisterProduct()}
}

// postUninstallSteps removes the uninstaller image, the original image when
// running from a relocated copy, and TargetDir if the install created it.
func (in *Installer) postUninstallSteps() []Step {
	steps := []Step{in.StepUnregisterProduct()}
	if original := in.Value(VarUninstallerPath); original != "" && !samePath(original, in.imagePath) {
		steps = append(steps, StepScheduleFileDelete(original))
	}
	steps = append(steps, OptionalStep("Release image", in.Close))
	steps = append(steps, StepScheduleFileDelete(in.imagePath))
	if in.Value(varTargetDirCreated) == "true" {
		if dir := in.Value(VarTargetDir); dir != "" {
			steps = append(steps, StepDeleteDirIfEmpty(dir))
		}
	}
	return steps
}
