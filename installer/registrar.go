package installer

import (
	"github.com/crafted-tech/selfinstall/platform"
)

// Registrar records installed products in the system uninstall registry.
type Registrar interface {
	Register(key string, allUsers bool, info platform.AppInfo) error
	Unregister(key string, allUsers bool) error
	// Find returns nil if the product is not registered.
	Find(key string, allUsers bool) (*platform.AppInfo, error)
}

// PlatformRegistrar uses Add/Remove Programs on Windows and YAML records
// elsewhere.
type PlatformRegistrar struct{}

func (PlatformRegistrar) Register(key string, allUsers bool, info platform.AppInfo) error {
	if allUsers {
		return platform.RegisterApp(key, info)
	}
	return platform.RegisterUserApp(key, info)
}

func (PlatformRegistrar) Unregister(key string, allUsers bool) error {
	if allUsers {
		return platform.UnregisterApp(key)
	}
	return platform.UnregisterUserApp(key)
}

func (PlatformRegistrar) Find(key string, allUsers bool) (*platform.AppInfo, error) {
	if allUsers {
		return platform.FindInstalledApp(key)
	}
	return platform.FindInstalledUserApp(key)
}

// RegistryKey returns the uninstall registry key: RegistryKey, or
// ProductName when that is unset.
func (in *Installer) RegistryKey() string {
	if key := in.Value(VarRegistryKey); key != "" {
		return key
	}
	return in.Value(VarProductName)
}

// AllUsers reports whether the installation is machine-wide.
func (in *Installer) AllUsers() bool {
	return in.Value(VarAllUsers) == "true"
}

func (in *Installer) appInfo() platform.AppInfo {
	return platform.AppInfo{
		DisplayName:     in.Value(VarProductName),
		DisplayVersion:  in.Value(VarVersion),
		Publisher:       in.Value(VarPublisher),
		InstallLocation: in.Value(VarTargetDir),
		UninstallString: platform.QuoteArg(in.UninstallerPath()),
		NoModify:        true,
		NoRepair:        true,
	}
}

// detectExistingInstall looks for a registered installation and stores the
// resulting action in @InstallAction.
func (in *Installer) detectExistingInstall() {
	key := in.RegistryKey()
	if key == "" {
		return
	}
	existing, err := in.registrar.Find(key, in.AllUsers())
	if err != nil {
		in.log.Warn("Could not look up existing installation: %v", err)
		return
	}
	var existingVersion string
	if existing != nil {
		existingVersion = existing.DisplayVersion
		if existingVersion == "" {
			existingVersion = "0"
		}
		in.SetValue(VarInstalledVersion, existingVersion)
	}
	action := DetermineAction(existingVersion, in.Value(VarVersion))
	in.SetValue(VarInstallAction, action.String())
	in.log.Info("Install action: %s (installed %q, new %q)", action, existingVersion, in.Value(VarVersion))
}
