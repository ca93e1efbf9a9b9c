// Package platform wraps the operating-system facilities an installer
// touches outside its target directory.
//
// # Features
//
//   - App Registration: per-machine and per-user uninstall entries. Windows
//     uses the Add/Remove Programs registry keys; other systems keep a YAML
//     record per product under the data directory.
//   - Settings: a small string store per scope (registry on Windows, a YAML
//     file under the config directory elsewhere).
//   - Shortcuts: .lnk files on Windows, .desktop entries on Linux, .command
//     launchers on macOS.
//   - Paths: Start Menu, program and data folders.
//   - File mapping: read/write memory maps for in-place patching.
//   - Process: elevation checks, detached launches and deferred self-delete.
//
// # Example Usage
//
//	// Register the product for the current user
//	platform.RegisterUserApp("Company.MyApp", platform.AppInfo{
//	    DisplayName:     "My Application",
//	    DisplayVersion:  "1.0.0",
//	    Publisher:       "My Company",
//	    InstallLocation: installDir,
//	    UninstallString: filepath.Join(installDir, "uninstall"),
//	})
//
//	// Remember a value across runs
//	s, err := platform.OpenSettings("My Company/My Application", false)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	s.SetValue("TargetDir", installDir)
package platform
