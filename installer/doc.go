// Package installer is the engine of a self-appending installer.
//
// One executable plays four roles, chosen by the marker at the end of its
// own image:
//   - Creator: a plain build of the program. Run calls the Product hook to
//     collect components and writes an installer image to OutputFile.
//   - Installer: executes the selected components into TargetDir, rolling
//     everything back on failure, then writes an uninstaller and registers
//     the product.
//   - Uninstaller: undoes the recorded tasks and removes itself. Where a
//     running executable cannot be deleted it first relaunches from a
//     temporary copy (the temp-uninstaller role).
//
// # Basic Usage
//
//	args, err := installer.ParseArgs(os.Args[1:])
//	if err != nil {
//	    return err
//	}
//	in, err := installer.New(installer.ProductFunc(func(in *installer.Installer) error {
//	    c := in.AddComponent("core")
//	    return c.AppendDirectoryTasks("@SourceDir@", "@TargetDir@")
//	}), args.Options()...)
//	if err != nil {
//	    return err
//	}
//	defer in.Close()
//	return in.Run(ctx)
//
// # Variables
//
// Task paths and contents may contain @Name@ placeholders, expanded from the
// global variables when the installer runs. Variables whose names start
// with "@" are temporary and never written to an image.
//
// # Events
//
// A UI observes a run through Subscribe and may call Interrupt from any
// goroutine; the run stops before the next task.
package installer
