// Package task implements the reversible units of work an installer performs.
//
// Every task has two encodings. The install form is written while an archive
// is being built and consumed when the installer runs; consuming it performs
// the change. The uninstall form is written into the generated uninstaller
// after the change succeeded and is consumed by the uninstaller, which undoes
// the change immediately.
//
// Task kinds are identified on the wire by stable codes (see Kind), so the
// writer and the reader never depend on registration order.
package task

import (
	"fmt"
	"io"
)

// Kind is the wire code of a task variant. Values are part of the archive
// format and must never be renumbered.
type Kind int64

const (
	KindCopyFile      Kind = 1
	KindLinkFile      Kind = 2
	KindWriteSettings Kind = 3
	KindPatchFile     Kind = 4
	KindMenuShortcut  Kind = 5
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCopyFile:
		return "CopyFile"
	case KindLinkFile:
		return "LinkFile"
	case KindWriteSettings:
		return "WriteSettings"
	case KindPatchFile:
		return "PatchFile"
	case KindMenuShortcut:
		return "MenuShortcut"
	default:
		return fmt.Sprintf("Kind(%d)", int64(k))
	}
}

// Env is what a task needs from the running installer.
type Env interface {
	// ReplaceVariables expands @Name@ placeholders.
	ReplaceVariables(s string) string
	// ReplaceVariablesInBytes expands @Name@ placeholders in raw bytes.
	ReplaceVariablesInBytes(b []byte) []byte
	// Value returns a variable without expansion.
	Value(key string) string
	// SetProgressText publishes a human-readable status line.
	SetProgressText(text string)
}

// Task is one reversible unit of installation work.
type Task interface {
	// Kind returns the wire code of the variant.
	Kind() Kind

	// WriteToInstaller writes the install form.
	WriteToInstaller(w io.Writer) error

	// ReadAndExecuteFromInstaller consumes the install form, performs the
	// change and keeps whatever is needed to undo it.
	ReadAndExecuteFromInstaller(env Env, r io.Reader) error

	// WriteToUninstaller writes the uninstall form. Only valid after a
	// successful ReadAndExecuteFromInstaller.
	WriteToUninstaller(w io.Writer) error

	// ReadAndExecuteFromUninstaller consumes the uninstall form and undoes
	// the change.
	ReadAndExecuteFromUninstaller(env Env, r io.Reader) error

	// Undo reverses the change. It is best effort and safe to call when the
	// change is already partially or fully gone.
	Undo() error

	// Describe returns a short human-readable summary.
	Describe() string
}

// New returns an empty task of the given kind, ready to read either form.
func New(kind Kind) (Task, error) {
	switch kind {
	case KindCopyFile:
		return &CopyFile{}, nil
	case KindLinkFile:
		return &LinkFile{}, nil
	case KindWriteSettings:
		return &WriteSettings{}, nil
	case KindPatchFile:
		return &PatchFile{}, nil
	case KindMenuShortcut:
		return &MenuShortcut{}, nil
	default:
		return nil, fmt.Errorf("unknown task kind %d", int64(kind))
	}
}
