package task

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/crafted-tech/selfinstall/archive"
	"github.com/crafted-tech/selfinstall/platform"
)

// PatchFile overwrites the first occurrence of Needle in an installed file.
// It cannot be undone.
//
// Variables are expanded in Replacement but never in Needle. A replacement
// longer than the needle is cut to the needle's length.
type PatchFile struct {
	Target      string
	Needle      []byte
	Replacement []byte

	patched bool
}

// NewPatchFile returns a task that patches target in place.
func NewPatchFile(target string, needle, replacement []byte) *PatchFile {
	return &PatchFile{Target: target, Needle: needle, Replacement: replacement}
}

func (p *PatchFile) Kind() Kind { return KindPatchFile }

// Describe returns a short summary.
func (p *PatchFile) Describe() string { return "Patch " + p.Target }

// Patched reports whether the needle was found and overwritten.
func (p *PatchFile) Patched() bool { return p.patched }

// WriteToInstaller writes the target, the needle and the replacement.
func (p *PatchFile) WriteToInstaller(w io.Writer) error {
	if err := archive.AppendString(w, p.Target); err != nil {
		return err
	}
	if err := archive.AppendByteArray(w, p.Needle); err != nil {
		return err
	}
	return archive.AppendByteArray(w, p.Replacement)
}

// ReadAndExecuteFromInstaller maps the target and patches it.
func (p *PatchFile) ReadAndExecuteFromInstaller(env Env, r io.Reader) error {
	target, err := archive.RetrieveString(r)
	if err != nil {
		return fmt.Errorf("patch target: %w", err)
	}
	needle, err := archive.RetrieveByteArray(r)
	if err != nil {
		return fmt.Errorf("patch needle: %w", err)
	}
	replacement, err := archive.RetrieveByteArray(r)
	if err != nil {
		return fmt.Errorf("patch replacement: %w", err)
	}
	p.Target = filepath.Clean(filepath.FromSlash(env.ReplaceVariables(target)))
	p.Needle = needle
	p.Replacement = env.ReplaceVariablesInBytes(replacement)
	env.SetProgressText("Patching " + p.Target)

	if len(p.Needle) == 0 {
		return nil
	}
	m, err := platform.MapFile(p.Target)
	if err != nil {
		return err
	}
	p.patched = patchBytes(m.Bytes(), p.Needle, p.Replacement)
	return m.Unmap()
}

// patchBytes writes replacement over the first occurrence of needle in data.
// Bytes of the needle past the end of replacement are left as they were.
func patchBytes(data, needle, replacement []byte) bool {
	i := bytes.Index(data, needle)
	if i < 0 {
		return false
	}
	if len(replacement) > len(needle) {
		replacement = replacement[:len(needle)]
	}
	copy(data[i:i+len(needle)], replacement)
	return true
}

// WriteToUninstaller writes nothing.
func (p *PatchFile) WriteToUninstaller(io.Writer) error { return nil }

// ReadAndExecuteFromUninstaller does nothing.
func (p *PatchFile) ReadAndExecuteFromUninstaller(Env, io.Reader) error { return nil }

// Undo does nothing.
func (p *PatchFile) Undo() error { return nil }
