package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Role is what an image does when it runs. It is decided purely by the
// marker stored in the image's last eight bytes.
type Role int

const (
	RoleCreator         Role = iota // No marker: builds archives
	RoleInstaller                   // Carries components to install
	RoleUninstaller                 // Carries the undo stream of one installation
	RoleTempUninstaller             // Relocated copy of an uninstaller
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleCreator:
		return "creator"
	case RoleInstaller:
		return "installer"
	case RoleUninstaller:
		return "uninstaller"
	case RoleTempUninstaller:
		return "temp-uninstaller"
	default:
		return "unknown"
	}
}

// Magic markers. Values are arbitrary but fixed.
const (
	MarkerInstaller       int64 = 0x12023233_6dea0d34
	MarkerUninstaller     int64 = 0x12023234_6dea0d34
	MarkerTempUninstaller int64 = 0x12023235_6dea0d34
)

// Marker returns the marker written for the role, or 0 for RoleCreator.
func (r Role) Marker() int64 {
	switch r {
	case RoleInstaller:
		return MarkerInstaller
	case RoleUninstaller:
		return MarkerUninstaller
	case RoleTempUninstaller:
		return MarkerTempUninstaller
	default:
		return 0
	}
}

// RoleForMarker maps a marker to a role. Unknown values mean RoleCreator.
func RoleForMarker(marker int64) Role {
	switch marker {
	case MarkerInstaller:
		return RoleInstaller
	case MarkerUninstaller:
		return RoleUninstaller
	case MarkerTempUninstaller:
		return RoleTempUninstaller
	default:
		return RoleCreator
	}
}

// TrailerFields is the number of int64 fields in the trailer.
const TrailerFields = 7

// TrailerSize is the byte size of the trailer at the end of every image.
const TrailerSize = TrailerFields * 8

// Trailer is the fixed-size index at the end of an image. All offsets are
// relative to the start of the file.
type Trailer struct {
	TasksStart            int64 // first component blob; equals the code size
	VariablesStart        int64 // first component dictionary
	ComponentCount        int64
	TasksOffsetsStart     int64
	VariablesOffsetsStart int64
	VariableDataStart     int64 // global dictionary
	Marker                int64
}

func (t Trailer) fields() [TrailerFields]int64 {
	return [TrailerFields]int64{
		t.TasksStart,
		t.VariablesStart,
		t.ComponentCount,
		t.TasksOffsetsStart,
		t.VariablesOffsetsStart,
		t.VariableDataStart,
		t.Marker,
	}
}

// Encode returns the trailer bytes.
func (t Trailer) Encode() []byte {
	var buf bytes.Buffer
	for _, v := range t.fields() {
		_ = AppendInt(&buf, v)
	}
	return buf.Bytes()
}

// DecodeTrailer parses TrailerSize bytes.
func DecodeTrailer(b []byte) (Trailer, error) {
	if len(b) != TrailerSize {
		return Trailer{}, fmt.Errorf("trailer has %d bytes, want %d: %w", len(b), TrailerSize, ErrCorrupt)
	}
	r := bytes.NewReader(b)
	var f [TrailerFields]int64
	for i := range f {
		v, err := RetrieveInt(r)
		if err != nil {
			return Trailer{}, fmt.Errorf("trailer field %d: %w", i, err)
		}
		f[i] = v
	}
	return Trailer{
		TasksStart:            f[0],
		VariablesStart:        f[1],
		ComponentCount:        f[2],
		TasksOffsetsStart:     f[3],
		VariablesOffsetsStart: f[4],
		VariableDataStart:     f[5],
		Marker:                f[6],
	}, nil
}

// ReadTrailer inspects the end of an image of the given size. Images that are
// too short or carry no known marker are creators; their trailer is zeroed.
func ReadTrailer(ra io.ReaderAt, size int64) (Trailer, Role, error) {
	if size < TrailerSize {
		return Trailer{}, RoleCreator, nil
	}
	var markerBuf [8]byte
	if _, err := ra.ReadAt(markerBuf[:], size-8); err != nil {
		return Trailer{}, RoleCreator, fmt.Errorf("read marker: %w", shortRead(err))
	}
	marker, _ := RetrieveInt(bytes.NewReader(markerBuf[:]))
	role := RoleForMarker(marker)
	if role == RoleCreator {
		return Trailer{}, RoleCreator, nil
	}

	buf := make([]byte, TrailerSize)
	if _, err := ra.ReadAt(buf, size-TrailerSize); err != nil {
		return Trailer{}, role, fmt.Errorf("read trailer: %w", shortRead(err))
	}
	t, err := DecodeTrailer(buf)
	if err != nil {
		return Trailer{}, role, err
	}
	if err := t.validate(size); err != nil {
		return Trailer{}, role, err
	}
	return t, role, nil
}

func (t Trailer) validate(size int64) error {
	limit := size - TrailerSize
	for name, off := range map[string]int64{
		"tasks start":            t.TasksStart,
		"variables start":        t.VariablesStart,
		"task offsets start":     t.TasksOffsetsStart,
		"variable offsets start": t.VariablesOffsetsStart,
		"global variables start": t.VariableDataStart,
	} {
		if off < 0 || off > limit {
			return fmt.Errorf("%s %d outside image of %d bytes: %w", name, off, size, ErrCorrupt)
		}
	}
	if t.ComponentCount < 0 {
		return fmt.Errorf("component count %d: %w", t.ComponentCount, ErrCorrupt)
	}
	return nil
}

// RewriteMarker replaces the marker of the image at path so that it assumes
// role the next time it runs.
func RewriteMarker(path string, role Role) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat image: %w", err)
	}
	if info.Size() < TrailerSize {
		return fmt.Errorf("image %s has no trailer: %w", path, ErrCorrupt)
	}

	var buf bytes.Buffer
	_ = AppendInt(&buf, role.Marker())
	if _, err := f.WriteAt(buf.Bytes(), info.Size()-8); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	return f.Close()
}
