package archive

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Reader gives random access to an image. The image is usually the running
// executable, but any file with the same layout works.
type Reader struct {
	ra      io.ReaderAt
	closer  io.Closer
	size    int64
	trailer Trailer
	role    Role
}

// Open opens the image at path and reads its trailer.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat image: %w", err)
	}
	r, err := NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader reads the trailer of an image of the given size.
func NewReader(ra io.ReaderAt, size int64) (*Reader, error) {
	t, role, err := ReadTrailer(ra, size)
	if err != nil {
		return nil, err
	}
	return &Reader{ra: ra, size: size, trailer: t, role: role}, nil
}

// Close releases the underlying file, if Open created one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Role returns the role selected by the image's marker.
func (r *Reader) Role() Role {
	return r.role
}

// Trailer returns the parsed trailer. It is zeroed for creators.
func (r *Reader) Trailer() Trailer {
	return r.trailer
}

// Size returns the image size in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// CodeSize returns the number of leading bytes that are executable code,
// i.e. everything the image had before any archive data was appended.
func (r *Reader) CodeSize() int64 {
	if r.role == RoleCreator {
		return r.size
	}
	return r.trailer.TasksStart
}

// Code returns a reader over the executable code.
func (r *Reader) Code() io.Reader {
	return io.NewSectionReader(r.ra, 0, r.CodeSize())
}

func (r *Reader) section(off int64) *bufio.Reader {
	return bufio.NewReader(io.NewSectionReader(r.ra, off, r.size-off))
}

// ReadVariables reads the per-component dictionaries followed by the global
// dictionary. Creators have neither.
func (r *Reader) ReadVariables() ([]Dictionary, Dictionary, error) {
	if r.role == RoleCreator {
		return nil, Dictionary{}, nil
	}
	br := r.section(r.trailer.VariablesStart)
	components := make([]Dictionary, 0, r.trailer.ComponentCount)
	for i := int64(0); i < r.trailer.ComponentCount; i++ {
		d, err := RetrieveDictionary(br)
		if err != nil {
			return nil, nil, fmt.Errorf("component %d variables: %w", i, err)
		}
		components = append(components, d)
	}
	global, err := RetrieveDictionary(br)
	if err != nil {
		return nil, nil, fmt.Errorf("global variables: %w", err)
	}
	return components, global, nil
}

// ComponentBlob reads the length-prefixed compressed task stream at start and
// expands it.
func (r *Reader) ComponentBlob(start, compressedSize, uncompressedSize int64) ([]byte, error) {
	if start < 0 || start >= r.size {
		return nil, fmt.Errorf("component start %d outside image: %w", start, ErrCorrupt)
	}
	compressed, err := RetrieveByteArray(r.section(start))
	if err != nil {
		return nil, fmt.Errorf("read component blob: %w", err)
	}
	if int64(len(compressed)) != compressedSize {
		return nil, fmt.Errorf("component blob has %d bytes, want %d: %w", len(compressed), compressedSize, ErrCorrupt)
	}
	return Decompress(compressed, uncompressedSize)
}

// UninstallStream returns the task count and the raw, uncompressed undo
// stream of an uninstaller image.
func (r *Reader) UninstallStream() (int64, io.Reader, error) {
	if r.role != RoleUninstaller && r.role != RoleTempUninstaller {
		return 0, nil, fmt.Errorf("image is a %s, not an uninstaller", r.role)
	}
	br := r.section(r.trailer.TasksStart)
	n, err := RetrieveInt(br)
	if err != nil {
		return 0, nil, fmt.Errorf("uninstall task count: %w", err)
	}
	if n < 0 {
		return 0, nil, fmt.Errorf("uninstall task count %d: %w", n, ErrCorrupt)
	}
	return n, br, nil
}
