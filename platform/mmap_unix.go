//go:build linux || darwin

package platform

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

// Mapping is a shared read/write memory map of a whole file.
type Mapping struct {
	f    *os.File
	data []byte
}

// MapFile maps path read/write. An empty file yields an empty mapping.
func MapFile(path string) (*Mapping, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()
	if size == 0 {
		return &Mapping{f: f}, nil
	}
	if size > math.MaxInt {
		f.Close()
		return nil, fmt.Errorf("map %s: %w", path, ErrMappingTooLarge)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	return &Mapping{f: f, data: data}, nil
}

// Unmap flushes the mapping and closes the file.
func (m *Mapping) Unmap() error {
	var firstErr error
	if m.data != nil {
		if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
			firstErr = fmt.Errorf("sync mapping: %w", err)
		}
		if err := unix.Munmap(m.data); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("unmap: %w", err)
		}
		m.data = nil
	}
	if m.f != nil {
		if err := m.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.f = nil
	}
	return firstErr
}
