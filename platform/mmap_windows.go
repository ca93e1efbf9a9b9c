//go:build windows

package platform

import (
	"fmt"
	"math"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Mapping is a shared read/write memory map of a whole file.
type Mapping struct {
	f      *os.File
	handle windows.Handle
	addr   uintptr
	data   []byte
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

	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READWRITE,
		uint32(uint64(size)>>32), uint32(size), nil)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create mapping for %s: %w", path, err)
	}
	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(h)
		f.Close()
		return nil, fmt.Errorf("map view of %s: %w", path, err)
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
	return &Mapping{f: f, handle: h, addr: addr, data: data}, nil
}

// Unmap flushes the view and closes the mapping and the file.
func (m *Mapping) Unmap() error {
	var firstErr error
	if m.addr != 0 {
		if err := windows.FlushViewOfFile(m.addr, uintptr(len(m.data))); err != nil {
			firstErr = fmt.Errorf("flush view: %w", err)
		}
		if err := windows.UnmapViewOfFile(m.addr); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("unmap view: %w", err)
		}
		m.addr = 0
		m.data = nil
	}
	if m.handle != 0 {
		windows.CloseHandle(m.handle)
		m.handle = 0
	}
	if m.f != nil {
		if err := m.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.f = nil
	}
	return firstErr
}
