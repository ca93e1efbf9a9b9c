package platform

import "errors"

// ErrMappingTooLarge is returned for files that do not fit the address space.
var ErrMappingTooLarge = errors.New("file too large to map")

// Bytes returns the mapped content. Writes go straight to the file.
func (m *Mapping) Bytes() []byte { return m.data }
