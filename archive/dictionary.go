package archive

import (
	"sort"
	"strings"
)

// TemporaryPrefix marks variables that are never persisted into an archive
// or an uninstaller image.
const TemporaryPrefix = "@"

// Dictionary maps variable names to values.
type Dictionary map[string]string

// Value returns the value for key, or "" if it is not set.
func (d Dictionary) Value(key string) string {
	return d[key]
}

// SetValue sets key to value.
func (d Dictionary) SetValue(key, value string) {
	d[key] = value
}

// Contains reports whether key is set, even to an empty value.
func (d Dictionary) Contains(key string) bool {
	_, ok := d[key]
	return ok
}

// Clone returns an independent copy.
func (d Dictionary) Clone() Dictionary {
	c := make(Dictionary, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// RemoveTemporaryKeys deletes every key starting with TemporaryPrefix.
func (d Dictionary) RemoveTemporaryKeys() {
	for k := range d {
		if IsTemporaryKey(k) {
			delete(d, k)
		}
	}
}

// MergeMissing copies entries of other whose keys are not already present.
// Existing values always win.
func (d Dictionary) MergeMissing(other Dictionary) {
	for k, v := range other {
		if _, ok := d[k]; !ok {
			d[k] = v
		}
	}
}

// Keys returns the keys in sorted order.
func (d Dictionary) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsTemporaryKey reports whether key is excluded from persistence.
func IsTemporaryKey(key string) bool {
	return strings.HasPrefix(key, TemporaryPrefix)
}
