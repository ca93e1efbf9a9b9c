package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"golang.org/x/text/encoding/unicode"
)

// maxFieldLength bounds length prefixes read from an image. Anything larger is
// treated as corruption rather than an allocation request.
const maxFieldLength = 1 << 31

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// ErrCorrupt is returned when a length prefix or record cannot be valid.
var ErrCorrupt = errors.New("corrupt archive data")

// AppendInt writes v as a fixed-width 64-bit integer in native byte order.
func AppendInt(w io.Writer, v int64) error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], uint64(v))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write int: %w", err)
	}
	return nil
}

// RetrieveInt reads a 64-bit integer written by AppendInt.
func RetrieveInt(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("read int: %w", shortRead(err))
	}
	return int64(binary.NativeEndian.Uint64(buf[:])), nil
}

// AppendByteArray writes the length of b followed by its bytes.
func AppendByteArray(w io.Writer, b []byte) error {
	if err := AppendInt(w, int64(len(b))); err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write bytes: %w", err)
	}
	return nil
}

// RetrieveByteArray reads a byte array written by AppendByteArray.
func RetrieveByteArray(r io.Reader) ([]byte, error) {
	n, err := RetrieveInt(r)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > maxFieldLength {
		return nil, fmt.Errorf("byte array length %d: %w", n, ErrCorrupt)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("read bytes: %w", shortRead(err))
	}
	return b, nil
}

// AppendString writes s as a count of UTF-16 code units followed by the
// little-endian units themselves. There is no terminator.
func AppendString(w io.Writer, s string) error {
	encoded, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return fmt.Errorf("encode string: %w", err)
	}
	if err := AppendInt(w, int64(len(encoded)/2)); err != nil {
		return err
	}
	if _, err := w.Write(encoded); err != nil {
		return fmt.Errorf("write string: %w", err)
	}
	return nil
}

// RetrieveString reads a string written by AppendString.
func RetrieveString(r io.Reader) (string, error) {
	units, err := RetrieveInt(r)
	if err != nil {
		return "", err
	}
	if units < 0 || units > maxFieldLength/2 {
		return "", fmt.Errorf("string length %d: %w", units, ErrCorrupt)
	}
	raw := make([]byte, units*2)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", fmt.Errorf("read string: %w", shortRead(err))
	}
	decoded, err := utf16le.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode string: %w", err)
	}
	return string(decoded), nil
}

// AppendDictionary writes the entry count followed by key/value string pairs.
// Keys are written in sorted order so that identical dictionaries produce
// identical bytes.
func AppendDictionary(w io.Writer, d Dictionary) error {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if err := AppendInt(w, int64(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := AppendString(w, k); err != nil {
			return fmt.Errorf("dictionary key %q: %w", k, err)
		}
		if err := AppendString(w, d[k]); err != nil {
			return fmt.Errorf("dictionary value %q: %w", k, err)
		}
	}
	return nil
}

// RetrieveDictionary reads a dictionary written by AppendDictionary.
func RetrieveDictionary(r io.Reader) (Dictionary, error) {
	n, err := RetrieveInt(r)
	if err != nil {
		return nil, fmt.Errorf("dictionary size: %w", err)
	}
	if n < 0 || n > maxFieldLength {
		return nil, fmt.Errorf("dictionary size %d: %w", n, ErrCorrupt)
	}
	d := make(Dictionary, n)
	for i := int64(0); i < n; i++ {
		k, err := RetrieveString(r)
		if err != nil {
			return nil, fmt.Errorf("dictionary entry %d key: %w", i, err)
		}
		v, err := RetrieveString(r)
		if err != nil {
			return nil, fmt.Errorf("dictionary entry %d value: %w", i, err)
		}
		d[k] = v
	}
	return d, nil
}

// shortRead turns a clean EOF in the middle of a record into ErrUnexpectedEOF.
func shortRead(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
