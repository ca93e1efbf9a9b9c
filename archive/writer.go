package archive

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Writer appends archive sections to an image while tracking the absolute
// offset of everything it writes.
type Writer struct {
	bw     *bufio.Writer
	file   *os.File
	offset int64
}

// Create creates (or truncates) the image at path.
func Create(path string, perm os.FileMode) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}
	w := NewWriter(f)
	w.file = f
	return w, nil
}

// NewWriter writes an image to w, starting at offset zero.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// Write writes raw bytes at the current offset.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.bw.Write(p)
	w.offset += int64(n)
	return n, err
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int64 {
	return w.offset
}

// CopyCode copies exactly n bytes of executable code from src.
func (w *Writer) CopyCode(src io.Reader, n int64) error {
	copied, err := io.CopyN(w, src, n)
	if err != nil {
		return fmt.Errorf("copy code (%d of %d bytes): %w", copied, n, shortRead(err))
	}
	return nil
}

// WriteBlob writes a length-prefixed byte array and returns its start offset.
func (w *Writer) WriteBlob(b []byte) (int64, error) {
	start := w.offset
	if err := AppendByteArray(w, b); err != nil {
		return 0, fmt.Errorf("write blob: %w", err)
	}
	return start, nil
}

// WriteDictionary writes d and returns its start offset.
func (w *Writer) WriteDictionary(d Dictionary) (int64, error) {
	start := w.offset
	if err := AppendDictionary(w, d); err != nil {
		return 0, fmt.Errorf("write dictionary: %w", err)
	}
	return start, nil
}

// WriteOffsets writes a table of offsets and returns its start offset.
func (w *Writer) WriteOffsets(offsets []int64) (int64, error) {
	start := w.offset
	for i, off := range offsets {
		if err := AppendInt(w, off); err != nil {
			return 0, fmt.Errorf("write offset %d: %w", i, err)
		}
	}
	return start, nil
}

// WriteTrailer writes the fixed-size trailer. It must be the last write.
func (w *Writer) WriteTrailer(t Trailer) error {
	if _, err := w.Write(t.Encode()); err != nil {
		return fmt.Errorf("write trailer: %w", err)
	}
	return nil
}

// Close flushes buffered data and closes the file opened by Create.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		if w.file != nil {
			w.file.Close()
		}
		return fmt.Errorf("flush image: %w", err)
	}
	if w.file == nil {
		return nil
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close image: %w", err)
	}
	return nil
}
