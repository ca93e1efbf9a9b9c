package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// ErrDecompress is returned when a component blob cannot be expanded.
var ErrDecompress = errors.New("decompression failed")

// Compress packs a component task stream as an LZ4 frame. An empty stream
// compresses to an empty blob.
func Compress(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4.Level5)); err != nil {
		return nil, fmt.Errorf("configure compressor: %w", err)
	}
	if _, err := zw.Write(payload); err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish compression: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress expands a blob produced by Compress. The result must be exactly
// expected bytes long.
func Decompress(compressed []byte, expected int64) ([]byte, error) {
	if len(compressed) == 0 {
		if expected != 0 {
			return nil, fmt.Errorf("%w: empty blob, want %d bytes", ErrDecompress, expected)
		}
		return nil, nil
	}
	zr := lz4.NewReader(bytes.NewReader(compressed))
	out := bytes.NewBuffer(make([]byte, 0, max(expected, 0)))
	if _, err := io.Copy(out, zr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompress, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("%w: blob of %d bytes expanded to nothing", ErrDecompress, len(compressed))
	}
	if int64(out.Len()) != expected {
		return nil, fmt.Errorf("%w: expanded to %d bytes, want %d", ErrDecompress, out.Len(), expected)
	}
	return out.Bytes(), nil
}
