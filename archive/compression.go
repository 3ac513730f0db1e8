package archive

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression names the codec applied to the result file.
type Compression string

const (
	// None stores the result file as is.
	None Compression = "none"
	// LZ4 is fast with a moderate ratio.
	LZ4 Compression = "lz4"
	// Zstd compresses better at a higher CPU cost.
	Zstd Compression = "zstd"
)

// ParseCompression validates a compression name. The empty string selects Zstd.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case "":
		return Zstd, nil
	case None, LZ4, Zstd:
		return Compression(s), nil
	default:
		return "", fmt.Errorf("archive: unknown compression %q", s)
	}
}

// Ext returns the file name suffix for the compression.
func (c Compression) Ext() string {
	switch c {
	case LZ4:
		return ".lz4"
	case Zstd:
		return ".zst"
	default:
		return ""
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// compressor wraps dst; Close flushes the final frame.
func compressor(dst io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case Zstd:
		return zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case LZ4:
		return lz4.NewWriter(dst), nil
	case None:
		return nopWriteCloser{dst}, nil
	default:
		return nil, fmt.Errorf("archive: unknown compression %q", c)
	}
}

func decompressor(src io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case Zstd:
		dec, err := zstd.NewReader(src)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(src)), nil
	case None:
		return io.NopCloser(src), nil
	default:
		return nil, fmt.Errorf("archive: unknown compression %q", c)
	}
}
