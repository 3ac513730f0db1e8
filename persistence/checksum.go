package persistence

import (
	"hash"
	"hash/crc32"
	"io"
)

// CRC32Table is the IEEE polynomial table used for content checksums.
//
// CRC32 detects accidental corruption (truncated uploads, bit rot). It is not a
// tamper check.
var CRC32Table = crc32.MakeTable(crc32.IEEE)

// Checksum returns the CRC32 of data.
func Checksum(data []byte) uint32 {
	return crc32.Checksum(data, CRC32Table)
}

// ChecksumWriter wraps an io.Writer and computes a running CRC32 checksum.
type ChecksumWriter struct {
	w    io.Writer
	hash hash.Hash32
	n    int64
}

// NewChecksumWriter creates a new checksumming writer.
func NewChecksumWriter(w io.Writer) *ChecksumWriter {
	return &ChecksumWriter{
		w:    w,
		hash: crc32.New(CRC32Table),
	}
}

// Write implements io.Writer.
func (cw *ChecksumWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	_, _ = cw.hash.Write(p[:n])
	cw.n += int64(n)
	return n, err
}

// Sum returns the checksum of everything written so far.
func (cw *ChecksumWriter) Sum() uint32 { return cw.hash.Sum32() }

// Len returns the number of bytes written so far.
func (cw *ChecksumWriter) Len() int64 { return cw.n }
