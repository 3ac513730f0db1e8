package archive

import "time"

// ManifestVersion is the manifest layout written by Snapshot.
const ManifestVersion = 1

// Object describes one uploaded blob.
type Object struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`        // uncompressed
	StoredSize int64  `json:"stored_size"` // as uploaded
	CRC32      uint32 `json:"crc32"`       // of the uncompressed bytes
}

// Manifest describes a complete snapshot.
type Manifest struct {
	Version      int         `json:"version"`
	Sequence     uint64      `json:"sequence"`
	CreatedAt    time.Time   `json:"created_at"`
	Compression  Compression `json:"compression"`
	NextPosition uint64      `json:"next_position"`
	FoundCount   uint64      `json:"found_count"`
	RunID        string      `json:"run_id,omitempty"`
	Results      Object      `json:"results"`
	State        Object      `json:"state"`
}
