// Package archive ships compressed snapshots of a search to a blob store.
//
// A snapshot is the result file (compressed with zstd or lz4), the checkpoint
// record and a manifest describing both. Blobs are uploaded first and the
// manifest is published last, through a blobstore.Committer when the store has
// one and as a LATEST pointer blob otherwise. A reader that follows the pointer
// therefore always finds a complete snapshot.
//
//	a := archive.New(store, func(o *archive.Options) {
//	    o.Compression = archive.LZ4
//	    o.Keep = 3
//	})
//	m, err := a.Snapshot(ctx, "found.txt", "state.json")
//
// Restore brings a snapshot back onto local disk, verifying sizes and checksums.
package archive
