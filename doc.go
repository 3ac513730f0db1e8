// Package prodsearch searches integer ranges for productive numbers.
//
// A positive integer n is productive when n+1 is prime and, for every way of
// cutting its decimal digits into a non-empty prefix A and suffix B, A*B+1 is
// prime as well. 2026 is productive: 2027 is prime, and so are 202*6+1,
// 20*26+1 and 2*26+1.
//
// # Quick Start
//
//	s, _ := prodsearch.New(
//	    prodsearch.WithOutputPath("found.txt"),
//	    prodsearch.WithStatePath("state.json"),
//	)
//	report, err := s.Run(ctx, prodsearch.Range{Start: 1, Limit: 1_000_000_000})
//
// # Durability
//
// The range is scanned in chunks. After a chunk completes its matches are
// appended to the output file and synced, then the checkpoint is replaced
// atomically. Cancelling ctx stops the search at the next chunk boundary; a
// later Run with the same paths resumes where the last checkpoint points and
// produces the same output as an uninterrupted run.
//
// # Parallelism
//
// Each chunk is split into disjoint ordered slices evaluated concurrently. The
// slices are merged by position, so the output does not depend on the number of
// workers.
//
// # Archiving
//
// WithArchiver uploads compressed snapshots of the output and checkpoint to a
// blob store (local, MinIO or S3) every N checkpoints; see package archive.
package prodsearch
