// Package sqlite exports committed results into a SQLite database.
//
// The table holds one row per productive number:
//
//	CREATE TABLE productive (
//	    n        INTEGER PRIMARY KEY, -- the value, bit-cast to int64
//	    digits   INTEGER NOT NULL,
//	    chunk_hi INTEGER NOT NULL     -- exclusive end of the chunk that found it
//	);
//
// SQLite integers are signed, so values at or above 2^63 are stored as their
// two's-complement int64 and converted back on read. Inserts use INSERT OR
// IGNORE; replaying a chunk after a resume leaves the table unchanged.
package sqlite
