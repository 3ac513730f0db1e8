// Package resultlog maintains the append-only result file: one decimal integer per
// line, strictly increasing.
//
// A run appends a chunk's results and fsyncs them before the checkpoint that
// covers the chunk is saved. After a crash the file may therefore hold a torn
// final line or results of a chunk whose checkpoint never landed. Open removes
// both and then requires the remaining line count to equal the checkpoint's
// found count.
package resultlog
