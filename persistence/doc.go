// Package persistence provides crash-safe file replacement.
//
// SaveToFile writes through a temporary file in the target's directory, fsyncs it,
// renames it over the target and fsyncs the directory. A reader therefore observes
// either the previous content or the complete new content, never a mix, and a crash
// at any point leaves one of the two on disk.
package persistence
