// Package fs provides the filesystem seam used by the checkpoint manager and the
// result stream.
//
// The package defines two interfaces:
//
//   - [File]: an open file with read/write/seek/sync capabilities
//   - [FileSystem]: open, remove, rename, stat, truncate and directory sync
//
// # Implementations
//
//   - [LocalFS]: production implementation on top of the os package
//   - [FaultyFS]: fault injection for tests (failed writes, fsyncs, renames)
//
// # Usage
//
// Production code uses fs.Default:
//
//	f, err := fs.Default.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
//
// Tests wrap it to make the next checkpoint rename fail:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("state.json", fs.Fault{FailOnRename: true})
//
// Operations take no context.Context. Local syscalls are not interruptible and the
// scanner only touches the filesystem between chunks.
package fs
