// Package remote models the boundary to long-running generation stages.
//
// Each stage can be invoked synchronously (plain function call, "run" mode)
// or pushed as a non-blocking computation that yields a Future ("push"
// mode). Artifacts cross the boundary as File handles; the core never
// depends on how a file was fetched or stored, only on its local path.
package remote

// File is an opaque artifact handle. Every stage consumes and produces
// files through this interface; the only guaranteed property is a local
// filesystem path.
type File interface {
	Path() string
}

// LocalFile is a File backed directly by a path on the local filesystem.
type LocalFile struct {
	path string
}

// NewLocalFile wraps a local path in a File handle.
func NewLocalFile(path string) LocalFile {
	return LocalFile{path: path}
}

// Path returns the local filesystem path.
func (f LocalFile) Path() string { return f.path }
