// Package modelsource provides the handle through which a model builder reads a
// resolved project model descriptor.
package modelsource

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ModelSource gives access to the content and the location of a project model descriptor.
type ModelSource interface {
	// ReadCloser opens a new, independent stream over the current content of the model.
	// The caller is responsible for closing it.
	ReadCloser() (io.ReadCloser, error)
	// Location is the absolute location of the model. It is stable for the lifetime of the source
	// and is used for diagnostics and for resolving relative references to sibling models.
	Location() string
}

// File is a ModelSource over a file on the operating system's filesystem.
// It is immutable and does not hold any resources until ReadCloser is called.
type File struct {
	path string
}

var _ ModelSource = (*File)(nil)

// NewFile returns a ModelSource for the file at path. Relative paths are made absolute.
// The file is not opened and is not required to exist yet.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("path must not be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve absolute path of %q: %w", path, err)
	}
	return &File{path: abs}, nil
}

func (f *File) ReadCloser() (io.ReadCloser, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model %s: %w", f.path, err)
	}
	return file, nil
}

func (f *File) Location() string {
	return f.path
}

func (f *File) String() string {
	return f.path
}
