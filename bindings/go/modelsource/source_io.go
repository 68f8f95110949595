package modelsource

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/opencontainers/go-digest"
)

const DefaultFileIOBufferSize = 1 << 16 // 64 KiB, models are small

var ioBufPool = sync.Pool{
	New: func() interface{} {
		buffer := make([]byte, DefaultFileIOBufferSize)
		return &buffer
	},
}

// Copy copies the content of src to dst.
func Copy(dst io.Writer, src ModelSource) (err error) {
	data, err := src.ReadCloser()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, data.Close())
	}()

	buf := ioBufPool.Get().(*[]byte)
	defer ioBufPool.Put(buf)
	if _, err := io.CopyBuffer(dst, data, *buf); err != nil {
		return fmt.Errorf("failed to copy model %s: %w", src.Location(), err)
	}
	return nil
}

// CopyToPath copies the content of src to a file at path, creating missing parent directories.
// An existing file is replaced atomically.
func CopyToPath(src ModelSource, path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, os.Remove(tmp.Name()))
		}
	}()

	if err := Copy(tmp, src); err != nil {
		return errors.Join(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move model to %s: %w", path, err)
	}
	return nil
}

// Digest computes the canonical (sha256) digest over the current content of src.
func Digest(src ModelSource) (_ digest.Digest, err error) {
	data, err := src.ReadCloser()
	if err != nil {
		return "", err
	}
	defer func() {
		err = errors.Join(err, data.Close())
	}()
	dig, err := digest.Canonical.FromReader(data)
	if err != nil {
		return "", fmt.Errorf("failed to digest model %s: %w", src.Location(), err)
	}
	return dig, nil
}
