// Package storage holds the destinations muse exports to. Rendered
// reports and state snapshots go through the FileStore interface, which
// hides whether they land in a directory on disk or an S3-compatible
// bucket.
package storage

import (
	"context"
	"io"
	"time"
)

// Info describes one stored file.
type Info struct {
	// Path is forward-slash separated, relative to the store root.
	Path string
	// Size is the file size in bytes.
	Size int64
	// ModTime is zero when the backend does not track one.
	ModTime time.Time
}

// FileStore is the destination side of an export. Paths are
// forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Write opens the named file for writing, replacing any previous
	// content and creating parent directories as needed. The data is
	// not durable until the returned WriteCloser is closed.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Read opens the named file. The error wraps os.ErrNotExist when
	// no such file is stored.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// List returns the files whose paths start with prefix, sorted by
	// path. An empty prefix lists the whole store.
	List(ctx context.Context, prefix string) ([]Info, error)
}

// WriteFile stores data under path in one call.
func WriteFile(ctx context.Context, st FileStore, path string, data []byte) error {
	w, err := st.Write(ctx, path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// ReadFile returns the whole content stored under path.
func ReadFile(ctx context.Context, st FileStore, path string) ([]byte, error) {
	r, err := st.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
