package storage

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Local is a FileStore over a directory on disk.
type Local struct {
	root string
}

// NewLocal roots a store at dir, creating the directory if needed.
// Relative dirs are resolved against the working directory once, up
// front, so the root does not drift if the process later chdirs.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Local{root: abs}, nil
}

// Root returns the absolute directory the store writes under.
func (l *Local) Root() string { return l.root }

func (l *Local) resolve(path string) string {
	return filepath.Join(l.root, filepath.FromSlash(path))
}

// Write stages content in a hidden temp file next to the destination
// and renames it into place on Close. An interrupted export never
// leaves a truncated report or snapshot at the final path.
func (l *Local) Write(_ context.Context, path string) (io.WriteCloser, error) {
	dest := l.resolve(path)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return nil, err
	}
	return &stagedFile{tmp: tmp, dest: dest}, nil
}

// Read opens the named file. os.Open's error already wraps
// os.ErrNotExist for missing files.
func (l *Local) Read(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(l.resolve(path))
}

// List walks the root and returns the files under prefix in path order.
// Dotfiles are skipped; staged writes live in them.
func (l *Local) List(_ context.Context, prefix string) ([]Info, error) {
	var infos []Info
	err := fs.WalkDir(os.DirFS(l.root), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if !strings.HasPrefix(path, prefix) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		infos = append(infos, Info{Path: path, Size: fi.Size(), ModTime: fi.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(a.Path, b.Path) })
	return infos, nil
}

// stagedFile writes to a temp file and renames it over dest on Close.
type stagedFile struct {
	tmp  *os.File
	dest string
}

func (f *stagedFile) Write(p []byte) (int, error) { return f.tmp.Write(p) }

func (f *stagedFile) Close() error {
	name := f.tmp.Name()
	if err := f.tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, f.dest); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

var _ FileStore = (*Local)(nil)
