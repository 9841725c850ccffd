// Package storage keeps uploaded file bodies on the local filesystem.
package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when a stored name has no file behind it.
var ErrNotFound = errors.New("stored file not found")

// Local stores files flat under one directory.
type Local struct {
	dir string
}

// NewLocal creates dir if needed.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "resolve upload dir")
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &Local{dir: abs}, nil
}

// NewName returns a fresh uuid name keeping the extension of original.
func NewName(original string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(filepath.Base(original)))
}

// Save writes body under name and returns the number of bytes written.
// A partially written file is removed.
func (l *Local) Save(name string, body io.Reader) (int64, error) {
	path, err := l.path(name)
	if err != nil {
		return 0, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, errors.Wrap(err, "create stored file")
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, errors.Wrap(err, "write stored file")
	}
	return n, nil
}

func (l *Local) Open(name string) (*os.File, error) {
	path, err := l.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "open stored file")
	}
	return f, nil
}

// Delete removes name; a missing file is not an error.
func (l *Local) Delete(name string) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete stored file")
	}
	return nil
}

// path resolves name inside the upload directory and refuses anything that
// would land outside it.
func (l *Local) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", errors.Errorf("invalid stored file name %q", name)
	}
	path := filepath.Join(l.dir, name)
	rel, err := filepath.Rel(l.dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("stored file name %q escapes upload dir", name)
	}
	return path, nil
}
