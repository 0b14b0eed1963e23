// package storage keeps uploaded manuscript bytes on the local filesystem.
//
// Files are addressed by a flat key (the submission ID plus the original
// extension). Keys containing path separators are rejected so a client
// controlled filename can never escape the base directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/msx/internal/shared"
)

const DefaultDir = "./data/uploads"

// Local stores files under a single base directory.
type Local struct {
	dir string
}

// New creates the base directory if needed.
func New(dir string) (*Local, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Dir returns the base directory.
func (s *Local) Dir() string { return s.dir }

// Path resolves key to its location on disk.
func (s *Local) Path(key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, key), nil
}

// Save writes data under key and returns the number of bytes written.
//
// Content goes to a temporary file first and is renamed into place, so a
// failed copy never leaves a partial file under key.
func (s *Local) Save(ctx context.Context, key string, data io.Reader) (int64, error) {
	path, err := s.Path(key)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, &contextReader{ctx: ctx, r: data})
	if err != nil {
		tmp.Close()
		return n, fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return n, fmt.Errorf("rename file: %w", err)
	}
	return n, nil
}

// Open returns a reader for the file stored under key.
func (s *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Delete removes the file stored under key. Missing files are not an error.
func (s *Local) Delete(_ context.Context, key string) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func validKey(key string) error {
	switch {
	case key == "", key == ".", key == "..":
		return fmt.Errorf("%w: invalid storage key %q", shared.ErrInvalidArgument, key)
	case strings.ContainsAny(key, `/\`):
		return fmt.Errorf("%w: storage key %q contains a path separator", shared.ErrInvalidArgument, key)
	}
	return nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
