package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/desertthunder/msx/internal/display"
	"github.com/desertthunder/msx/internal/shared"
)

// File is the single selected payload of an upload.
type File struct {
	Name string
	Size int64
	Type string
	open func() (io.ReadCloser, error)
}

// OpenFile describes the regular file at path. The content is read lazily when the upload starts.
func OpenFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", shared.ErrInvalidInput, path)
	}

	contentType, err := detectType(path)
	if err != nil {
		return nil, err
	}

	return &File{
		Name: filepath.Base(path),
		Size: info.Size(),
		Type: contentType,
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// NewFile wraps in-memory content as a [File].
func NewFile(name string, data []byte) *File {
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &File{
		Name: name,
		Size: int64(len(data)),
		Type: contentType,
		open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// Open returns a fresh reader over the file content.
func (f *File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("%w: file %q has no content", shared.ErrInvalidInput, f.Name)
	}
	return f.open()
}

// ShowSelection renders the selected file name, or a placeholder when nothing is selected.
func ShowSelection(s display.Surface, f *File) {
	if f == nil {
		s.SetText(FilenameTarget, NoFileText)
		return
	}
	s.SetText(FilenameTarget, f.Name)
}

func detectType(path string) (string, error) {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("failed to read file header: %w", err)
	}
	return http.DetectContentType(head[:n]), nil
}
