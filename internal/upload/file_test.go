package upload

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/msx/internal/display"
	"github.com/desertthunder/msx/internal/shared"
)

func TestOpenFile(t *testing.T) {
	t.Run("describes a regular file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "paper.pdf")
		if err := os.WriteFile(path, []byte("%PDF-1.4 body"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		f, err := OpenFile(path)
		if err != nil {
			t.Fatalf("OpenFile() error = %v", err)
		}
		if f.Name != "paper.pdf" {
			t.Errorf("Name = %q, want paper.pdf", f.Name)
		}
		if f.Size != 13 {
			t.Errorf("Size = %d, want 13", f.Size)
		}
		if f.Type != "application/pdf" {
			t.Errorf("Type = %q, want application/pdf", f.Type)
		}

		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		if string(data) != "%PDF-1.4 body" {
			t.Errorf("content = %q", data)
		}
	})

	t.Run("sniffs unknown extensions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.msxdata")
		if err := os.WriteFile(path, []byte("plain words"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		f, err := OpenFile(path)
		if err != nil {
			t.Fatalf("OpenFile() error = %v", err)
		}
		if f.Type != "text/plain; charset=utf-8" {
			t.Errorf("Type = %q, want text/plain; charset=utf-8", f.Type)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := OpenFile(filepath.Join(t.TempDir(), "nope.docx"))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("OpenFile() error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		_, err := OpenFile(t.TempDir())
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("OpenFile() error = %v, want ErrInvalidInput", err)
		}
	})
}

func TestFileWithoutContent(t *testing.T) {
	f := &File{Name: "empty"}
	if _, err := f.Open(); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("Open() error = %v, want ErrInvalidInput", err)
	}
}

func TestShowSelection(t *testing.T) {
	buf := display.NewBuffer()

	ShowSelection(buf, nil)
	if got := buf.Text(FilenameTarget); got != NoFileText {
		t.Errorf("filename text = %q, want %q", got, NoFileText)
	}

	ShowSelection(buf, NewFile("paper.docx", []byte("x")))
	if got := buf.Text(FilenameTarget); got != "paper.docx" {
		t.Errorf("filename text = %q, want paper.docx", got)
	}
}
