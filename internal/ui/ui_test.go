package ui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/msx/internal/shared"
	"github.com/desertthunder/msx/internal/upload"
)

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func press(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

// drain runs cmd and feeds its messages back into the model until no command remains.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 1000 {
			t.Fatal("upload did not finish")
		}
		_, cmd = m.Update(cmd())
	}
}

func writeManuscript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.docx")
	if err := os.WriteFile(path, []byte(strings.Repeat("m", 4096)), 0o644); err != nil {
		t.Fatalf("failed to write manuscript: %v", err)
	}
	return path
}

func TestFormEditing(t *testing.T) {
	t.Run("starts with one author row", func(t *testing.T) {
		m := NewModel(context.Background(), Options{})

		if m.editor.Len() != 1 {
			t.Fatalf("rows = %d, want 1", m.editor.Len())
		}
		if got := m.surface.Text("auth-0.author"); got != "Author 1" {
			t.Errorf("label = %q, want Author 1", got)
		}
		if got := m.surface.Text(upload.FilenameTarget); got != upload.NoFileText {
			t.Errorf("filename = %q, want %q", got, upload.NoFileText)
		}
		if view := m.View(); !strings.Contains(view, "Affiliation 1") {
			t.Errorf("form view missing row label:\n%s", view)
		}
	})

	t.Run("add focuses the new row", func(t *testing.T) {
		m := NewModel(context.Background(), Options{})
		press(m, tea.KeyCtrlN)

		if m.editor.Len() != 2 {
			t.Fatalf("rows = %d, want 2", m.editor.Len())
		}
		if m.focus != fixedFields+2 {
			t.Errorf("focus = %d, want %d", m.focus, fixedFields+2)
		}
		typeText(m, "Bohr, Niels")

		names, _ := m.authorValues()
		if names[1] != "Bohr, Niels" {
			t.Errorf("names = %q", names)
		}
		if ctl, ok := m.surface.Control("rem-0"); !ok || !ctl.Visible {
			t.Error("remove control should be visible with two rows")
		}
	})

	t.Run("removing the first row keeps the second row's text", func(t *testing.T) {
		m := NewModel(context.Background(), Options{})
		m.setFocus(fixedFields)
		typeText(m, "Curie, Marie")
		press(m, tea.KeyCtrlN)
		typeText(m, "Bohr, Niels")
		press(m, tea.KeyTab)
		typeText(m, "Copenhagen")

		m.setFocus(fixedFields)
		press(m, tea.KeyCtrlD)

		names, affiliations := m.authorValues()
		if len(names) != 1 || names[0] != "Bohr, Niels" || affiliations[0] != "Copenhagen" {
			t.Errorf("after remove names = %q affiliations = %q", names, affiliations)
		}
		if got := m.surface.Text("auth-0.author"); got != "Author 1" {
			t.Errorf("label = %q, want Author 1", got)
		}
		if ctl, _ := m.surface.Control("rem-0"); ctl.Visible || ctl.Enabled {
			t.Error("remove control should be hidden with one row")
		}
	})

	t.Run("cannot remove the last row", func(t *testing.T) {
		m := NewModel(context.Background(), Options{})
		m.setFocus(fixedFields)
		press(m, tea.KeyCtrlD)

		if m.editor.Len() != 1 {
			t.Errorf("rows = %d, want 1", m.editor.Len())
		}
	})

	t.Run("tab wraps around", func(t *testing.T) {
		m := NewModel(context.Background(), Options{})
		for range m.focusCount() {
			press(m, tea.KeyTab)
		}
		if m.focus != focusFile {
			t.Errorf("focus = %d, want %d", m.focus, focusFile)
		}
		press(m, tea.KeyShiftTab)
		if m.focus != m.focusCount()-1 {
			t.Errorf("focus = %d, want last slot", m.focus)
		}
	})

	t.Run("leaving the file input shows the selection", func(t *testing.T) {
		path := writeManuscript(t)
		m := NewModel(context.Background(), Options{})
		typeText(m, path)
		press(m, tea.KeyTab)

		if got := m.surface.Text(upload.FilenameTarget); got != "paper.docx" {
			t.Errorf("filename = %q, want paper.docx", got)
		}
	})
}

func TestSubmit(t *testing.T) {
	t.Run("missing file is rejected", func(t *testing.T) {
		m := NewModel(context.Background(), Options{FilePath: filepath.Join(t.TempDir(), "missing.docx")})
		if cmd := press(m, tea.KeyCtrlS); cmd != nil {
			t.Error("expected no command")
		}
		if !errors.Is(m.err, shared.ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", m.err)
		}
		if m.view != FormView {
			t.Errorf("view = %d, want FormView", m.view)
		}
	})

	t.Run("authors are validated before upload", func(t *testing.T) {
		m := NewModel(context.Background(), Options{FilePath: writeManuscript(t)})
		m.setFocus(fixedFields)
		typeText(m, "Curie, Marie")

		press(m, tea.KeyCtrlS)
		if !errors.Is(m.err, shared.ErrInvalidInput) || !strings.Contains(m.err.Error(), "affiliation") {
			t.Errorf("err = %v, want missing affiliation", m.err)
		}
		if m.session != nil {
			t.Error("no session should start")
		}
	})

	t.Run("uploads and shows the result", func(t *testing.T) {
		var hits atomic.Int32
		var gotAuthors, gotTitle string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			gotAuthors = strings.Join(r.MultipartForm.Value["authors"], "|")
			gotTitle = r.FormValue("title")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"sub-42"}`))
		}))
		defer ts.Close()

		m := NewModel(context.Background(), Options{
			Client:   upload.NewClient(ts.URL, ts.Client()),
			FilePath: writeManuscript(t),
		})
		m.setFocus(focusTitle)
		typeText(m, "Radium")
		m.setFocus(fixedFields)
		typeText(m, "Curie, Marie")
		press(m, tea.KeyTab)
		typeText(m, "Sorbonne")

		cmd := press(m, tea.KeyCtrlS)
		if m.view != UploadView {
			t.Fatalf("view = %d, want UploadView (err = %v)", m.view, m.err)
		}
		if !strings.Contains(m.View(), "Uploading paper.docx") {
			t.Errorf("upload view = %q", m.View())
		}

		drain(t, m, cmd)

		if m.view != ResultView {
			t.Fatalf("view = %d, want ResultView", m.view)
		}
		if m.session.State() != upload.Completed {
			t.Fatalf("state = %s, want completed", m.session.State())
		}
		if hits.Load() != 1 {
			t.Errorf("server hits = %d, want 1", hits.Load())
		}
		if gotAuthors != "Curie, Marie" || gotTitle != "Radium" {
			t.Errorf("server got authors %q title %q", gotAuthors, gotTitle)
		}
		if view := m.View(); !strings.Contains(view, "Upload complete") || !strings.Contains(view, "sub-42") {
			t.Errorf("result view = %q", view)
		}

		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
		if m.view != FormView || m.session != nil || m.editor.Len() != 1 {
			t.Error("restart should reset the form")
		}
	})

	t.Run("failure shows the retry notice once", func(t *testing.T) {
		var hits atomic.Int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			http.Error(w, "nope", http.StatusInternalServerError)
		}))
		defer ts.Close()

		m := NewModel(context.Background(), Options{
			Client:   upload.NewClient(ts.URL, ts.Client()),
			FilePath: writeManuscript(t),
		})
		m.rows[m.editor.Rows()[0].ID].author.SetValue("Curie, Marie")
		m.rows[m.editor.Rows()[0].ID].affiliation.SetValue("Sorbonne")

		drain(t, m, press(m, tea.KeyCtrlS))

		if m.session.State() != upload.Failed {
			t.Fatalf("state = %s, want failed", m.session.State())
		}
		notices := 0
		for _, msg := range m.surface.Messages(upload.MessageTarget) {
			if msg == upload.RetryMessage {
				notices++
			}
		}
		if notices != 1 {
			t.Errorf("retry notices = %d, want 1", notices)
		}
		if hits.Load() != 1 {
			t.Errorf("server hits = %d, want 1", hits.Load())
		}
		if !strings.Contains(m.View(), upload.RetryMessage) {
			t.Errorf("result view = %q", m.View())
		}
	})

	t.Run("ctrl+c quits from any view", func(t *testing.T) {
		m := NewModel(context.Background(), Options{})
		cmd := press(m, tea.KeyCtrlC)
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}
