// Package display defines the sink that page components render into.
//
// A [Surface] receives three kinds of updates, addressed by element identifier:
//   - text replacement (labels, the selected file name)
//   - control state (enabled and visible flags of a button)
//   - appended status lines (upload progress, error notices)
//
// Surfaces are driven from a single event loop and are not safe for concurrent use.
package display

import (
	"fmt"
	"io"
)

// Surface is the abstract display sink.
type Surface interface {
	SetText(target, text string)                     // SetText replaces the text of target
	SetControl(target string, enabled, visible bool) // SetControl sets the enabled and visible state of a control
	Append(target, text string)                      // Append adds a status line beneath target
}

// Control is the recorded state of a control element.
type Control struct {
	Enabled bool
	Visible bool
}

// Buffer is an in-memory [Surface] that records the latest state of every target.
type Buffer struct {
	text     map[string]string
	controls map[string]Control
	messages map[string][]string
}

var _ Surface = (*Buffer)(nil)

// NewBuffer creates an empty [Buffer].
func NewBuffer() *Buffer {
	return &Buffer{
		text:     make(map[string]string),
		controls: make(map[string]Control),
		messages: make(map[string][]string),
	}
}

func (b *Buffer) SetText(target, text string) { b.text[target] = text }

func (b *Buffer) SetControl(target string, enabled, visible bool) {
	b.controls[target] = Control{Enabled: enabled, Visible: visible}
}

func (b *Buffer) Append(target, text string) {
	b.messages[target] = append(b.messages[target], text)
}

// Text returns the current text of target.
func (b *Buffer) Text(target string) string { return b.text[target] }

// Control returns the state of a control and whether it was ever set.
func (b *Buffer) Control(target string) (Control, bool) {
	c, ok := b.controls[target]
	return c, ok
}

// Messages returns a copy of the lines appended to target, oldest first.
func (b *Buffer) Messages(target string) []string {
	return append([]string(nil), b.messages[target]...)
}

// Last returns the most recent line appended to target, or "".
func (b *Buffer) Last(target string) string {
	msgs := b.messages[target]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

// ClearMessages removes all appended lines for target.
func (b *Buffer) ClearMessages(target string) {
	delete(b.messages, target)
}

// Discard is a [Surface] that drops every update.
type Discard struct{}

func (Discard) SetText(string, string)        {}
func (Discard) SetControl(string, bool, bool) {}
func (Discard) Append(string, string)         {}

// Writer is a [Surface] for line-oriented output such as a CLI.
//
// Appended lines and text changes of the watched targets are printed;
// control state is ignored. Write errors are dropped.
type Writer struct {
	w       io.Writer
	watched map[string]string
}

var _ Surface = (*Writer)(nil)

// NewWriter prints to w. Only SetText calls on a target listed in labels are
// printed, as "label: text".
func NewWriter(w io.Writer, labels map[string]string) *Writer {
	return &Writer{w: w, watched: labels}
}

func (s *Writer) SetText(target, text string) {
	if label, ok := s.watched[target]; ok {
		fmt.Fprintf(s.w, "%s: %s\n", label, text)
	}
}

func (s *Writer) SetControl(string, bool, bool) {}

func (s *Writer) Append(_, text string) {
	fmt.Fprintln(s.w, text)
}
