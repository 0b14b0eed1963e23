package display

import (
	"bytes"
	"testing"
)

func TestBuffer(t *testing.T) {
	t.Run("records latest text and control state", func(t *testing.T) {
		b := NewBuffer()
		b.SetText("auth-0.author", "Author 1")
		b.SetText("auth-0.author", "Author 2")
		b.SetControl("rem-0", true, false)

		if got := b.Text("auth-0.author"); got != "Author 2" {
			t.Errorf("Text() = %q, want Author 2", got)
		}
		if got := b.Text("missing"); got != "" {
			t.Errorf("Text(missing) = %q, want empty", got)
		}

		c, ok := b.Control("rem-0")
		if !ok || !c.Enabled || c.Visible {
			t.Errorf("Control() = %+v, %v", c, ok)
		}
		if _, ok := b.Control("rem-9"); ok {
			t.Error("Control(rem-9) should be unset")
		}
	})

	t.Run("appends messages in order", func(t *testing.T) {
		b := NewBuffer()
		if got := b.Last("manuscript"); got != "" {
			t.Errorf("Last() on empty = %q", got)
		}

		b.Append("manuscript", "Progress: 10%")
		b.Append("manuscript", "Progress: 20%")

		msgs := b.Messages("manuscript")
		if len(msgs) != 2 || msgs[0] != "Progress: 10%" {
			t.Errorf("Messages() = %q", msgs)
		}
		if got := b.Last("manuscript"); got != "Progress: 20%" {
			t.Errorf("Last() = %q", got)
		}

		msgs[0] = "mutated"
		if b.Messages("manuscript")[0] != "Progress: 10%" {
			t.Error("Messages() should return a copy")
		}

		b.ClearMessages("manuscript")
		if len(b.Messages("manuscript")) != 0 {
			t.Error("ClearMessages() left messages behind")
		}
	})
}

func TestWriter(t *testing.T) {
	var out bytes.Buffer
	w := NewWriter(&out, map[string]string{"filename": "File"})

	w.SetText("filename", "paper.docx")
	w.SetText("auth-0.author", "Author 1")
	w.SetControl("rem-0", true, true)
	w.Append("manuscript", "Progress: 50%")

	want := "File: paper.docx\nProgress: 50%\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestDiscard(t *testing.T) {
	var s Surface = Discard{}
	s.SetText("a", "b")
	s.SetControl("a", true, true)
	s.Append("a", "b")
}
