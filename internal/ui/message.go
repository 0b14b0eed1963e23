package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/msx/internal/upload"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgUploadEvent MsgKind = iota
	MsgUploadDone
)

// uploadEventMsg is the constructor for [MsgUploadEvent]
func uploadEventMsg(ev upload.Event) Msg {
	return Msg{kind: MsgUploadEvent, data: ev}
}

// uploadDoneMsg is the constructor for [MsgUploadDone], sent once the event channel is closed
func uploadDoneMsg() Msg {
	return Msg{kind: MsgUploadDone}
}
