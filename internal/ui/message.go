package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/biosync/internal/tasks"
)

// MsgKind enumerates all message types in the status view.
type MsgKind int

// Msg represents all possible messages in the status view (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSchedulerUpdate MsgKind = iota
	MsgSchedulerDone
)

// schedulerUpdateMsg is the constructor for [MsgSchedulerUpdate]
func schedulerUpdateMsg(update tasks.Update) Msg {
	return Msg{kind: MsgSchedulerUpdate, data: update}
}

// schedulerDoneMsg is the constructor for [MsgSchedulerDone]
func schedulerDoneMsg(err error) Msg {
	return Msg{kind: MsgSchedulerDone, data: err}
}
