package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/biosync/internal/tasks"
)

const historySize = 20

// StatusModel renders the scheduler's progress while `run --tui` is active.
//
// Pressing q asks the scheduler to stop; the program quits once Run has returned.
type StatusModel struct {
	updates  <-chan tasks.Update
	done     <-chan error
	stop     func()
	now      func() time.Time
	last     tasks.Update
	bio      string
	history  list.Model
	stopping bool
	finished bool
	err      error
	keys     keyMap
	help     help.Model
}

// NewStatusModel creates a status view fed by the scheduler's updates channel.
// done receives Run's result, stop is called once when the user quits.
func NewStatusModel(updates <-chan tasks.Update, done <-chan error, stop func()) *StatusModel {
	return &StatusModel{
		updates: updates,
		done:    done,
		stop:    stop,
		now:     time.Now,
		history: newHistory(),
		keys:    newKeyMap(),
		help:    help.New(),
	}
}

func (m *StatusModel) Init() tea.Cmd {
	return m.waitForUpdate()
}

func (m *StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.history.SetSize(msg.Width-4, max(msg.Height-12, 4))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			if m.finished {
				return m, tea.Quit
			}
			if !m.stopping {
				m.stopping = true
				m.stop()
			}
		}
		return m, nil

	case Msg:
		switch msg.kind {
		case MsgSchedulerUpdate:
			m.record(msg.data.(tasks.Update))
			return m, m.waitForUpdate()
		case MsgSchedulerDone:
			m.finished = true
			m.err, _ = msg.data.(error)
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *StatusModel) record(u tasks.Update) {
	m.last = u
	if u.Bio == "" {
		return
	}
	m.bio = u.Bio
	item := bioItem{bio: u.Bio, poll: u.Poll, at: m.now()}
	m.history.InsertItem(0, item)
	if n := len(m.history.Items()); n > historySize {
		m.history.RemoveItem(n - 1)
	}
}

// waitForUpdate blocks on the next update, or on Run's result once updates stop.
func (m *StatusModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case u, ok := <-m.updates:
			if ok {
				return schedulerUpdateMsg(u)
			}
			return schedulerDoneMsg(<-m.done)
		case err := <-m.done:
			return schedulerDoneMsg(err)
		}
	}
}

// Err returns the scheduler's result once the view has finished.
func (m *StatusModel) Err() error {
	return m.err
}

func (m *StatusModel) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("biosync"))
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s%s\n", styles.label.Render("state"), m.last.State)
	fmt.Fprintf(&b, "%s%d\n", styles.label.Render("polls"), m.last.Poll)
	fmt.Fprintf(&b, "%s%d\n", styles.label.Render("cycles"), m.last.Cycle)
	fmt.Fprintf(&b, "%s%s\n\n", styles.label.Render("bio"), styles.accent.Render(m.bio))

	if m.last.Err != nil {
		b.WriteString(styles.warn.Render(m.last.Err.Error()))
		b.WriteString("\n\n")
	}
	if len(m.history.Items()) > 0 {
		b.WriteString(m.history.View())
		b.WriteString("\n\n")
	}

	switch {
	case m.finished && m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Stopped with error: %v", m.err)))
	case m.finished:
		b.WriteString(styles.accent.Render("Stopped."))
	case m.stopping:
		b.WriteString(styles.help.Render("Stopping, please wait while the idle bio is restored..."))
	default:
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	}
	b.WriteString("\n")
	return b.String()
}
