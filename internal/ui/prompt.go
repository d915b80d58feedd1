package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/biosync/internal/shared"
)

// Field describes one line of a [Form].
type Field struct {
	Label       string
	Placeholder string
	Value       string // Pre-filled value
	Secret      bool   // Masks the input until revealed with ctrl+r
	Optional    bool
}

// Prompter collects values for a set of fields, in order.
type Prompter interface {
	Prompt(ctx context.Context, title string, fields []Field) ([]string, error)
}

// Form is a bubbletea model that edits a list of text fields.
type Form struct {
	title   string
	fields  []Field
	inputs  []textinput.Model
	focus   int
	keys    keyMap
	help    help.Model
	err     string
	aborted bool
	done    bool
}

// NewForm creates a form with the first field focused.
func NewForm(title string, fields []Field) *Form {
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		in := textinput.New()
		in.Prompt = "› "
		in.Placeholder = f.Placeholder
		in.SetValue(f.Value)
		if f.Secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		inputs[i] = in
	}
	if len(inputs) > 0 {
		inputs[0].Focus()
	}

	return &Form{title: title, fields: fields, inputs: inputs, keys: newKeyMap(), help: help.New()}
}

func (f *Form) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles navigation keys and forwards the rest to the focused input.
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, f.keys.abort):
			f.aborted = true
			return f, tea.Quit
		case key.Matches(msg, f.keys.reveal):
			f.toggleReveal()
			return f, nil
		case key.Matches(msg, f.keys.prev):
			return f, f.move(-1)
		case key.Matches(msg, f.keys.next):
			return f, f.move(1)
		case key.Matches(msg, f.keys.submit):
			return f, f.submit()
		}
	}

	if len(f.inputs) == 0 {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f *Form) submit() tea.Cmd {
	if len(f.inputs) == 0 {
		f.done = true
		return tea.Quit
	}
	if f.missing(f.focus) {
		f.err = fmt.Sprintf("%s is required", f.fields[f.focus].Label)
		return nil
	}
	f.err = ""
	if f.focus < len(f.inputs)-1 {
		return f.move(1)
	}

	for i := range f.inputs {
		if f.missing(i) {
			f.err = fmt.Sprintf("%s is required", f.fields[i].Label)
			return f.moveTo(i)
		}
	}
	f.done = true
	return tea.Quit
}

func (f *Form) missing(i int) bool {
	return !f.fields[i].Optional && strings.TrimSpace(f.inputs[i].Value()) == ""
}

func (f *Form) move(delta int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	return f.moveTo((f.focus + delta + len(f.inputs)) % len(f.inputs))
}

func (f *Form) moveTo(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = i
	return f.inputs[f.focus].Focus()
}

func (f *Form) toggleReveal() {
	if len(f.inputs) == 0 || !f.fields[f.focus].Secret {
		return
	}
	in := &f.inputs[f.focus]
	if in.EchoMode == textinput.EchoPassword {
		in.EchoMode = textinput.EchoNormal
	} else {
		in.EchoMode = textinput.EchoPassword
	}
}

func (f *Form) View() string {
	if f.done || f.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(f.title))
	b.WriteString("\n")
	for i, in := range f.inputs {
		label := f.fields[i].Label
		if i == f.focus {
			label = styles.accent.Render(label)
		}
		fmt.Fprintf(&b, "%s\n%s\n\n", label, in.View())
	}
	if f.err != "" {
		b.WriteString(styles.err.Render(f.err))
		b.WriteString("\n\n")
	}
	b.WriteString(f.help.View(f.keys))
	b.WriteString("\n")
	return b.String()
}

// Values returns the trimmed field values in declaration order.
func (f *Form) Values() []string {
	values := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		values[i] = strings.TrimSpace(in.Value())
	}
	return values
}

// Aborted reports whether the user left the form without submitting.
func (f *Form) Aborted() bool {
	return f.aborted
}

// TeaPrompter runs a [Form] as a bubbletea program.
type TeaPrompter struct {
	In  io.Reader // defaults to stdin
	Out io.Writer // defaults to stdout
}

// Prompt shows a form and blocks until it is submitted or cancelled.
// Cancelling returns [shared.ErrAborted].
func (p TeaPrompter) Prompt(ctx context.Context, title string, fields []Field) ([]string, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}

	final, err := tea.NewProgram(NewForm(title, fields), opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil, fmt.Errorf("%w: %v", shared.ErrAborted, err)
		}
		return nil, err
	}

	form, ok := final.(*Form)
	if !ok || form.Aborted() {
		return nil, shared.ErrAborted
	}
	return form.Values(), nil
}
