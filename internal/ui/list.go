package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = bioItem{}
)

// bioItem is one bio write shown in the status view's history.
type bioItem struct {
	bio  string
	poll int
	at   time.Time
}

func (i bioItem) FilterValue() string { return i.bio }
func (i bioItem) Title() string {
	if i.bio == "" {
		return "(empty)"
	}
	return i.bio
}
func (i bioItem) Description() string {
	return fmt.Sprintf("poll %d • %s", i.poll, i.at.Format(time.TimeOnly))
}

func newHistory() list.Model {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = "Recent bios"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	return l
}
