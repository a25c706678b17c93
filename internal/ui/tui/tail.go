// Package tui provides the full-screen infrastructure event tail of a cell.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/ui/table"
)

// Fetcher returns the latest infrastructure events.
type Fetcher func(ctx context.Context) ([]backend.InfraEvent, error)

// EventsMsg carries the result of one poll.
type EventsMsg struct {
	Events []backend.InfraEvent
	Err    error
	At     time.Time
}

// TickMsg triggers the next poll.
type TickMsg time.Time

// Model is the event tail.
type Model struct {
	Cell     string
	Interval time.Duration

	Events  []backend.InfraEvent
	Err     error
	Updated time.Time

	ctx   context.Context
	fetch Fetcher
	now   func() time.Time
}

// NewModel returns a tail of cell polling fetch every interval.
func NewModel(ctx context.Context, cell string, interval time.Duration, fetch Fetcher) Model {
	return Model{
		Cell:     cell,
		Interval: interval,
		ctx:      ctx,
		fetch:    fetch,
		now:      time.Now,
	}
}

func (m Model) poll() tea.Msg {
	events, err := m.fetch(m.ctx)
	return EventsMsg{Events: events, Err: err, At: m.now()}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.poll
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case EventsMsg:
		m.Updated = msg.At
		m.Err = msg.Err
		// A failed poll keeps the last events on screen.
		if msg.Err == nil {
			m.Events = msg.Events
		}
		return m, tea.Tick(m.Interval, func(t time.Time) tea.Msg { return TickMsg(t) })
	case TickMsg:
		return m, m.poll
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Cell %s, refreshing every %s: %s",
		m.Cell, m.Interval, m.Updated.Format(time.DateTime))))
	b.WriteString("\n")
	b.WriteString(RenderOnce(m.Events))
	if m.Err != nil {
		b.WriteString(failedStyle.Render("Error: " + m.Err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render("q: quit"))
	return b.String()
}

// RenderOnce renders one snapshot of events as plain text.
func RenderOnce(events []backend.InfraEvent) string {
	var b strings.Builder
	table.Events(&b, events)
	return b.String()
}

// Run shows the tail until the operator quits.
func Run(ctx context.Context, cell string, interval time.Duration, fetch Fetcher) error {
	p := tea.NewProgram(NewModel(ctx, cell, interval, fetch), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
