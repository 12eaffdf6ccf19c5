package live

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model renders a live analysis view using Bubble Tea.
type Model struct {
	state        State
	table        table.Model
	spinner      spinner.Model
	events       <-chan Event
	tickInterval time.Duration
	now          time.Time
	width        int
	noColor      bool
	hold         bool
	closed       bool
}

// Options configures the live UI model.
type Options struct {
	NoColor      bool
	TickInterval time.Duration
	// Hold keeps the view open after the event stream closes until the
	// user quits.
	Hold bool
}

// NewModel constructs a live UI model for an event stream.
func NewModel(events <-chan Event, opts Options) Model {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = 200 * time.Millisecond
	}
	t := table.New(
		table.WithColumns(defaultColumns()),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles(opts.NoColor))
	return Model{
		state:        State{},
		table:        t,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		events:       events,
		tickInterval: tickInterval,
		now:          time.Now(),
		width:        100,
		noColor:      opts.NoColor,
		hold:         opts.Hold,
	}
}

// State returns the current UI state.
func (m Model) State() State {
	return m.state
}

// Init starts ticking and waits for the first event.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tick(m.tickInterval), m.spinner.Tick)
}

// Update consumes UI events, key presses and timer ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		switch typed.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.table.SetWidth(typed.Width)
		m.table.SetHeight(max(typed.Height/3, 3))
		m.table.SetColumns(columnsForWidth(typed.Width))
		return m, nil
	case EventMsg:
		m = applyEvent(m, typed.Event)
		return m, waitForEvent(m.events)
	case closedMsg:
		m.closed = true
		if m.hold {
			return m, nil
		}
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tickMsg:
		m.now = time.Time(typed)
		return m, tick(m.tickInterval)
	}
	return m, nil
}

// View renders the live UI.
func (m Model) View() string {
	parts := []string{renderHeader(m.state, m.now, m.noColor)}
	if steps := renderSteps(m.state, m.spinner.View(), m.noColor); steps != "" {
		parts = append(parts, steps)
	}
	if m.state.Result != nil {
		parts = append(parts,
			"",
			renderSummary(m.state.Result, m.noColor),
			"",
			m.table.View(),
			"",
			renderHighlights(m.state.Result, m.width, m.noColor),
		)
	}
	parts = append(parts, "", renderFooter(m.state, m.closed, m.noColor))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// EventMsg wraps a UI event for Bubble Tea.
type EventMsg struct {
	Event Event
}

// closedMsg reports that the event stream ended.
type closedMsg struct{}

// tickMsg carries a clock tick for updates.
type tickMsg time.Time

// waitForEvent blocks until a UI event is available.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		event, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return EventMsg{Event: event}
	}
}

// tick emits a periodic tick message.
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// applyEvent reduces an event into the model and refreshes the table.
func applyEvent(model Model, event Event) Model {
	model.state = Reduce(model.state, event, model.now)
	model.table.SetRows(rowsForResult(model.state.Result))
	model.table.GotoTop()
	return model
}
