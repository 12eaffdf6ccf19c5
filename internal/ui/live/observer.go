package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"essaylens/internal/analysis"
)

// Controller runs the live UI and implements analysis.Observer.
type Controller struct {
	events  chan Event
	program *tea.Program
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
	err     error
}

var _ analysis.Observer = (*Controller)(nil)

// Start launches a live UI controller that writes to stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 256)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, controller.err = program.Run()
		close(controller.done)
	}()
	return controller
}

// Close signals the UI that no more events will arrive.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}

// Done is closed once the UI has exited, including when the user quits.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the UI has exited and returns the program error.
func (c *Controller) Wait() error {
	if c == nil {
		return nil
	}
	<-c.done
	return c.err
}

// OnRunStart forwards run start events to the UI.
func (c *Controller) OnRunStart(seq uint64, input analysis.Descriptor) {
	c.send(Event{Kind: EventRunStart, Seq: seq, Input: input})
}

// OnStep forwards request status updates to the UI.
func (c *Controller) OnStep(event analysis.StepEvent) {
	c.send(Event{Kind: EventStep, Seq: event.Seq, Step: event})
}

// OnRunEnd forwards the run outcome to the UI.
func (c *Controller) OnRunEnd(seq uint64, result *analysis.Result, err error) {
	event := Event{Kind: EventRunEnd, Seq: seq, Result: result}
	if err != nil {
		event.Err = err.Error()
	}
	c.send(event)
}

// send enqueues an event without blocking the caller.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
