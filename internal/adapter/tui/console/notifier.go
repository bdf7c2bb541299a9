package console

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Notifier coalesces change signals from the reducer and the push client into
// at most one pending wake-up for the UI. Notify never blocks, so it is safe
// to call from the reducer loop.
type Notifier struct {
	ch chan struct{}
}

// NewNotifier creates a Notifier.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

// Notify records that something changed.
func (n *Notifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// changedMsg tells the model to take a fresh snapshot.
type changedMsg struct{}

// wait returns a command that blocks until the next change or ctx ends.
func (n *Notifier) wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-n.ch:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}
