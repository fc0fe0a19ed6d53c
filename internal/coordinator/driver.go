package coordinator

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Drive runs the poll loop without a Bubble Tea program, for headless use.
// It returns once the pending run has been delivered. If ctx ends first the
// run is soft-cancelled and ctx.Err() is returned.
func (c *Coordinator) Drive(ctx context.Context, cmd tea.Cmd) error {
	for cmd != nil {
		ch := make(chan tea.Msg, 1)
		go func(cmd tea.Cmd) { ch <- cmd() }(cmd)

		select {
		case <-ctx.Done():
			c.RequestCancel()
			return ctx.Err()
		case msg := <-ch:
			poll, ok := msg.(PollMsg)
			if !ok {
				return fmt.Errorf("unexpected message %T", msg)
			}
			cmd = c.HandlePoll(poll)
		}
	}
	return nil
}
