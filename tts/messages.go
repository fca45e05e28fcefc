package tts

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages for Bubble Tea communication between playback and the UI.

// ChangedMsg is sent when the controller status may have changed.
type ChangedMsg struct {
	Status Status
}

// PreloadedMsg reports the end of a preload run.
type PreloadedMsg struct {
	UnitID string
	Count  int
	Err    error
}

// ErrorMsg reports a failed playback request. Playback failures themselves
// never surface; this only covers bad requests.
type ErrorMsg struct {
	Err    error
	Target Target
}

// WaitForChange blocks until the controller reports a change. Re-issue it
// after every ChangedMsg to keep listening. It yields nil once the controller
// is closed.
func WaitForChange(c *Controller) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-c.Changes(); !ok {
			return nil
		}
		return ChangedMsg{Status: c.Status()}
	}
}

// PreloadCmd warms the clip cache for the loaded unit.
func PreloadCmd(ctx context.Context, c *Controller) tea.Cmd {
	return func() tea.Msg {
		var unitID string
		if u := c.Unit(); u != nil {
			unitID = u.UnitID
		}
		n, err := c.Preload(ctx)
		return PreloadedMsg{UnitID: unitID, Count: n, Err: err}
	}
}

// RequestCmd runs a controller entry point off the UI goroutine.
func RequestCmd(target Target, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return ErrorMsg{Err: err, Target: target}
		}
		return nil
	}
}
