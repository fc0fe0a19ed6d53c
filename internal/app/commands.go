package app

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/modeldeck/internal/config"
	"github.com/marcus/modeldeck/internal/coordinator"
	"github.com/marcus/modeldeck/internal/history"
	"github.com/marcus/modeldeck/internal/msg"
)

// frameDelay gives the renderer one frame to show "Loading …" before the
// synchronous load blocks the update loop.
const frameDelay = 20 * time.Millisecond

// Message types for tea.Cmd
type (
	// loadMsg performs a load that was requested on the previous frame.
	loadMsg struct {
		Adapter   string
		Confirmed bool
	}

	// historyLoadedMsg carries rows for the history overlay.
	historyLoadedMsg struct {
		Entries []history.Entry
		Err     error
	}

	// historyRecordedMsg reports the outcome of persisting a run.
	historyRecordedMsg struct {
		ID  int64
		Err error
	}

	// themeSavedMsg reports the outcome of persisting a theme change.
	themeSavedMsg struct {
		Theme string
		Err   error
	}
)

// loadCmd schedules a load after one frame.
func loadCmd(name string, confirmed bool) tea.Cmd {
	return tea.Tick(frameDelay, func(time.Time) tea.Msg {
		return loadMsg{Adapter: name, Confirmed: confirmed}
	})
}

// recordCmd persists a delivered result in the background.
func recordCmd(store *history.Store, res coordinator.Result) tea.Cmd {
	entry := history.FromResult(res, time.Now())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		id, err := store.Record(ctx, entry)
		return historyRecordedMsg{ID: id, Err: err}
	}
}

// fetchHistoryCmd loads the most recent runs.
func fetchHistoryCmd(store *history.Store, limit int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		entries, err := store.Recent(ctx, "", limit)
		return historyLoadedMsg{Entries: entries, Err: err}
	}
}

// saveThemeCmd writes the theme name to the config file.
func saveThemeCmd(path, theme string) tea.Cmd {
	return func() tea.Msg {
		var err error
		if path != "" {
			err = config.SaveThemeTo(path, theme)
		} else {
			err = config.SaveTheme(theme)
		}
		return themeSavedMsg{Theme: theme, Err: err}
	}
}

// copyCmd writes text to the system clipboard.
func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return msg.ToastMsg{Message: "Copy failed: " + err.Error(), Duration: msg.DefaultToastDuration, IsError: true}
		}
		return msg.ToastMsg{Message: "Copied to clipboard", Duration: 2 * time.Second}
	}
}
