package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/modeldeck/internal/adapter"
	"github.com/marcus/modeldeck/internal/config"
	"github.com/marcus/modeldeck/internal/coordinator"
	"github.com/marcus/modeldeck/internal/msg"
	"github.com/marcus/modeldeck/internal/state"
	"github.com/marcus/modeldeck/internal/styles"
	"github.com/marcus/modeldeck/internal/ui"
)

// Update handles all messages and returns the updated model and commands.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(message)

	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.ready = true
		m.layout()
		m.refreshPanes()
		return m, nil

	case coordinator.PollMsg:
		cmd := m.coord.HandlePoll(message)
		return m, tea.Batch(cmd, m.absorb())

	case loadMsg:
		return m.performLoad(message)

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(message)
		return m, cmd

	case msg.ToastMsg:
		if message.IsError {
			m.ShowErrorToast(message.Message, message.Duration)
		} else {
			m.ShowToast(message.Message, message.Duration)
		}
		return m, tea.Tick(message.Duration, func(time.Time) tea.Msg { return toastExpiredMsg{} })

	case toastExpiredMsg:
		m.ClearToast()
		return m, nil

	case historyLoadedMsg:
		m.historyEntries = message.Entries
		m.historyErr = message.Err
		m.historyScroll = 0
		return m, nil

	case historyRecordedMsg:
		if message.Err != nil {
			m.log.Warn("record run", "err", message.Err)
			return m, msg.ShowError("History: " + message.Err.Error())
		}
		return m, nil

	case themeSavedMsg:
		if message.Err != nil {
			m.log.Warn("save theme", "theme", message.Theme, "err", message.Err)
			return m, msg.ShowError("Theme not saved: " + message.Err.Error())
		}
		return m, nil

	case config.ReloadMsg:
		return m.applyReload(message)
	}

	return m, nil
}

// toastExpiredMsg clears the toast once its duration has passed.
type toastExpiredMsg struct{}

// handleKeyMsg routes a key through the keymap for the active context.
func (m Model) handleKeyMsg(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := m.activeContext()
	command, ok := m.keymap.Lookup(key.String(), ctx)

	switch m.activeModal() {
	case ModalConfirm:
		return m.handleConfirm(command)
	case ModalHelp:
		if command == "dismiss" || command == "toggle-help" {
			m.showHelp = false
		}
		return m, nil
	case ModalHistory:
		return m.handleHistoryKey(command)
	}

	if !ok {
		if m.inputFocused {
			in := m.activeInput()
			var cmd tea.Cmd
			*in, cmd = in.Update(key)
			return m, cmd
		}
		return m, nil
	}
	return m.execute(command)
}

// execute runs a keymap command outside of modals.
func (m Model) execute(command string) (tea.Model, tea.Cmd) {
	switch command {
	case "quit":
		if m.busy() {
			m.openConfirm(confirmQuit,
				"Quit modeldeck?",
				fmt.Sprintf("%s is still in progress. Its result will be discarded.", m.coord.Status()),
				" Quit ")
			return m, nil
		}
		return m, tea.Quit

	case "run":
		return m.startRun()

	case "load":
		return m.requestLoad()

	case "cancel":
		if m.loadPending != "" {
			m.loadPending = ""
			m.panes.StatusChanged(m.coord.Status())
			return m, tea.Batch(m.absorb(), msg.ShowToast("Load cancelled", msg.DefaultToastDuration))
		}
		if m.coord.RequestCancel() {
			return m, tea.Batch(m.absorb(), msg.ShowToast("Cancelled", msg.DefaultToastDuration))
		}
		if m.inputFocused {
			m.blurInput()
		}
		return m, nil

	case "next-adapter":
		cmd := m.moveCursor(1)
		return m, tea.Batch(cmd, m.absorb())

	case "prev-adapter":
		cmd := m.moveCursor(-1)
		return m, tea.Batch(cmd, m.absorb())

	case "toggle-mode":
		if m.busy() {
			return m, m.rejected(coordinator.ErrBusy)
		}
		if m.mode == adapter.ModeText {
			m.mode = adapter.ModeFile
		} else {
			m.mode = adapter.ModeText
		}
		if m.inputFocused {
			return m, m.focusInput()
		}
		return m, nil

	case "clear":
		if m.busy() {
			return m, m.rejected(coordinator.ErrBusy)
		}
		m.textInput.Reset()
		m.pathInput.Reset()
		m.panes.clearOutput()
		m.saveInput()
		return m, m.absorb()

	case "copy":
		text := copyText(m.panes)
		if text == "" {
			return m, msg.ShowError("Nothing to copy")
		}
		return m, copyCmd(text)

	case "focus-input":
		return m, m.focusInput()

	case "blur-input":
		m.blurInput()
		return m, nil

	case "history":
		if m.history == nil {
			return m, msg.ShowError("History is disabled")
		}
		m.showHistory = true
		m.historyEntries = nil
		m.historyErr = nil
		return m, fetchHistoryCmd(m.history, m.cfg.History.Limit)

	case "toggle-help":
		m.showHelp = !m.showHelp
		return m, nil

	case "toggle-footer":
		m.showFooter = !m.showFooter
		m.layout()
		return m, nil

	case "cycle-theme":
		next := styles.NextTheme(styles.GetCurrentThemeName())
		m.applyTheme(next)
		m.cfg.UI.Theme.Name = next
		return m, tea.Batch(
			saveThemeCmd(m.configPath, next),
			msg.ShowToast("Theme: "+styles.GetTheme(next).DisplayName, msg.DefaultToastDuration),
		)
	}
	return m, nil
}

// startRun snapshots the input and dispatches a run.
func (m Model) startRun() (tea.Model, tea.Cmd) {
	if m.loadPending != "" {
		return m, m.rejected(coordinator.ErrBusy)
	}
	p := m.payload()
	poll, err := m.coord.RequestRun(p)
	if err != nil {
		return m, tea.Batch(m.rejected(err), m.absorb())
	}
	m.saveInput()
	return m, tea.Batch(poll, m.absorb())
}

// requestLoad asks for confirmation when another adapter is loaded,
// otherwise schedules the load for the next frame.
func (m Model) requestLoad() (tea.Model, tea.Cmd) {
	if m.busy() {
		return m, m.rejected(coordinator.ErrBusy)
	}
	if from, ok := m.coord.NeedsSwitchConfirm(); ok {
		m.openConfirm(confirmSwitch,
			"Switch model?",
			fmt.Sprintf("%s is loaded. Unload it and load %s?", from, m.coord.Selected()),
			" Switch ")
		return m, nil
	}
	return m.scheduleLoad(false)
}

func (m Model) scheduleLoad(confirmed bool) (tea.Model, tea.Cmd) {
	name := m.coord.Selected()
	m.loadPending = name
	m.panes.StatusChanged(fmt.Sprintf("Loading %s …", name))
	return m, tea.Batch(loadCmd(name, confirmed), m.absorb())
}

// performLoad runs the load scheduled by scheduleLoad.
func (m Model) performLoad(lm loadMsg) (tea.Model, tea.Cmd) {
	if m.loadPending != lm.Adapter || lm.Adapter != m.coord.Selected() {
		// cancelled or superseded before it started
		m.loadPending = ""
		return m, m.absorb()
	}
	m.loadPending = ""

	err := m.coord.RequestLoad(lm.Confirmed)
	var switchErr *coordinator.SwitchConfirmationError
	switch {
	case err == nil:
		if serr := state.SetLastAdapter(lm.Adapter); serr != nil {
			m.log.Warn("save last adapter", "err", serr)
		}
		return m, tea.Batch(m.absorb(), msg.ShowToast("Loaded "+lm.Adapter, msg.DefaultToastDuration))
	case errors.As(err, &switchErr):
		m.panes.StatusChanged(m.coord.Status())
		m.openConfirm(confirmSwitch,
			"Switch model?",
			fmt.Sprintf("%s is loaded. Unload it and load %s?", switchErr.From, switchErr.To),
			" Switch ")
		return m, m.absorb()
	default:
		return m, tea.Batch(m.rejected(err), m.absorb())
	}
}

func (m *Model) openConfirm(kind confirmKind, title, message, confirmLabel string) {
	d := ui.NewConfirmDialog(title, message)
	d.ConfirmLabel = confirmLabel
	d.BorderColor = styles.Warning
	m.confirm = d
	m.confirmKind = kind
}

// handleConfirm routes a command to the open confirmation dialog.
func (m Model) handleConfirm(command string) (tea.Model, tea.Cmd) {
	switch m.confirm.Handle(command) {
	case ui.DialogConfirm:
		m.confirm = nil
		if m.confirmKind == confirmQuit {
			m.coord.RequestCancel()
			return m, tea.Quit
		}
		if m.busy() {
			return m, m.rejected(coordinator.ErrBusy)
		}
		return m.scheduleLoad(true)
	case ui.DialogCancel:
		m.confirm = nil
	}
	return m, nil
}

func (m Model) handleHistoryKey(command string) (tea.Model, tea.Cmd) {
	switch command {
	case "dismiss":
		m.showHistory = false
	case "scroll-down":
		if m.historyScroll < len(m.historyEntries)-1 {
			m.historyScroll++
		}
	case "scroll-up":
		if m.historyScroll > 0 {
			m.historyScroll--
		}
	}
	return m, nil
}

// applyReload picks up UI and keymap changes from the config file.
func (m Model) applyReload(rm config.ReloadMsg) (tea.Model, tea.Cmd) {
	var next tea.Cmd
	if m.watcher != nil {
		next = m.watcher.Next()
	}
	if rm.Err != nil {
		m.log.Warn("config reload", "err", rm.Err)
		return m, tea.Batch(next, msg.ShowError("Config: "+rm.Err.Error()))
	}

	m.cfg.UI = rm.Config.UI
	m.cfg.Keymap = rm.Config.Keymap
	m.showFooter = rm.Config.UI.ShowFooter
	for key, command := range rm.Config.Keymap.Overrides {
		m.keymap.SetUserOverride(key, command)
	}
	m.applyTheme(rm.Config.UI.Theme.Name)
	m.layout()
	return m, next
}

// applyTheme switches the palette and re-renders theme dependent panes.
func (m *Model) applyTheme(name string) {
	if err := styles.ApplyThemeWithOverrides(name, m.cfg.UI.Theme.Overrides); err != nil {
		m.log.Warn("theme overrides", "err", err)
	}
	m.spinner.Style = lipgloss.NewStyle().Foreground(styles.Warning)
	m.refreshPanes()
}
