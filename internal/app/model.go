package app

import (
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/modeldeck/internal/adapter"
	"github.com/marcus/modeldeck/internal/config"
	"github.com/marcus/modeldeck/internal/coordinator"
	"github.com/marcus/modeldeck/internal/history"
	"github.com/marcus/modeldeck/internal/keymap"
	"github.com/marcus/modeldeck/internal/msg"
	"github.com/marcus/modeldeck/internal/state"
	"github.com/marcus/modeldeck/internal/ui"
)

// ModalKind identifies an app-level modal with explicit priority ordering.
// Lower values = higher priority (checked first for rendering and input routing).
type ModalKind int

const (
	ModalNone    ModalKind = iota // No modal open
	ModalConfirm                  // Switch or quit confirmation (highest priority)
	ModalHelp                     // Help overlay
	ModalHistory                  // Run history
)

// confirmKind says what a confirmation dialog is guarding.
type confirmKind int

const (
	confirmSwitch confirmKind = iota
	confirmQuit
)

// Options configures a Model.
type Options struct {
	Config     *config.Config
	ConfigPath string // file theme changes are saved to; empty means default
	Registry   *adapter.Registry
	Keymap     *keymap.Registry
	History    *history.Store       // nil disables history
	Watcher    *config.Watcher      // nil disables live reload
	Recorder   coordinator.Recorder // nil records nothing
	Logger     *slog.Logger
	Version    string
}

// Model is the root Bubble Tea model for the modeldeck client.
type Model struct {
	// Configuration
	cfg        *config.Config
	configPath string
	version    string
	log        *slog.Logger

	// Execution
	coord    *coordinator.Coordinator
	registry *adapter.Registry
	panes    *panes
	seen     uint64 // panes.version last absorbed

	// Services
	keymap  *keymap.Registry
	history *history.Store
	watcher *config.Watcher

	// UI state
	width, height int
	ready         bool
	showFooter    bool
	showHelp      bool
	showHistory   bool
	cursor        int
	inputFocused  bool
	loadPending   string // adapter whose load is scheduled for the next frame
	spinning      bool

	// Widgets
	mode      adapter.PayloadMode
	textInput textinput.Model
	pathInput textinput.Model
	output    viewport.Model
	spinner   spinner.Model
	infoView  string

	// Confirmation dialog
	confirm     *ui.ConfirmDialog
	confirmKind confirmKind

	// History overlay
	historyEntries []history.Entry
	historyScroll  int
	historyErr     error

	// Status/toast messages
	statusMsg     string
	statusExpiry  time.Time
	statusIsError bool
}

// New creates the model and its coordinator. The initially selected adapter
// is the last one used, then the configured default, then the first one.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	km := opts.Keymap
	if km == nil {
		km = keymap.NewRegistry()
		keymap.RegisterDefaults(km)
	}

	p := &panes{}
	coordOpts := []coordinator.Option{
		coordinator.WithPollInterval(cfg.Coordinator.PollInterval),
		coordinator.WithLogger(log),
	}
	if opts.Recorder != nil {
		coordOpts = append(coordOpts, coordinator.WithRecorder(opts.Recorder))
	}

	ti := textinput.New()
	ti.Placeholder = "Type text and press enter"
	ti.Prompt = "› "
	pi := textinput.New()
	pi.Placeholder = "Path to an image file"
	pi.Prompt = "› "

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := Model{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		version:    opts.Version,
		log:        log,
		coord:      coordinator.New(opts.Registry, p, coordOpts...),
		registry:   opts.Registry,
		panes:      p,
		keymap:     km,
		history:    opts.History,
		watcher:    opts.Watcher,
		showFooter: cfg.UI.ShowFooter,
		mode:       adapter.ModeText,
		textInput:  ti,
		pathInput:  pi,
		output:     viewport.New(0, 0),
		spinner:    sp,
	}

	m.restoreInput(state.GetInput())
	for _, name := range []string{state.GetLastAdapter(), cfg.Adapters.Default, m.coord.Selected()} {
		if _, err := m.registry.Get(name); err != nil {
			continue
		}
		if m.selectByName(name) == nil {
			break
		}
	}
	p.status = m.coord.Status()
	m.absorb()
	return m
}

// Init starts the config watcher, if any.
func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return m.watcher.Next()
	}
	return nil
}

// activeModal returns the highest-priority open modal.
func (m *Model) activeModal() ModalKind {
	switch {
	case m.confirm != nil:
		return ModalConfirm
	case m.showHelp:
		return ModalHelp
	case m.showHistory:
		return ModalHistory
	default:
		return ModalNone
	}
}

// activeContext returns the keymap context for the current focus.
func (m *Model) activeContext() string {
	switch m.activeModal() {
	case ModalConfirm:
		return keymap.ContextConfirm
	case ModalHelp:
		return keymap.ContextHelp
	case ModalHistory:
		return keymap.ContextHistory
	}
	if m.inputFocused {
		return keymap.ContextInput
	}
	return keymap.ContextPicker
}

// busy reports whether a load or run holds the gate or is about to.
func (m *Model) busy() bool {
	return m.coord.Busy() || m.loadPending != ""
}

// selectByName moves the cursor to name and selects it in the coordinator.
func (m *Model) selectByName(name string) error {
	if err := m.coord.Select(name); err != nil {
		return err
	}
	for i, n := range m.registry.List() {
		if n == name {
			m.cursor = i
		}
	}
	return nil
}

// moveCursor selects the adapter delta positions away, wrapping around.
func (m *Model) moveCursor(delta int) tea.Cmd {
	names := m.registry.List()
	if len(names) == 0 {
		return nil
	}
	next := (m.cursor + delta + len(names)) % len(names)
	if err := m.selectByName(names[next]); err != nil {
		return m.rejected(err)
	}
	return nil
}

// payload snapshots the input pane.
func (m *Model) payload() adapter.Payload {
	if m.mode == adapter.ModeFile {
		return adapter.Payload{Mode: adapter.ModeFile, Path: m.pathInput.Value(), Text: m.textInput.Value()}
	}
	return adapter.TextPayload(m.textInput.Value())
}

func (m *Model) restoreInput(in state.InputState) {
	if in.Mode == string(adapter.ModeFile) {
		m.mode = adapter.ModeFile
	}
	m.textInput.SetValue(in.Text)
	m.pathInput.SetValue(in.Path)
}

func (m *Model) saveInput() {
	err := state.SetInput(state.InputState{
		Mode: string(m.mode),
		Text: m.textInput.Value(),
		Path: m.pathInput.Value(),
	})
	if err != nil {
		m.log.Warn("save input state", "err", err)
	}
}

// activeInput returns the text input for the current mode.
func (m *Model) activeInput() *textinput.Model {
	if m.mode == adapter.ModeFile {
		return &m.pathInput
	}
	return &m.textInput
}

func (m *Model) focusInput() tea.Cmd {
	m.inputFocused = true
	m.textInput.Blur()
	m.pathInput.Blur()
	return m.activeInput().Focus()
}

func (m *Model) blurInput() {
	m.inputFocused = false
	m.textInput.Blur()
	m.pathInput.Blur()
}

// rejected turns a refused request into a toast. Errors the coordinator
// already reported to the sink are shown by absorb instead.
func (m *Model) rejected(err error) tea.Cmd {
	if errors.Is(err, coordinator.ErrBusy) {
		return msg.ShowError("Busy: " + m.coord.Status())
	}
	return nil
}

// absorb applies the changes recorded by the sink since the last call.
func (m *Model) absorb() tea.Cmd {
	p := m.panes
	var cmds []tea.Cmd

	if p.resetInput {
		p.resetInput = false
		m.textInput.Reset()
		m.pathInput.Reset()
	}
	for _, res := range p.takeDelivered() {
		if m.history != nil {
			cmds = append(cmds, recordCmd(m.history, res))
		}
	}
	for _, n := range p.takeNotices() {
		cmds = append(cmds, msg.ShowError(n.kind.Title()+": "+n.err.Error()))
	}
	if p.version != m.seen {
		m.seen = p.version
		m.refreshPanes()
	}
	if (p.busy || m.loadPending != "") && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// refreshPanes re-renders the info and output panes.
func (m *Model) refreshPanes() {
	m.infoView = renderInfo(m.panes.info, m.infoWidth())
	m.output.SetContent(renderOutput(m.panes, m.output.Width))
	m.output.GotoTop()
}

// ShowToast displays a temporary status message.
func (m *Model) ShowToast(message string, duration time.Duration) {
	m.statusMsg = message
	m.statusExpiry = time.Now().Add(duration)
	m.statusIsError = false
}

// ShowErrorToast displays a temporary error message.
func (m *Model) ShowErrorToast(message string, duration time.Duration) {
	m.ShowToast(message, duration)
	m.statusIsError = true
}

// ClearToast clears expired status messages.
func (m *Model) ClearToast() {
	if m.statusMsg != "" && time.Now().After(m.statusExpiry) {
		m.statusMsg = ""
		m.statusIsError = false
	}
}

// Coordinator exposes the coordinator, mainly for the headless driver and tests.
func (m Model) Coordinator() *coordinator.Coordinator { return m.coord }
