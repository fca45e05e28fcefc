// Package ui provides the lesson reader: a unit picker and a lesson view
// whose controls drive playback.
package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lectio-app/lectio/internal/cache"
	"github.com/lectio-app/lectio/internal/lesson"
	"github.com/lectio-app/lectio/tts"
	te "github.com/muesli/termenv"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied"
	ellipsis             = "…"
	keyEsc               = "esc"
)

// Hoverer is told which sentence the cursor rests on.
type Hoverer interface {
	HoverEnter(paragraph, index int)
	HoverLeave()
}

// Deps are the services the reader drives. Only Loader and Library are
// required.
type Deps struct {
	Controller *tts.Controller
	Hover      Hoverer
	Loader     *lesson.Loader
	Library    *lesson.Library
	Watcher    *lesson.Watcher
	Cache      *cache.Manager
}

// NewProgram returns a new Tea program.
func NewProgram(ctx context.Context, cfg Config, deps Deps) *tea.Program {
	log.Debug(
		"Starting lectio",
		"path", cfg.Path,
		"style", cfg.Style,
		"watch", cfg.Watch,
	)

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	m := newModel(ctx, cfg, deps)
	return tea.NewProgram(m, opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	libraryLoadedMsg struct {
		opened lesson.Opened
	}
	unitLoadedMsg struct {
		entry    lesson.IndexEntry
		unit     *lesson.Unit
		imported bool
		reloaded bool
	}
	unitErrMsg struct {
		entry lesson.IndexEntry
		err   error
	}
	unitFileChangedMsg      string
	statusMessageTimeoutMsg applicationContext
)

// applicationContext indicates the area of the application something applies
// to. Occasionally used as an argument to commands and messages.
type applicationContext int

const (
	pickerContext applicationContext = iota
	lessonContext
)

// state is the top-level application state.
type state int

const (
	stateShowPicker state = iota
	stateShowLesson
)

func (s state) String() string {
	return map[state]string{
		stateShowPicker: "showing unit picker",
		stateShowLesson: "showing lesson",
	}[s]
}

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg    Config
	ctx    context.Context
	cwd    string
	width  int
	height int

	controller *tts.Controller
	hover      Hoverer
	loader     *lesson.Loader
	library    *lesson.Library
	watcher    *lesson.Watcher
	cache      *cache.Manager
}

// displayPath shortens local paths below the working directory.
func (c commonModel) displayPath(ref string) string {
	if ref == "" || lesson.IsURL(ref) || c.cwd == "" {
		return ref
	}
	if rel, err := filepath.Rel(c.cwd, ref); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return ref
}

type model struct {
	common   *commonModel
	state    state
	fatalErr error

	// Sub-models
	picker pickerModel
	lesson lessonModel
}

func newModel(ctx context.Context, cfg Config, deps Deps) model {
	switch cfg.Style {
	case DarkStyle:
		lipgloss.SetHasDarkBackground(true)
	case LightStyle:
		lipgloss.SetHasDarkBackground(false)
	default:
		lipgloss.SetHasDarkBackground(te.HasDarkBackground())
	}

	cwd, _ := os.Getwd()
	common := commonModel{
		cfg:        cfg,
		ctx:        ctx,
		cwd:        cwd,
		controller: deps.Controller,
		hover:      deps.Hover,
		loader:     deps.Loader,
		library:    deps.Library,
		watcher:    deps.Watcher,
		cache:      deps.Cache,
	}
	if common.library == nil {
		common.library = lesson.NewLibrary(nil)
	}

	return model{
		common: &common,
		state:  stateShowPicker,
		picker: newPickerModel(&common),
		lesson: newLessonModel(&common),
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.picker.spinner.Tick,
		openLibrary(*m.common),
	}
	if c := m.common.controller; c != nil {
		cmds = append(cmds, tts.WaitForChange(c))
	}
	if w := m.common.watcher; w != nil && m.common.cfg.Watch {
		cmds = append(cmds, waitForUnitChange(w))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, m.quit()
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, m.quit()

		case "q":
			if m.state == stateShowPicker && !m.picker.typing() {
				return m, m.quit()
			}
			if m.state == stateShowLesson && m.lesson.state == lessonStateBrowse && !m.lesson.showHelp {
				return m, m.quit()
			}

		case keyEsc:
			if m.state == stateShowLesson && m.lesson.state == lessonStateBrowse && !m.lesson.showHelp {
				m.closeLesson()
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.picker.setSize(msg.Width, msg.Height)
		m.lesson.setSize(msg.Width, msg.Height)

	case libraryLoadedMsg:
		for _, e := range msg.opened.Entries {
			m.common.library.Add(e)
		}
		m.picker.setEntries(m.common.library.Entries())
		if u := msg.opened.Unit; u != nil {
			return m, func() tea.Msg {
				return unitLoadedMsg{entry: msg.opened.Entry, unit: u}
			}
		}

	case unitLoadedMsg:
		cmds = append(cmds, m.openLesson(msg)...)

	case unitErrMsg:
		log.Error("failed to load unit", "unit", msg.entry.UnitID, "error", msg.err)
		if m.state == stateShowLesson {
			cmds = append(cmds, m.lesson.showStatusMessage(lessonStatusMessage{msg.err.Error(), true}))
		} else {
			cmds = append(cmds, m.picker.showError(msg.err))
		}

	case unitFileChangedMsg:
		if w := m.common.watcher; w != nil {
			cmds = append(cmds, waitForUnitChange(w))
		}
		if m.state == stateShowLesson && m.lesson.unit != nil {
			log.Info("unit file changed, reloading", "path", string(msg))
			cmds = append(cmds, reloadEntry(*m.common, m.lesson.entry))
		}

	case errMsg:
		m.fatalErr = msg
		return m, nil

	case tts.ChangedMsg:
		// Keep listening; nil once the controller is closed.
		cmds = append(cmds, tts.WaitForChange(m.common.controller))

	case statusMessageTimeoutMsg:
		var cmd tea.Cmd
		if applicationContext(msg) == pickerContext {
			m.picker, cmd = m.picker.update(msg)
		} else {
			m.lesson, cmd = m.lesson.update(msg)
		}
		return m, cmd
	}

	// Process children
	var cmd tea.Cmd
	switch m.state {
	case stateShowPicker:
		m.picker, cmd = m.picker.update(msg)
		cmds = append(cmds, cmd)
		// Playback notices still reach the lesson so it is current when
		// shown again.
		if _, ok := msg.(tea.KeyMsg); !ok {
			m.lesson, cmd = m.lesson.update(msg)
			cmds = append(cmds, cmd)
		}
	case stateShowLesson:
		m.lesson, cmd = m.lesson.update(msg)
		cmds = append(cmds, cmd)
		if _, ok := msg.(spinner.TickMsg); ok {
			m.picker, cmd = m.picker.update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// openLesson shows a freshly loaded unit.
func (m *model) openLesson(msg unitLoadedMsg) []tea.Cmd {
	var cmds []tea.Cmd

	if msg.imported {
		m.picker.setEntries(m.common.library.Entries())
	}
	m.picker.state = pickerStateReady
	m.lesson.load(msg.entry, msg.unit)
	m.state = stateShowLesson
	cmds = append(cmds, m.lesson.spinner.Tick)

	if m.common.cfg.Preload && m.common.controller != nil && !msg.reloaded {
		cmds = append(cmds, tts.PreloadCmd(m.common.ctx, m.common.controller))
	}

	if w := m.common.watcher; w != nil && m.common.cfg.Watch {
		if src := msg.unit.Source; src != "" && !lesson.IsURL(src) {
			if err := w.Watch(src); err != nil {
				log.Warn("cannot watch unit file", "path", src, "error", err)
			}
		} else {
			w.Unwatch()
		}
	}

	switch {
	case msg.reloaded:
		cmds = append(cmds, m.lesson.showStatusMessage(lessonStatusMessage{"Reloaded", false}))
	case msg.imported:
		cmds = append(cmds, m.lesson.showStatusMessage(lessonStatusMessage{"Imported as " + msg.entry.UnitID, false}))
	}
	return cmds
}

// closeLesson stops playback and returns to the picker.
func (m *model) closeLesson() {
	m.lesson.unload()
	if w := m.common.watcher; w != nil {
		w.Unwatch()
	}
	m.state = stateShowPicker
}

func (m model) quit() tea.Cmd {
	if c := m.common.controller; c != nil {
		c.Stop()
	}
	return tea.Quit
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}

	switch m.state { //nolint:exhaustive
	case stateShowLesson:
		return m.lesson.View()
	default:
		return m.picker.view()
	}
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// COMMANDS

func openLibrary(m commonModel) tea.Cmd {
	return func() tea.Msg {
		log.Info("openLibrary", "path", m.cfg.Path)
		opened, err := m.loader.Open(m.ctx, m.cfg.Path)
		if err != nil {
			log.Error("error opening lessons", "error", err)
			return errMsg{err}
		}
		return libraryLoadedMsg{opened: opened}
	}
}

func loadEntry(m commonModel, e lesson.IndexEntry) tea.Cmd {
	return func() tea.Msg {
		u, err := m.loader.LoadEntry(m.ctx, e)
		if err != nil {
			return unitErrMsg{entry: e, err: err}
		}
		return unitLoadedMsg{entry: e, unit: u}
	}
}

func reloadEntry(m commonModel, e lesson.IndexEntry) tea.Cmd {
	return func() tea.Msg {
		u, err := m.loader.LoadEntry(m.ctx, e)
		if err != nil {
			return unitErrMsg{entry: e, err: err}
		}
		return unitLoadedMsg{entry: e, unit: u, reloaded: true}
	}
}

func importUnit(m commonModel, path string) tea.Cmd {
	return func() tea.Msg {
		e, u, err := m.loader.Import(m.library, path)
		if err != nil {
			return unitErrMsg{entry: lesson.IndexEntry{DataURL: path}, err: err}
		}
		return unitLoadedMsg{entry: e, unit: u, imported: true}
	}
}

func waitForUnitChange(w *lesson.Watcher) tea.Cmd {
	return func() tea.Msg {
		return unitFileChangedMsg(<-w.Changes())
	}
}

func waitForStatusMessageTimeout(appCtx applicationContext, t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg(appCtx)
	}
}

// ETC

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
