package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/lectio-app/lectio/internal/lesson"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/sahilm/fuzzy"
)

const (
	pickerTopPadding    = 1
	pickerHeaderHeight  = 3
	pickerFooterHeight  = 2
	pickerItemHeight    = 3
	pickerHorizontalPad = 2
)

type pickerState int

const (
	pickerStateLoading pickerState = iota
	pickerStateReady
	pickerStateFiltering
	pickerStateImporting
	pickerStateOpening
)

// pickerItem is a visible row: an entry plus the rune positions of its name
// that matched the filter.
type pickerItem struct {
	entry   lesson.IndexEntry
	matched []int
}

type pickerModel struct {
	common  *commonModel
	state   pickerState
	spinner spinner.Model

	entries []lesson.IndexEntry
	items   []pickerItem
	cursor  int

	filterInput textinput.Model
	importInput textinput.Model

	statusMessage      lessonStatusMessage
	showStatusMessage  bool
	statusMessageTimer *time.Timer
}

// entrySource adapts entries for fuzzy matching.
type entrySource []lesson.IndexEntry

func (s entrySource) String(i int) string { return s[i].FilterValue() }
func (s entrySource) Len() int            { return len(s) }

func newPickerModel(common *commonModel) pickerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(normalDim)

	fi := textinput.New()
	fi.Prompt = "Find: "
	fi.PromptStyle = lipgloss.NewStyle().Foreground(yellowGreen)
	fi.Cursor.Style = lipgloss.NewStyle().Foreground(fuchsia)
	fi.CharLimit = 64

	ii := textinput.New()
	ii.Prompt = "Import: "
	ii.PromptStyle = lipgloss.NewStyle().Foreground(yellowGreen)
	ii.Placeholder = "path to a unit .json file"
	ii.CharLimit = 512

	return pickerModel{
		common:      common,
		state:       pickerStateLoading,
		spinner:     sp,
		filterInput: fi,
		importInput: ii,
	}
}

// typing reports whether keys are going to a text input.
func (m pickerModel) typing() bool {
	return m.state == pickerStateFiltering || m.state == pickerStateImporting
}

func (m *pickerModel) setSize(w, _ int) {
	m.filterInput.Width = max(10, w-pickerHorizontalPad*2-runewidth.StringWidth(m.filterInput.Prompt))
	m.importInput.Width = max(10, w-pickerHorizontalPad*2-runewidth.StringWidth(m.importInput.Prompt))
}

func (m *pickerModel) setEntries(entries []lesson.IndexEntry) {
	m.entries = entries
	if m.state == pickerStateLoading {
		m.state = pickerStateReady
	}
	m.applyFilter()
}

// applyFilter rebuilds the visible rows from the filter text. Matches are
// ordered best first; an empty filter keeps library order.
func (m *pickerModel) applyFilter() {
	query := strings.TrimSpace(m.filterInput.Value())
	m.items = m.items[:0]

	if query == "" {
		for _, e := range m.entries {
			m.items = append(m.items, pickerItem{entry: e})
		}
	} else {
		for _, match := range fuzzy.FindFrom(query, entrySource(m.entries)) {
			e := m.entries[match.Index]
			m.items = append(m.items, pickerItem{
				entry:   e,
				matched: nameRunes(e.UnitName, match.MatchedIndexes),
			})
		}
	}
	m.cursor = max(0, min(m.cursor, len(m.items)-1))
}

// nameRunes converts byte offsets into FilterValue to rune offsets into
// name, dropping those past it.
func nameRunes(name string, byteIdx []int) []int {
	var out []int
	for _, b := range byteIdx {
		if b >= len(name) {
			continue
		}
		out = append(out, utf8.RuneCountInString(name[:b]))
	}
	return out
}

func (m pickerModel) selected() (lesson.IndexEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return lesson.IndexEntry{}, false
	}
	return m.items[m.cursor].entry, true
}

func (m *pickerModel) showError(err error) tea.Cmd {
	m.state = pickerStateReady
	return m.showStatus(lessonStatusMessage{message: err.Error(), isError: true})
}

func (m *pickerModel) showStatus(msg lessonStatusMessage) tea.Cmd {
	m.statusMessage = msg
	m.showStatusMessage = true
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(pickerContext, m.statusMessageTimer)
}

func (m pickerModel) update(msg tea.Msg) (pickerModel, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case pickerStateFiltering:
			switch msg.String() {
			case keyEsc:
				m.filterInput.Reset()
				m.filterInput.Blur()
				m.state = pickerStateReady
				m.applyFilter()
				return m, nil
			case "enter", "tab", "down", "up":
				m.filterInput.Blur()
				m.state = pickerStateReady
				if msg.String() == "enter" && len(m.items) == 1 {
					return m.open()
				}
				return m, nil
			}
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.applyFilter()
			return m, cmd

		case pickerStateImporting:
			switch msg.String() {
			case keyEsc:
				m.importInput.Reset()
				m.importInput.Blur()
				m.state = pickerStateReady
				return m, nil
			case "enter":
				path := strings.TrimSpace(m.importInput.Value())
				m.importInput.Reset()
				m.importInput.Blur()
				if path == "" {
					m.state = pickerStateReady
					return m, nil
				}
				m.state = pickerStateOpening
				return m, tea.Batch(importUnit(*m.common, path), m.spinner.Tick)
			}
			m.importInput, cmd = m.importInput.Update(msg)
			return m, cmd

		case pickerStateReady:
			switch msg.String() {
			case "down", "j", "tab":
				m.cursor = max(0, min(len(m.items)-1, m.cursor+1))
			case "up", "k", "shift+tab":
				m.cursor = max(0, m.cursor-1)
			case "home", "g":
				m.cursor = 0
			case "end", "G":
				m.cursor = max(0, len(m.items)-1)
			case "/":
				m.state = pickerStateFiltering
				cmds = append(cmds, m.filterInput.Focus(), textinput.Blink)
			case "o":
				m.state = pickerStateImporting
				cmds = append(cmds, m.importInput.Focus(), textinput.Blink)
			case keyEsc:
				if m.filterInput.Value() != "" {
					m.filterInput.Reset()
					m.applyFilter()
				}
			case "enter":
				return m.open()
			}
		}

	case spinner.TickMsg:
		if m.state == pickerStateLoading || m.state == pickerStateOpening {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case statusMessageTimeoutMsg:
		m.showStatusMessage = false
	}

	return m, tea.Batch(cmds...)
}

func (m pickerModel) open() (pickerModel, tea.Cmd) {
	e, ok := m.selected()
	if !ok {
		return m, nil
	}
	m.state = pickerStateOpening
	return m, tea.Batch(loadEntry(*m.common, e), m.spinner.Tick)
}

func (m pickerModel) view() string {
	var b strings.Builder
	pad := strings.Repeat(" ", pickerHorizontalPad)

	b.WriteString(strings.Repeat("\n", pickerTopPadding))
	b.WriteString(pad + logoView() + " " + pickerTitleStyle.Render("Units") + "\n\n")

	switch m.state {
	case pickerStateLoading:
		b.WriteString(pad + m.spinner.View() + " Loading units…\n")
		return b.String()
	case pickerStateFiltering:
		b.WriteString(pad + m.filterInput.View() + "\n")
	case pickerStateImporting:
		b.WriteString(pad + m.importInput.View() + "\n")
	case pickerStateOpening:
		b.WriteString(pad + m.spinner.View() + " Opening…\n")
	default:
		b.WriteString(pad + m.countView() + "\n")
	}
	b.WriteString("\n")

	// Window of rows around the cursor.
	rows := max(1, (m.common.height-pickerTopPadding-pickerHeaderHeight-pickerFooterHeight-1)/pickerItemHeight)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(len(m.items), start+rows)
	for i := start; i < end; i++ {
		b.WriteString(m.itemView(m.items[i], i == m.cursor))
	}
	if len(m.items) == 0 {
		b.WriteString(pad + subtleStyle.Render("Nothing found.") + "\n")
	}

	for lines := strings.Count(b.String(), "\n"); lines < m.common.height-pickerFooterHeight; lines++ {
		b.WriteString("\n")
	}
	b.WriteString(pad + m.footerView())
	return b.String()
}

func (m pickerModel) countView() string {
	n := len(m.items)
	s := fmt.Sprintf("%d %s", n, pluralize(n, "unit", "units"))
	if q := m.filterInput.Value(); q != "" {
		s += fmt.Sprintf(" matching “%s”", q)
	}
	return pickerNoteStyle(s)
}

func (m pickerModel) itemView(it pickerItem, selected bool) string {
	width := max(10, m.common.width-pickerHorizontalPad*2-2)

	name := truncate.StringWithTail(it.entry.UnitName, uint(width), ellipsis) //nolint:gosec
	note := it.entry.UnitID
	if it.entry.Uploaded() {
		note = "imported"
		if ms, err := strconv.ParseInt(strings.TrimPrefix(it.entry.UnitID, "upload_"), 10, 64); err == nil {
			note += " " + humanize.Time(time.UnixMilli(ms))
		}
	}
	if src := m.common.displayPath(it.entry.DataURL); src != "" {
		note += " · " + src
	}
	note = truncate.StringWithTail(note, uint(width), ellipsis) //nolint:gosec

	var gutter string
	if selected {
		gutter = focusMarker
		name = lipgloss.StyleRunes(name, it.matched,
			lipgloss.NewStyle().Foreground(fuchsia).Underline(true),
			lipgloss.NewStyle().Foreground(fuchsia))
		note = pickerSelectedNoteStyle(note)
	} else {
		gutter = noFocusMarker
		if len(it.matched) > 0 {
			name = lipgloss.StyleRunes(name, it.matched,
				lipgloss.NewStyle().Underline(true), lipgloss.NewStyle())
		}
		note = pickerNoteStyle(note)
	}

	pad := strings.Repeat(" ", pickerHorizontalPad)
	return pad + gutter + " " + name + "\n" +
		pad + gutter + " " + note + "\n\n"
}

func (m pickerModel) footerView() string {
	if m.showStatusMessage {
		if m.statusMessage.isError {
			return statusBarErrorStyle(" " + m.statusMessage.message + " ")
		}
		return statusBarMessageStyle(" " + m.statusMessage.message + " ")
	}
	var hints []string
	switch m.state {
	case pickerStateFiltering:
		hints = []string{"enter apply", "esc clear"}
	case pickerStateImporting:
		hints = []string{"enter import", "esc cancel"}
	default:
		hints = []string{"enter open", "/ find", "o import", "q quit"}
	}
	return pickerDimStyle(strings.Join(hints, " • "))
}
