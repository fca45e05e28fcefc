package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/lectio-app/lectio/internal/lesson"
	"github.com/lectio-app/lectio/tts"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"
)

const statusBarHeight = 1

type lessonState int

const (
	lessonStateBrowse lessonState = iota
	lessonStateStatusMessage
)

type lessonStatusMessage struct {
	message string
	isError bool
}

type lessonModel struct {
	common   *commonModel
	viewport viewport.Model
	spinner  spinner.Model
	state    lessonState
	showHelp bool

	statusMessage      lessonStatusMessage
	statusMessageTimer *time.Timer

	entry lesson.IndexEntry
	unit  *lesson.Unit
	doc   *document
	items []focusItem
	focus int

	playback tts.Status
}

func newLessonModel(common *commonModel) lessonModel {
	vp := viewport.New(0, 0)
	vp.YPosition = 0
	vp.MouseWheelEnabled = true

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = subtleStyle

	return lessonModel{
		common:   common,
		viewport: vp,
		spinner:  sp,
		state:    lessonStateBrowse,
	}
}

func (m *lessonModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = h - statusBarHeight
	if m.showHelp {
		m.viewport.Height -= lipgloss.Height(m.helpView())
	}
	m.render()
}

func (m *lessonModel) toggleHelp() {
	m.showHelp = !m.showHelp
	m.setSize(m.common.width, m.common.height)
}

// load swaps in a unit. Playback of the previous one is stopped by the
// controller.
func (m *lessonModel) load(entry lesson.IndexEntry, u *lesson.Unit) {
	m.entry = entry
	m.unit = u
	m.doc = newDocument(u)
	m.items = focusItems(m.doc)
	m.focus = 0
	m.playback = tts.Status{Sentence: -1}
	m.viewport.GotoTop()

	if c := m.common.controller; c != nil {
		c.LoadUnit(u, m.doc)
	}
	m.hover()
	m.render()
}

func (m *lessonModel) unload() {
	if m.common.controller != nil {
		m.common.controller.Stop()
	}
	if m.common.hover != nil {
		m.common.hover.HoverLeave()
	}
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.state = lessonStateBrowse
	m.unit = nil
	m.doc = nil
	m.items = nil
	m.viewport.SetContent("")
	m.viewport.YOffset = 0
}

func (m lessonModel) focused() *focusItem {
	if m.focus < 0 || m.focus >= len(m.items) {
		return nil
	}
	f := m.items[m.focus]
	return &f
}

// render lays the document out again and keeps the focused item on screen.
func (m *lessonModel) render() {
	if m.unit == nil || m.doc == nil {
		return
	}
	width := m.viewport.Width
	if mw := int(m.common.cfg.MaxWidth); mw > 0 && width > mw { //nolint:gosec
		width = mw
	}
	content, line := renderLesson(m.unit, m.doc, m.focused(), width)
	m.viewport.SetContent(content)

	if m.viewport.Height <= 0 {
		return
	}
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(line)
	case line >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

// moveFocus moves the cursor by delta stops, clamped to the ends.
func (m *lessonModel) moveFocus(delta int) {
	if len(m.items) == 0 {
		return
	}
	m.focus = max(0, min(len(m.items)-1, m.focus+delta))
	m.hover()
	m.render()
}

// hover tells the highlighter which sentence the cursor is over.
func (m *lessonModel) hover() {
	h := m.common.hover
	if h == nil {
		return
	}
	h.HoverLeave()
	if f := m.focused(); f != nil && f.isSentence() {
		h.HoverEnter(f.paragraph, f.index)
	}
}

// togglePanel opens or closes a panel under the focused paragraph, keeping
// the cursor on the same item when it survives.
func (m *lessonModel) togglePanel(which panel) {
	f := m.focused()
	if f == nil || f.paragraph == 0 {
		return
	}
	m.doc.showPanel(f.paragraph, which)

	cur := *f
	m.items = focusItems(m.doc)
	m.focus = 0
	for i, it := range m.items {
		if it.equal(cur) {
			m.focus = i
			break
		}
		if it.paragraph == cur.paragraph && !it.isSentence() && it.control.Kind == tts.ControlParagraph {
			m.focus = i
		}
	}
	m.render()
}

// activate plays or stops whatever the cursor is on.
func (m lessonModel) activate() tea.Cmd {
	f := m.focused()
	c := m.common.controller
	if f == nil || c == nil {
		return nil
	}
	ctx := m.common.ctx

	if f.isSentence() {
		text := ""
		if el, ok := m.doc.Sentence(f.paragraph, f.index); ok {
			text = el.(*element).text
		}
		n, i := f.paragraph, f.index
		return tts.RequestCmd(tts.SentenceTarget(n, i), func() error {
			return c.PlaySentence(ctx, n, i, text)
		})
	}

	id := *f.control
	switch id.Kind {
	case tts.ControlParagraph:
		return tts.RequestCmd(tts.ParagraphTarget(id.N), func() error {
			return c.ToggleParagraph(ctx, id.N)
		})
	case tts.ControlImplication:
		return tts.RequestCmd(tts.ImplicationTarget(id.N), func() error {
			return c.ToggleImplication(ctx, id.N)
		})
	case tts.ControlVocabulary:
		return tts.RequestCmd(tts.VocabularyTarget(id.N), func() error {
			return c.PlayVocabulary(ctx, id.N)
		})
	}
	return nil
}

// focusedText is the text under the cursor, for copying.
func (m lessonModel) focusedText() string {
	f := m.focused()
	if f == nil {
		return ""
	}
	if f.isSentence() {
		if el, ok := m.doc.Sentence(f.paragraph, f.index); ok {
			return el.(*element).text
		}
		return ""
	}
	switch f.control.Kind {
	case tts.ControlParagraph:
		if pv, ok := m.doc.paragraph(f.paragraph); ok {
			parts := make([]string, 0, len(pv.sentences))
			for _, el := range pv.sentences {
				parts = append(parts, el.text)
			}
			return strings.Join(parts, " ")
		}
	case tts.ControlImplication:
		if p, ok := m.unit.Paragraph(f.paragraph); ok {
			return strings.TrimSpace(p.Implication.English + "\n" + p.Implication.Chinese)
		}
	case tts.ControlVocabulary:
		if w, ok := m.unit.Word(f.control.N); ok {
			return w.Word
		}
	}
	return ""
}

// Perform stuff that needs to happen after a successful status message.
func (m *lessonModel) showStatusMessage(msg lessonStatusMessage) tea.Cmd {
	m.state = lessonStateStatusMessage
	m.statusMessage = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)

	return waitForStatusMessageTimeout(lessonContext, m.statusMessageTimer)
}

func (m lessonModel) update(msg tea.Msg) (lessonModel, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", keyEsc:
			if m.state != lessonStateBrowse {
				m.state = lessonStateBrowse
				return m, nil
			}
		case "down", "j", "tab":
			m.moveFocus(1)
		case "up", "k", "shift+tab":
			m.moveFocus(-1)
		case "home", "g":
			m.focus = 0
			m.hover()
			m.render()
			m.viewport.GotoTop()
		case "end", "G":
			m.focus = max(0, len(m.items)-1)
			m.hover()
			m.render()
			m.viewport.GotoBottom()
		case "pgdown", "f":
			m.viewport.ViewDown()
		case "pgup", "b":
			m.viewport.ViewUp()
		case "d":
			m.viewport.HalfViewDown()
		case "u":
			m.viewport.HalfViewUp()

		case "enter", " ":
			cmds = append(cmds, m.activate())
		case "s":
			if c := m.common.controller; c != nil {
				c.Stop()
			}
		case "t":
			m.togglePanel(panelTranslation)
		case "i":
			m.togglePanel(panelImplication)

		case "y":
			text := m.focusedText()
			if text == "" {
				break
			}
			// Copy using OSC 52
			termenv.Copy(text)
			// Copy using native system clipboard
			_ = clipboard.WriteAll(text)
			cmds = append(cmds, m.showStatusMessage(lessonStatusMessage{"Copied " + runewidth.Truncate(text, 24, ellipsis), false}))

		case "r":
			if m.unit != nil {
				return m, reloadEntry(*m.common, m.entry)
			}

		case "?":
			m.toggleHelp()
		}

	case tts.ChangedMsg:
		m.playback = msg.Status
		m.render()

	case tts.ErrorMsg:
		log.Warn("playback request failed", "target", msg.Target, "error", msg.Err)
		cmds = append(cmds, m.showStatusMessage(lessonStatusMessage{msg.Err.Error(), true}))

	case tts.PreloadedMsg:
		if m.unit != nil && msg.UnitID == m.unit.UnitID && msg.Count > 0 {
			note := fmt.Sprintf("Cached %d %s", msg.Count, pluralize(msg.Count, "clip", "clips"))
			cmds = append(cmds, m.showStatusMessage(lessonStatusMessage{note, false}))
		}

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		return m, nil

	case statusMessageTimeoutMsg:
		m.state = lessonStateBrowse
	}

	if _, ok := msg.(tea.MouseMsg); ok {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m lessonModel) View() string {
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")

	// Footer
	m.statusBarView(&b)

	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}

	return b.String()
}

// playbackNote describes what is playing, if anything.
func (m lessonModel) playbackNote() string {
	st := m.playback
	if !st.Active {
		return ""
	}
	var s string
	switch st.State {
	case tts.ButtonLoading:
		s = m.spinner.View() + " loading " + st.Target.String()
	case tts.ButtonPlaying:
		s = "▶ " + st.Target.String()
		if st.Total > 0 && st.Sentence >= 0 {
			s += fmt.Sprintf(" %d/%d", st.Sentence+1, st.Total)
		}
		if st.Source == tts.HandleSynthesized {
			s += " (tts)"
		}
	default:
		return ""
	}
	return " " + s + " "
}

func (m lessonModel) statusBarView(b *strings.Builder) {
	const (
		minPercent               float64 = 0.0
		maxPercent               float64 = 1.0
		percentToStringMagnitude float64 = 100.0
	)

	showStatusMessage := m.state == lessonStateStatusMessage

	// Logo
	logo := logoView()

	// Scroll percent
	percent := math.Max(minPercent, math.Min(maxPercent, m.viewport.ScrollPercent()))
	scrollPercent := fmt.Sprintf(" %3.f%% ", percent*percentToStringMagnitude)
	if playing := m.playbackNote(); playing != "" {
		scrollPercent = playing + scrollPercent
	}
	scrollPercent = statusBarPlaybackStyle(scrollPercent)

	// "Help" note
	var helpNote string
	if showStatusMessage {
		helpNote = statusBarMessageHelpStyle(" ? Help ")
	} else {
		helpNote = statusBarHelpStyle(" ? Help ")
	}

	// Note
	var note string
	if showStatusMessage {
		note = m.statusMessage.message
	} else {
		note = m.unitNote()
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	style := statusBarNoteStyle
	switch {
	case showStatusMessage && m.statusMessage.isError:
		style = statusBarErrorStyle
	case showStatusMessage:
		style = statusBarMessageStyle
	}
	note = style(note)

	// Empty space
	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := style(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		scrollPercent,
		helpNote,
	)
}

// unitNote is the unit name, plus the cache size when there is one.
func (m lessonModel) unitNote() string {
	if m.unit == nil {
		return ""
	}
	note := m.unit.UnitName
	if cm := m.common.cache; cm != nil {
		if n := cm.Size(); n > 0 {
			note += " · " + humanize.IBytes(uint64(n)) + " cached" //nolint:gosec
		}
	}
	return note
}

func (m lessonModel) helpView() (s string) {
	col1 := []string{
		"enter   play / stop",
		"s       stop",
		"t       translation",
		"i       implication",
		"y       copy",
		"r       reload unit",
		"esc     back to units",
		"q       quit",
	}

	s += "\n"
	s += "k/↑      up                  " + col1[0] + "\n"
	s += "j/↓      down                " + col1[1] + "\n"
	s += "b/pgup   page up             " + col1[2] + "\n"
	s += "f/pgdn   page down           " + col1[3] + "\n"
	s += "u        ½ page up           " + col1[4] + "\n"
	s += "d        ½ page down         " + col1[5] + "\n"
	s += "g/home   first item          " + col1[6] + "\n"
	s += "G/end    last item           " + col1[7]

	s = indent(s, 2)

	// Fill up empty cells with spaces for background coloring
	if m.common.width > 0 {
		lines := strings.Split(s, "\n")
		for i := 0; i < len(lines); i++ {
			l := runewidth.StringWidth(lines[i])
			n := max(m.common.width-l, 0)
			lines[i] += strings.Repeat(" ", n)
		}

		s = strings.Join(lines, "\n")
	}

	return helpViewStyle(s)
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
