package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lectio-app/lectio/internal/lesson"
	"github.com/lectio-app/lectio/tts"
)

type hoverCall struct {
	enter     bool
	paragraph int
	index     int
}

type fakeHover struct {
	calls []hoverCall
}

func (f *fakeHover) HoverEnter(p, i int) {
	f.calls = append(f.calls, hoverCall{enter: true, paragraph: p, index: i})
}

func (f *fakeHover) HoverLeave() {
	f.calls = append(f.calls, hoverCall{})
}

func (f *fakeHover) last() hoverCall {
	if len(f.calls) == 0 {
		return hoverCall{}
	}
	return f.calls[len(f.calls)-1]
}

func newTestLesson(t *testing.T) (lessonModel, *fakeHover, *tts.Controller) {
	t.Helper()

	ctrl := tts.NewController(nil, nil, nil, tts.DefaultConfig())
	t.Cleanup(func() { _ = ctrl.Close() })

	hover := &fakeHover{}
	common := &commonModel{
		cfg:        Config{MaxWidth: 80},
		ctx:        context.Background(),
		width:      80,
		height:     24,
		controller: ctrl,
		hover:      hover,
		library:    lesson.NewLibrary(nil),
	}
	m := newLessonModel(common)
	m.setSize(80, 24)
	m.load(lesson.IndexEntry{UnitID: "unit1"}, testUnit())
	return m, hover, ctrl
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case keyEsc:
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLessonLoadAttachesDocument(t *testing.T) {
	m, hover, ctrl := newTestLesson(t)

	if ctrl.Unit() == nil || ctrl.Unit().UnitID != "unit1" {
		t.Fatal("Expected the controller to hold the loaded unit")
	}
	if got := hover.last(); !got.enter || got.paragraph != 1 || got.index != 0 {
		t.Errorf("Expected hover on the first sentence, got %+v", got)
	}
	if m.viewport.TotalLineCount() == 0 {
		t.Error("Expected rendered content")
	}
}

func TestLessonFocusMovesHover(t *testing.T) {
	m, hover, _ := newTestLesson(t)

	m, _ = m.update(keyPress("down"))
	if got := hover.last(); !got.enter || got.paragraph != 1 || got.index != 1 {
		t.Errorf("Expected hover on sentence 1.1, got %+v", got)
	}

	m, _ = m.update(keyPress("j"))
	if f := m.focused(); f == nil || f.isSentence() {
		t.Fatal("Expected focus on the paragraph button")
	}
	if got := hover.last(); got.enter {
		t.Errorf("Expected hover to leave on a button, got %+v", got)
	}

	m, _ = m.update(keyPress("G"))
	if m.focus != len(m.items)-1 {
		t.Errorf("Expected focus on the last item, got %d", m.focus)
	}
	m, _ = m.update(keyPress("down"))
	if m.focus != len(m.items)-1 {
		t.Errorf("Expected focus to stay at the end, got %d", m.focus)
	}
}

func TestLessonPanels(t *testing.T) {
	m, _, _ := newTestLesson(t)

	m, _ = m.update(keyPress("t"))
	if m.doc.panelOf(1) != panelTranslation {
		t.Fatalf("Expected translation panel for paragraph 1, got %v", m.doc.panelOf(1))
	}

	// Move to the paragraph button and open the implication.
	m, _ = m.update(keyPress("down"))
	m, _ = m.update(keyPress("down"))
	m, _ = m.update(keyPress("i"))
	if m.doc.panelOf(1) != panelImplication {
		t.Fatalf("Expected implication panel, got %v", m.doc.panelOf(1))
	}
	f := m.focused()
	if f == nil || f.isSentence() || f.control.Kind != tts.ControlParagraph {
		t.Errorf("Expected focus to stay on the paragraph button, got %+v", f)
	}
	if len(m.items) != 8 {
		t.Errorf("Expected the implication button to become focusable, got %d items", len(m.items))
	}

	m, _ = m.update(keyPress("down"))
	if f := m.focused(); f == nil || f.isSentence() || f.control.Kind != tts.ControlImplication {
		t.Errorf("Expected focus on the implication button, got %+v", f)
	}

	// Closing the panel moves focus back to the paragraph button.
	m, _ = m.update(keyPress("i"))
	if f := m.focused(); f == nil || f.isSentence() || f.control.Kind != tts.ControlParagraph {
		t.Errorf("Expected focus back on the paragraph button, got %+v", f)
	}
}

func TestLessonActivate(t *testing.T) {
	m, _, _ := newTestLesson(t)

	_, cmd := m.update(keyPress("enter"))
	if cmd == nil {
		t.Fatal("Expected a playback command for the focused sentence")
	}

	m.unload()
	if m.unit != nil || len(m.items) != 0 {
		t.Error("Expected unload to clear the lesson")
	}
	if cmd := m.activate(); cmd != nil {
		t.Error("Expected no command without a focused item")
	}
}

func TestLessonFocusedText(t *testing.T) {
	m, _, _ := newTestLesson(t)

	if got := m.focusedText(); got != "A fire broke out." {
		t.Errorf("Expected the first sentence, got %q", got)
	}

	m.focus = 2
	if got := m.focusedText(); got != "A fire broke out. It spread quickly!" {
		t.Errorf("Expected the whole paragraph, got %q", got)
	}

	m.focus = len(m.items) - 2
	if got := m.focusedText(); got != "severe" {
		t.Errorf("Expected the word, got %q", got)
	}
}

func TestLessonPlaybackNote(t *testing.T) {
	m, _, _ := newTestLesson(t)

	if note := m.playbackNote(); note != "" {
		t.Errorf("Expected no note while idle, got %q", note)
	}

	m, _ = m.update(tts.ChangedMsg{Status: tts.Status{
		Active:   true,
		Target:   tts.ParagraphTarget(1),
		State:    tts.ButtonPlaying,
		Source:   tts.HandleSynthesized,
		Sentence: 1,
		Total:    2,
	}})
	want := " ▶ " + tts.ParagraphTarget(1).String() + " 2/2 (tts) "
	if note := m.playbackNote(); note != want {
		t.Errorf("Expected %q, got %q", want, note)
	}
}

func TestLessonStatusMessage(t *testing.T) {
	m, _, _ := newTestLesson(t)

	m, cmd := m.update(tts.ErrorMsg{Err: tts.ErrNoUnit, Target: tts.ParagraphTarget(1)})
	if cmd == nil || m.state != lessonStateStatusMessage || !m.statusMessage.isError {
		t.Fatal("Expected an error status message")
	}

	m, _ = m.update(statusMessageTimeoutMsg(lessonContext))
	if m.state != lessonStateBrowse {
		t.Error("Expected the status message to time out")
	}
}
