package tts_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lectio-app/lectio/internal/lesson"
	"github.com/lectio-app/lectio/tts"
)

func testUnit() *lesson.Unit {
	return &lesson.Unit{
		UnitID:   "unit1",
		UnitName: "Unit 1 – A Severe Fire in Hong Kong",
		Article: &lesson.Article{
			Title: "A Severe Fire\n香港嚴重火災",
			Paragraphs: []lesson.Paragraph{
				{
					English:     "First one. Second one! Third one?",
					Implication: lesson.Implication{English: "💡 It's a hint.", Chinese: "提示"},
				},
				{
					English:   "Only sentence here.",
					Sentences: []string{"Alpha.", "Beta."},
				},
				{English: ""},
			},
		},
		Vocabulary: []lesson.VocabularyItem{{ID: 1, Word: "severe"}},
	}
}

type fakeElement struct {
	mu    sync.Mutex
	marks map[tts.Mark]bool
}

func (e *fakeElement) Mark(m tts.Mark) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.marks == nil {
		e.marks = make(map[tts.Mark]bool)
	}
	e.marks[m] = true
}

func (e *fakeElement) Unmark(ms ...tts.Mark) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, m := range ms {
		delete(e.marks, m)
	}
}

func (e *fakeElement) Marked(m tts.Mark) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.marks[m]
}

type fakeControl struct {
	mu    sync.Mutex
	label string
	state tts.ButtonState
}

func (c *fakeControl) Label() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.label
}

func (c *fakeControl) SetLabel(l string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.label = l
}

func (c *fakeControl) State() tts.ButtonState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *fakeControl) SetState(s tts.ButtonState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

type fakeDoc struct {
	controls     map[tts.ControlID]*fakeControl
	sentences    map[[2]int]*fakeElement
	translations map[[2]int]*fakeElement
	implications map[int][]*fakeElement
}

func newFakeDoc(u *lesson.Unit) *fakeDoc {
	d := &fakeDoc{
		controls:     make(map[tts.ControlID]*fakeControl),
		sentences:    make(map[[2]int]*fakeElement),
		translations: make(map[[2]int]*fakeElement),
		implications: make(map[int][]*fakeElement),
	}
	for n := 1; n <= u.ParagraphCount(); n++ {
		p, _ := u.Paragraph(n)
		d.controls[tts.ControlID{Kind: tts.ControlParagraph, N: n}] = &fakeControl{label: tts.LabelRead}
		d.controls[tts.ControlID{Kind: tts.ControlImplication, N: n}] = &fakeControl{label: tts.LabelPlay}
		for i := range p.SentenceList() {
			d.sentences[[2]int{n, i}] = &fakeElement{}
			d.translations[[2]int{n, i}] = &fakeElement{}
		}
		d.implications[n] = []*fakeElement{{}, {}}
	}
	for _, v := range u.Vocabulary {
		d.controls[tts.ControlID{Kind: tts.ControlVocabulary, N: v.ID}] = &fakeControl{label: tts.LabelSpeaker}
	}
	return d
}

func (d *fakeDoc) Control(id tts.ControlID) (tts.Control, bool) {
	c, ok := d.controls[id]
	if !ok {
		return nil, false
	}
	return c, true
}

func (d *fakeDoc) control(kind tts.ControlKind, n int) *fakeControl {
	return d.controls[tts.ControlID{Kind: kind, N: n}]
}

func (d *fakeDoc) Sentence(p, i int) (tts.Element, bool) {
	e, ok := d.sentences[[2]int{p, i}]
	if !ok {
		return nil, false
	}
	return e, true
}

func (d *fakeDoc) Translation(p, i int) (tts.Element, bool) {
	e, ok := d.translations[[2]int{p, i}]
	if !ok {
		return nil, false
	}
	return e, true
}

func (d *fakeDoc) Sentences() []tts.Element {
	var out []tts.Element
	for _, e := range d.sentences {
		out = append(out, e)
	}
	return out
}

func (d *fakeDoc) Translations() []tts.Element {
	var out []tts.Element
	for _, e := range d.translations {
		out = append(out, e)
	}
	return out
}

func (d *fakeDoc) Implications() []tts.Element {
	var out []tts.Element
	for _, parts := range d.implications {
		for _, e := range parts {
			out = append(out, e)
		}
	}
	return out
}

func (d *fakeDoc) ImplicationParts(p int) []tts.Element {
	var out []tts.Element
	for _, e := range d.implications[p] {
		out = append(out, e)
	}
	return out
}

// fakeHighlighter records calls.
type fakeHighlighter struct {
	mu         sync.Mutex
	attached   int
	highlights [][2]int
	clears     int
}

func (h *fakeHighlighter) Attach(tts.Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attached++
}

func (h *fakeHighlighter) Highlight(p, i int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.highlights = append(h.highlights, [2]int{p, i})
}

func (h *fakeHighlighter) ClearAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clears++
}

func (h *fakeHighlighter) clearCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clears
}

func (h *fakeHighlighter) highlighted() [][2]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([][2]int(nil), h.highlights...)
}

// fakeClips is a clip player that succeeds unless err is set. A non-nil gate
// holds Start until it is closed.
type fakeClips struct {
	mu        sync.Mutex
	err       error
	gate      chan struct{}
	starts    []string
	playbacks []*tts.Utterance
	prefetch  []string
}

func (f *fakeClips) Start(ctx context.Context, ref string) (tts.Playback, error) {
	f.mu.Lock()
	f.starts = append(f.starts, ref)
	gate, err := f.gate, f.err
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	u := tts.NewUtterance(nil)
	f.mu.Lock()
	f.playbacks = append(f.playbacks, u)
	f.mu.Unlock()
	return u, nil
}

func (f *fakeClips) Prefetch(ctx context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefetch = append(f.prefetch, ref)
	return f.err
}

func (f *fakeClips) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.starts)
}

func (f *fakeClips) playback(i int) *tts.Utterance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playbacks[i]
}

// fakeSynth hands out utterances that tests finish by hand.
type fakeSynth struct {
	mu          sync.Mutex
	unavailable error
	speakErr    error
	texts       []string
	utterances  []*tts.Utterance
}

func (s *fakeSynth) Available() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unavailable
}

func (s *fakeSynth) Speak(ctx context.Context, text string, voice tts.Voice) (tts.Playback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	if s.speakErr != nil {
		return nil, s.speakErr
	}
	u := tts.NewUtterance(nil)
	s.utterances = append(s.utterances, u)
	return u, nil
}

func (s *fakeSynth) spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

func (s *fakeSynth) utterance(i int) *tts.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.utterances[i]
}

func (s *fakeSynth) utteranceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.utterances)
}

// waitFor polls cond until it holds or the test times out.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
