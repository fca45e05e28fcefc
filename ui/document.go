package ui

import (
	"sync"

	"github.com/lectio-app/lectio/internal/lesson"
	"github.com/lectio-app/lectio/tts"
	"github.com/lectio-app/lectio/tts/sentence"
)

// panel is what a paragraph shows below its text. Translation and
// implication are never shown together.
type panel int

const (
	panelNone panel = iota
	panelTranslation
	panelImplication
)

// document is the rendered form of a unit. Playback marks it from its own
// goroutines while the program renders it, so every access goes through mu.
type document struct {
	mu sync.RWMutex

	unitID     string
	paragraphs []*paragraphView
	vocabulary []int
	controls   map[tts.ControlID]*control
}

type paragraphView struct {
	sentences    []*element
	translations []*element
	// translation is shown as-is when it was not pre-split.
	translation string
	// implication holds the English and Chinese parts, or nothing.
	implication []*element
	panel       panel
}

type element struct {
	doc   *document
	text  string
	marks map[tts.Mark]bool
}

type control struct {
	doc   *document
	id    tts.ControlID
	label string
	state tts.ButtonState
}

var _ tts.Document = (*document)(nil)

func newDocument(u *lesson.Unit) *document {
	d := &document{
		unitID:   u.UnitID,
		controls: make(map[tts.ControlID]*control),
	}

	for n := 1; n <= u.ParagraphCount(); n++ {
		p, _ := u.Paragraph(n)
		pv := &paragraphView{}
		for _, s := range p.SentenceList() {
			pv.sentences = append(pv.sentences, d.newElement(sentence.PlainText(s)))
		}
		for _, s := range p.TranslationSentences {
			pv.translations = append(pv.translations, d.newElement(sentence.PlainText(s)))
		}
		if len(pv.translations) == 0 {
			pv.translation = sentence.PlainText(p.Translation)
		}
		if p.Implication.English != "" || p.Implication.Chinese != "" {
			pv.implication = []*element{
				d.newElement(sentence.PlainText(p.Implication.English)),
				d.newElement(sentence.PlainText(p.Implication.Chinese)),
			}
			d.addControl(tts.ControlID{Kind: tts.ControlImplication, N: n})
		}
		d.paragraphs = append(d.paragraphs, pv)
		d.addControl(tts.ControlID{Kind: tts.ControlParagraph, N: n})
	}

	for _, v := range u.Vocabulary {
		d.vocabulary = append(d.vocabulary, v.ID)
		d.addControl(tts.ControlID{Kind: tts.ControlVocabulary, N: v.ID})
	}
	return d
}

func (d *document) newElement(text string) *element {
	return &element{doc: d, text: text, marks: make(map[tts.Mark]bool)}
}

func (d *document) addControl(id tts.ControlID) {
	d.controls[id] = &control{doc: d, id: id, label: tts.IdleLabel(id.Kind, "")}
}

func (d *document) paragraph(n int) (*paragraphView, bool) {
	if n < 1 || n > len(d.paragraphs) {
		return nil, false
	}
	return d.paragraphs[n-1], true
}

// Control implements tts.Document.
func (d *document) Control(id tts.ControlID) (tts.Control, bool) {
	c, ok := d.controls[id]
	if !ok {
		return nil, false
	}
	return c, true
}

// Sentence implements tts.Document.
func (d *document) Sentence(p, i int) (tts.Element, bool) {
	pv, ok := d.paragraph(p)
	if !ok || i < 0 || i >= len(pv.sentences) {
		return nil, false
	}
	return pv.sentences[i], true
}

// Translation implements tts.Document. Only pre-split translations have
// per-sentence elements.
func (d *document) Translation(p, i int) (tts.Element, bool) {
	pv, ok := d.paragraph(p)
	if !ok || i < 0 || i >= len(pv.translations) {
		return nil, false
	}
	return pv.translations[i], true
}

// Sentences implements tts.Document.
func (d *document) Sentences() []tts.Element {
	var out []tts.Element
	for _, pv := range d.paragraphs {
		for _, el := range pv.sentences {
			out = append(out, el)
		}
	}
	return out
}

// Translations implements tts.Document.
func (d *document) Translations() []tts.Element {
	var out []tts.Element
	for _, pv := range d.paragraphs {
		for _, el := range pv.translations {
			out = append(out, el)
		}
	}
	return out
}

// Implications implements tts.Document.
func (d *document) Implications() []tts.Element {
	var out []tts.Element
	for _, pv := range d.paragraphs {
		for _, el := range pv.implication {
			out = append(out, el)
		}
	}
	return out
}

// ImplicationParts implements tts.Document.
func (d *document) ImplicationParts(p int) []tts.Element {
	pv, ok := d.paragraph(p)
	if !ok {
		return nil
	}
	out := make([]tts.Element, 0, len(pv.implication))
	for _, el := range pv.implication {
		out = append(out, el)
	}
	return out
}

// showPanel switches paragraph p's panel, or closes it when it is already
// showing.
func (d *document) showPanel(p int, which panel) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pv, ok := d.paragraph(p)
	if !ok {
		return
	}
	if which == panelImplication && len(pv.implication) == 0 {
		return
	}
	if pv.panel == which {
		pv.panel = panelNone
		return
	}
	pv.panel = which
}

func (d *document) panelOf(p int) panel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if pv, ok := d.paragraph(p); ok {
		return pv.panel
	}
	return panelNone
}

// snapshot returns the marks currently set on e.
func (e *element) snapshot() map[tts.Mark]bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	out := make(map[tts.Mark]bool, len(e.marks))
	for m, on := range e.marks {
		if on {
			out[m] = true
		}
	}
	return out
}

func (e *element) Mark(m tts.Mark) {
	e.doc.mu.Lock()
	e.marks[m] = true
	e.doc.mu.Unlock()
}

func (e *element) Unmark(ms ...tts.Mark) {
	e.doc.mu.Lock()
	for _, m := range ms {
		delete(e.marks, m)
	}
	e.doc.mu.Unlock()
}

func (e *element) Marked(m tts.Mark) bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.marks[m]
}

func (c *control) Label() string {
	c.doc.mu.RLock()
	defer c.doc.mu.RUnlock()
	return c.label
}

func (c *control) SetLabel(label string) {
	c.doc.mu.Lock()
	c.label = label
	c.doc.mu.Unlock()
}

func (c *control) State() tts.ButtonState {
	c.doc.mu.RLock()
	defer c.doc.mu.RUnlock()
	return c.state
}

func (c *control) SetState(s tts.ButtonState) {
	c.doc.mu.Lock()
	c.state = s
	c.doc.mu.Unlock()
}
