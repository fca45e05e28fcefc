package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lectio-app/lectio/internal/lesson"
	"github.com/lectio-app/lectio/tts"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

const (
	gutterWidth   = 2
	minTextWidth  = 20
	panelIndent   = 2
	vocabHeading  = "Core vocabulary"
	panelKeysHint = "t translation  i implication"
)

// focusItem is something the cursor can rest on: a sentence or a control.
type focusItem struct {
	control   *tts.ControlID
	paragraph int
	index     int
}

func sentenceFocus(p, i int) focusItem { return focusItem{paragraph: p, index: i} }

func controlFocus(id tts.ControlID) focusItem {
	f := focusItem{control: &id}
	if id.Kind == tts.ControlParagraph || id.Kind == tts.ControlImplication {
		f.paragraph = id.N
	}
	return f
}

func (f focusItem) isSentence() bool { return f.control == nil }

func (f focusItem) equal(o focusItem) bool {
	if f.isSentence() != o.isSentence() {
		return false
	}
	if f.isSentence() {
		return f.paragraph == o.paragraph && f.index == o.index
	}
	return *f.control == *o.control
}

// focusItems lists the cursor stops in reading order. Implication buttons
// only exist while their panel is open.
func focusItems(d *document) []focusItem {
	var items []focusItem
	for n := 1; n <= len(d.paragraphs); n++ {
		pv := d.paragraphs[n-1]
		for i := range pv.sentences {
			items = append(items, sentenceFocus(n, i))
		}
		items = append(items, controlFocus(tts.ControlID{Kind: tts.ControlParagraph, N: n}))
		if d.panelOf(n) == panelImplication {
			items = append(items, controlFocus(tts.ControlID{Kind: tts.ControlImplication, N: n}))
		}
	}
	for _, id := range d.vocabulary {
		items = append(items, controlFocus(tts.ControlID{Kind: tts.ControlVocabulary, N: id}))
	}
	return items
}

// renderer accumulates lesson content and remembers which line the focused
// item landed on.
type renderer struct {
	b         strings.Builder
	lines     int
	focusLine int
}

func (r *renderer) line(s string) {
	r.b.WriteString(s)
	r.b.WriteString("\n")
	r.lines += strings.Count(s, "\n") + 1
}

func (r *renderer) blank() { r.line("") }

func (r *renderer) markFocus() { r.focusLine = r.lines }

// renderLesson renders u through d at the given width.
func renderLesson(u *lesson.Unit, d *document, focus *focusItem, width int) (string, int) {
	width = max(width-gutterWidth, minTextWidth)
	r := &renderer{}

	english, chinese := u.Article.TitleParts()
	if english == "" {
		english = u.UnitName
	}
	r.blank()
	r.line(noFocusMarker + " " + titleStyle(english))
	if chinese != "" {
		r.line(noFocusMarker + " " + subtitle(chinese))
	}
	r.blank()

	for n := 1; n <= len(d.paragraphs); n++ {
		renderParagraph(r, d, n, focus, width)
		r.blank()
	}

	if len(d.vocabulary) > 0 {
		renderVocabulary(r, u, d, focus, width)
	}
	return r.b.String(), r.focusLine
}

func renderParagraph(r *renderer, d *document, n int, focus *focusItem, width int) {
	pv := d.paragraphs[n-1]

	focused := focus != nil && focus.isSentence() && focus.paragraph == n
	spans := make([]string, 0, len(pv.sentences))
	for i, el := range pv.sentences {
		marks := el.snapshot()
		st := sentenceStyle
		if marks[tts.MarkSelected] || marks[tts.MarkPlaying] {
			st = sentenceSelectedStyle
		}
		if focused && focus.index == i {
			st = st.Inherit(sentenceFocusedStyle)
		}
		spans = append(spans, st.Render(el.text))
	}
	if focused {
		r.markFocus()
	}
	r.line(gutter(wrapText(strings.Join(spans, " "), width), focused))

	id := tts.ControlID{Kind: tts.ControlParagraph, N: n}
	row := button(d, id, focus) + "  " + keyHintStyle(panelKeysHint)
	if isFocused(focus, id) {
		r.markFocus()
	}
	r.line(row)

	switch d.panelOf(n) {
	case panelTranslation:
		r.line(gutter(panelStyle.Render(translationText(pv, width-panelIndent-gutterWidth)), false))
	case panelImplication:
		r.line(gutter(panelStyle.Render(implicationText(pv, width-panelIndent-gutterWidth)), false))
		implID := tts.ControlID{Kind: tts.ControlImplication, N: n}
		if isFocused(focus, implID) {
			r.markFocus()
		}
		r.line(strings.Repeat(" ", panelIndent) + button(d, implID, focus))
	}
}

func translationText(pv *paragraphView, width int) string {
	if len(pv.translations) == 0 {
		return translationStyle.Render(wrapText(pv.translation, width))
	}
	spans := make([]string, 0, len(pv.translations))
	for _, el := range pv.translations {
		if el.Marked(tts.MarkHighlight) {
			spans = append(spans, translationHighlightStyle.Render(el.text))
			continue
		}
		spans = append(spans, translationStyle.Render(el.text))
	}
	return wrapText(strings.Join(spans, " "), width)
}

func implicationText(pv *paragraphView, width int) string {
	parts := make([]string, 0, len(pv.implication))
	for _, el := range pv.implication {
		if el.text == "" {
			continue
		}
		st := implicationStyle
		if el.Marked(tts.MarkPlaying) {
			st = implicationPlayingStyle
		}
		parts = append(parts, st.Render(wrapText(el.text, width)))
	}
	return strings.Join(parts, "\n")
}

func renderVocabulary(r *renderer, u *lesson.Unit, d *document, focus *focusItem, width int) {
	r.line(noFocusMarker + " " + sectionHeading(vocabHeading))
	r.blank()

	wordCol := 0
	for _, v := range u.Vocabulary {
		wordCol = max(wordCol, runewidth.StringWidth(v.Word))
	}

	for i, v := range u.Vocabulary {
		id := tts.ControlID{Kind: tts.ControlVocabulary, N: v.ID}
		if isFocused(focus, id) {
			r.markFocus()
		}
		head := fmt.Sprintf("%s %2d. %s", button(d, id, focus), i+1,
			vocabWordStyle(runewidth.FillRight(v.Word, wordCol)))
		if v.Phonetic != "" {
			head += " " + phoneticStyle(v.Phonetic)
		}
		r.line(head)
		if v.Meaning != "" {
			r.line(gutter(indent(subtitle(wrapText(v.Meaning, width-6)), 6), false))
		}
	}
}

// button renders a control with its current label and state.
func button(d *document, id tts.ControlID, focus *focusItem) string {
	marker := noFocusMarker
	if isFocused(focus, id) {
		marker = focusMarker
	}
	c, ok := d.controls[id]
	if !ok {
		return marker
	}
	var st lipgloss.Style
	switch c.State() {
	case tts.ButtonLoading:
		st = buttonLoadingStyle
	case tts.ButtonPlaying:
		st = buttonPlayingStyle
	default:
		st = buttonStyle
	}
	return marker + " " + st.Render(c.Label())
}

func isFocused(focus *focusItem, id tts.ControlID) bool {
	return focus != nil && !focus.isSentence() && *focus.control == id
}

// gutter prefixes every line of s with the focus column.
func gutter(s string, focused bool) string {
	marker := noFocusMarker
	if focused {
		marker = focusMarker
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = marker + " " + l
	}
	return strings.Join(lines, "\n")
}

// wrapText wraps on word boundaries and then hard-wraps whatever is still too
// long, which is how unspaced Chinese text gets broken.
func wrapText(s string, width int) string {
	if width < 1 {
		return s
	}
	return wrap.String(wordwrap.String(s, width), width)
}
