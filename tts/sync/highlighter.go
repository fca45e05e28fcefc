// Package sync keeps the rendered lesson's marks in step with playback: the
// sentence being spoken and its translation, and hover highlighting.
package sync

import (
	"sync"

	"github.com/lectio-app/lectio/tts"
)

// Highlighter marks sentences and translations on a tts.Document. Missing
// elements are skipped.
//
// Hover and playback share tts.MarkHighlight on translations, so either can
// clear the other's mark.
type Highlighter struct {
	mu  sync.Mutex
	doc tts.Document
}

// NewHighlighter creates a highlighter with no document attached.
func NewHighlighter() *Highlighter {
	return &Highlighter{}
}

// Attach switches to a new document.
func (h *Highlighter) Attach(doc tts.Document) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.doc = doc
}

// Highlight clears every sentence and translation mark, then marks sentence
// (paragraph, index) selected and its translation highlighted.
func (h *Highlighter) Highlight(paragraph, index int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.doc == nil {
		return
	}
	h.clearSentencesLocked()

	if el, ok := h.doc.Sentence(paragraph, index); ok {
		el.Mark(tts.MarkSelected)
	}
	if el, ok := h.doc.Translation(paragraph, index); ok {
		el.Mark(tts.MarkHighlight)
	}
}

// ClearAll removes sentence and translation marks, and implication marks.
func (h *Highlighter) ClearAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.doc == nil {
		return
	}
	h.clearSentencesLocked()
	h.clearImplicationsLocked()
}

// HoverEnter highlights the translation of the hovered sentence without
// touching playback.
func (h *Highlighter) HoverEnter(paragraph, index int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.doc == nil {
		return
	}
	if el, ok := h.doc.Translation(paragraph, index); ok {
		el.Mark(tts.MarkHighlight)
	}
}

// HoverLeave clears every translation highlight, including one placed by
// playback.
func (h *Highlighter) HoverLeave() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.doc == nil {
		return
	}
	for _, el := range h.doc.Translations() {
		el.Unmark(tts.MarkHighlight)
	}
}

func (h *Highlighter) clearSentencesLocked() {
	for _, el := range h.doc.Sentences() {
		el.Unmark(tts.MarkPlaying, tts.MarkSelected)
	}
	for _, el := range h.doc.Translations() {
		el.Unmark(tts.MarkHighlight)
	}
}

func (h *Highlighter) clearImplicationsLocked() {
	for _, el := range h.doc.Implications() {
		el.Unmark(tts.MarkPlaying)
	}
}
