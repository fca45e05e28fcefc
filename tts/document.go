package tts

import "fmt"

// ControlKind is the category of a playable control. Labels are keyed by it.
type ControlKind int

const (
	ControlParagraph ControlKind = iota
	ControlImplication
	ControlVocabulary
	ControlGeneric
)

func (k ControlKind) String() string {
	switch k {
	case ControlParagraph:
		return "paragraph"
	case ControlImplication:
		return "implication"
	case ControlVocabulary:
		return "vocabulary"
	default:
		return "generic"
	}
}

// ControlID addresses a control. N is the paragraph number, or the word id
// for vocabulary controls.
type ControlID struct {
	Kind ControlKind
	N    int
}

// DOMID renders the id the lesson page uses for this control.
func (id ControlID) DOMID(unitID string) string {
	switch id.Kind {
	case ControlParagraph:
		return fmt.Sprintf("%s_para-audio-btn-%d", unitID, id.N)
	case ControlImplication:
		return fmt.Sprintf("%s_impl-audio-btn-%d", unitID, id.N)
	case ControlVocabulary:
		return fmt.Sprintf("%s_vocab-audio-btn-%d", unitID, id.N)
	default:
		return ParagraphTextID(unitID, id.N)
	}
}

// ParagraphTextID is the id of the container holding paragraph n's sentences.
func ParagraphTextID(unitID string, n int) string {
	return fmt.Sprintf("%s_para%d-text", unitID, n)
}

// TranslationID is the id of the container holding paragraph n's translation.
func TranslationID(unitID string, n int) string {
	return fmt.Sprintf("%s_trans-%d", unitID, n)
}

// Mark is a visual state of a document element.
type Mark string

const (
	MarkSelected  Mark = "selected"
	MarkPlaying   Mark = "playing"
	MarkHighlight Mark = "highlight"
)

// Element is a markable piece of the rendered lesson.
type Element interface {
	Mark(m Mark)
	Unmark(ms ...Mark)
	Marked(m Mark) bool
}

// Control is a playable button.
type Control interface {
	Label() string
	SetLabel(label string)
	State() ButtonState
	SetState(s ButtonState)
}

// Document is what the rendering layer exposes to playback. Lookups report
// false for absent elements; callers skip them.
type Document interface {
	Control(id ControlID) (Control, bool)
	Sentence(paragraph, index int) (Element, bool)
	Translation(paragraph, index int) (Element, bool)
	Sentences() []Element
	Translations() []Element
	Implications() []Element
	ImplicationParts(paragraph int) []Element
}
