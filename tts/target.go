package tts

import "fmt"

// TargetKind says what is being played.
type TargetKind int

const (
	TargetParagraph TargetKind = iota
	TargetSentence
	TargetVocabulary
	TargetImplication
)

func (k TargetKind) String() string {
	switch k {
	case TargetParagraph:
		return "paragraph"
	case TargetSentence:
		return "sentence"
	case TargetVocabulary:
		return "vocabulary"
	case TargetImplication:
		return "implication"
	default:
		return "unknown"
	}
}

// Target identifies what a playback request is for. Paragraph numbers count
// from 1, sentence indexes from 0.
type Target struct {
	Kind      TargetKind
	Paragraph int
	Sentence  int
	WordID    int
}

func ParagraphTarget(n int) Target { return Target{Kind: TargetParagraph, Paragraph: n} }
func SentenceTarget(n, i int) Target { return Target{Kind: TargetSentence, Paragraph: n, Sentence: i} }
func VocabularyTarget(id int) Target { return Target{Kind: TargetVocabulary, WordID: id} }
func ImplicationTarget(n int) Target { return Target{Kind: TargetImplication, Paragraph: n} }

// Control returns the control that is armed while the target plays. A
// sentence arms its paragraph's read button.
func (t Target) Control() ControlID {
	switch t.Kind {
	case TargetVocabulary:
		return ControlID{Kind: ControlVocabulary, N: t.WordID}
	case TargetImplication:
		return ControlID{Kind: ControlImplication, N: t.Paragraph}
	default:
		return ControlID{Kind: ControlParagraph, N: t.Paragraph}
	}
}

func (t Target) String() string {
	switch t.Kind {
	case TargetSentence:
		return fmt.Sprintf("sentence %d.%d", t.Paragraph, t.Sentence)
	case TargetVocabulary:
		return fmt.Sprintf("vocabulary %d", t.WordID)
	default:
		return fmt.Sprintf("%s %d", t.Kind, t.Paragraph)
	}
}
