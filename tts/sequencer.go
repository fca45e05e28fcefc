package tts

// Sequence walks a paragraph's sentences one at a time. Completion and
// failure of an utterance both call Next.
type Sequence struct {
	paragraph int
	sentences []string
	index     int
	finished  bool
}

// NewSequence creates a sequence over the given sentences of paragraph.
func NewSequence(paragraph int, sentences []string) *Sequence {
	return &Sequence{
		paragraph: paragraph,
		sentences: append([]string(nil), sentences...),
		index:     -1,
	}
}

// Next advances to the following sentence. ok is false once the sequence is
// finished; further calls keep returning false.
func (s *Sequence) Next() (index int, text string, ok bool) {
	if s.finished {
		return -1, "", false
	}
	s.index++
	if s.index >= len(s.sentences) {
		s.finished = true
		return -1, "", false
	}
	return s.index, s.sentences[s.index], true
}

// Paragraph returns the paragraph number being read.
func (s *Sequence) Paragraph() int { return s.paragraph }

// Index returns the current sentence, or -1 before the first Next.
func (s *Sequence) Index() int { return s.index }

// Len returns the number of sentences.
func (s *Sequence) Len() int { return len(s.sentences) }
