// Package lesson models reading-lesson units and loads them from disk or
// over HTTP.
package lesson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lectio-app/lectio/tts/sentence"
)

var (
	// ErrInvalidUnit is returned when unit JSON lacks required fields.
	ErrInvalidUnit = errors.New("invalid unit")

	// ErrUnitNotFound is returned when a unit id is not in the library.
	ErrUnitNotFound = errors.New("unit not found")
)

// Unit is one lesson: an article with translations and annotations, plus a
// vocabulary list.
type Unit struct {
	UnitID     string           `json:"unitId"`
	UnitName   string           `json:"unitName"`
	Article    *Article         `json:"article"`
	Vocabulary []VocabularyItem `json:"vocabulary,omitempty"`
	Audio      *AudioConfig     `json:"audio,omitempty"`

	// Source is where the unit was read from, a path or URL.
	Source string `json:"-"`
	// AudioBase is what relative and rooted clip URLs resolve against.
	AudioBase string `json:"-"`
}

// Article is the reading text. Title holds the English title and the Chinese
// title on separate lines.
type Article struct {
	Title        string      `json:"title"`
	Illustration string      `json:"illustration,omitempty"`
	Paragraphs   []Paragraph `json:"paragraphs"`
}

// Paragraph is one article paragraph with its translation and implication.
type Paragraph struct {
	English              string      `json:"english"`
	Sentences            []string    `json:"sentences,omitempty"`
	Translation          string      `json:"translation,omitempty"`
	TranslationSentences []string    `json:"translation_sentences,omitempty"`
	Implication          Implication `json:"implication"`
}

// Implication is a paired English/Chinese commentary on a paragraph.
type Implication struct {
	English string `json:"english"`
	Chinese string `json:"chinese"`
}

// VocabularyItem is one core word of the unit.
type VocabularyItem struct {
	ID       int    `json:"id"`
	Word     string `json:"word"`
	Phonetic string `json:"phonetic,omitempty"`
	Meaning  string `json:"meaning,omitempty"`
	Example  string `json:"example,omitempty"`
}

// Parse decodes and validates unit JSON.
func Parse(data []byte) (*Unit, error) {
	var u Unit
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUnit, err)
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return &u, nil
}

// Validate checks the fields every unit must carry.
func (u *Unit) Validate() error {
	var missing []string
	if u.UnitID == "" {
		missing = append(missing, "unitId")
	}
	if u.UnitName == "" {
		missing = append(missing, "unitName")
	}
	if u.Article == nil {
		missing = append(missing, "article")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidUnit, strings.Join(missing, "/"))
	}
	return nil
}

// Paragraph returns paragraph n, counting from 1.
func (u *Unit) Paragraph(n int) (Paragraph, bool) {
	if u == nil || u.Article == nil || n < 1 || n > len(u.Article.Paragraphs) {
		return Paragraph{}, false
	}
	return u.Article.Paragraphs[n-1], true
}

// ParagraphCount returns the number of article paragraphs.
func (u *Unit) ParagraphCount() int {
	if u == nil || u.Article == nil {
		return 0
	}
	return len(u.Article.Paragraphs)
}

// Word returns the vocabulary item with the given id.
func (u *Unit) Word(id int) (VocabularyItem, bool) {
	if u == nil {
		return VocabularyItem{}, false
	}
	for _, v := range u.Vocabulary {
		if v.ID == id {
			return v, true
		}
	}
	return VocabularyItem{}, false
}

// SentenceList returns the pre-split sentences, or splits the English text
// when none were supplied.
func (p Paragraph) SentenceList() []string {
	if len(p.Sentences) > 0 {
		return p.Sentences
	}
	return sentence.Split(p.English)
}

// TitleParts splits the article title into its English and Chinese lines.
func (a *Article) TitleParts() (english, chinese string) {
	if a == nil {
		return "", ""
	}
	english, chinese, _ = strings.Cut(a.Title, "\n")
	return strings.TrimSpace(english), strings.TrimSpace(chinese)
}
