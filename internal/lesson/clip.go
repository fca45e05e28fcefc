package lesson

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Placeholder is replaced by the zero-padded id in clip URL patterns.
const Placeholder = "{id}"

// ClipKind selects one of the three recorded clip families.
type ClipKind int

const (
	ClipParagraph ClipKind = iota
	ClipImplication
	ClipVocabulary
)

// String returns the file prefix used by the default pattern.
func (k ClipKind) String() string {
	switch k {
	case ClipParagraph:
		return "paragraph"
	case ClipImplication:
		return "impl"
	case ClipVocabulary:
		return "word"
	default:
		return "unknown"
	}
}

// AudioConfig carries per-unit clip URL patterns. Empty patterns fall back to
// DefaultPattern.
type AudioConfig struct {
	ParagraphPattern   string `json:"paragraphPattern,omitempty"`
	ImplicationPattern string `json:"implicationPattern,omitempty"`
	VocabularyPattern  string `json:"vocabularyPattern,omitempty"`
}

// DefaultPattern is the clip URL pattern used when a unit supplies none.
func DefaultPattern(unitID string, kind ClipKind) string {
	return fmt.Sprintf("/english-reading-multi/audio/%s/%s_%s.mp3", unitID, kind, Placeholder)
}

// PadID renders an id as at least two digits.
func PadID(id int) string {
	return fmt.Sprintf("%02d", id)
}

// Pattern returns the pattern for kind, or the default.
func (a *AudioConfig) Pattern(unitID string, kind ClipKind) string {
	if a != nil {
		var p string
		switch kind {
		case ClipParagraph:
			p = a.ParagraphPattern
		case ClipImplication:
			p = a.ImplicationPattern
		case ClipVocabulary:
			p = a.VocabularyPattern
		}
		if p != "" {
			return p
		}
	}
	return DefaultPattern(unitID, kind)
}

// ClipURL substitutes the padded id into the unit's pattern for kind.
func (u *Unit) ClipURL(kind ClipKind, id int) string {
	return strings.Replace(u.Audio.Pattern(u.UnitID, kind), Placeholder, PadID(id), 1)
}

// ClipRef is ClipURL resolved against the unit's AudioBase.
func (u *Unit) ClipRef(kind ClipKind, id int) string {
	return ResolveRef(u.AudioBase, u.ClipURL(kind, id))
}

// ResolveRef resolves ref against base. Absolute URLs are returned as-is.
// Against an http(s) base, ref resolves the way a browser would. Against a
// directory base, a rooted ref is taken relative to that directory.
func ResolveRef(base, ref string) string {
	if IsURL(ref) || base == "" {
		return ref
	}

	if IsURL(base) {
		b, err := url.Parse(base)
		if err != nil {
			return ref
		}
		r, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return b.ResolveReference(r).String()
	}

	if filepath.IsAbs(ref) && !strings.HasPrefix(ref, "/") {
		return ref
	}
	return filepath.Join(base, filepath.FromSlash(strings.TrimPrefix(ref, "/")))
}

// Dir returns the directory part of a path or URL, with a trailing slash for
// URLs so that ResolveReference keeps it.
func Dir(ref string) string {
	if IsURL(ref) {
		u, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		u.Path = path.Dir(u.Path) + "/"
		u.RawQuery, u.Fragment = "", ""
		return u.String()
	}
	return filepath.Dir(ref)
}

// IsURL reports whether s is an http(s) URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
