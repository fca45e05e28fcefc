// Package sentence prepares lesson text for speech: sentence splitting,
// markup stripping and contraction expansion.
package sentence

import (
	"html"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"
)

// contraction pairs a word-bounded pattern with its expansion. Matching is
// case sensitive.
type contraction struct {
	re          *regexp.Regexp
	replacement string
}

// Parser turns lesson markup into speakable text.
type Parser struct {
	contractions []contraction

	implicationMarker *regexp.Regexp
	markdownHint      *regexp.Regexp

	policy   *bluemonday.Policy
	markdown goldmark.Markdown
}

// NewParser creates a parser with the default contraction table.
func NewParser() *Parser {
	expansions := []struct{ from, to string }{
		{"I'm", "I am"},
		{"you're", "you are"},
		{"you've", "you have"},
		{"it's", "it is"},
		{"don't", "do not"},
		{"doesn't", "does not"},
		{"didn't", "did not"},
		{"can't", "cannot"},
	}

	p := &Parser{
		implicationMarker: regexp.MustCompile(`^💡\s*`),
		markdownHint:      regexp.MustCompile("[*_`\\[]"),
		policy:            bluemonday.StrictPolicy(),
		markdown:          goldmark.New(),
	}
	for _, e := range expansions {
		p.contractions = append(p.contractions, contraction{
			re:          regexp.MustCompile(`\b` + regexp.QuoteMeta(e.from) + `\b`),
			replacement: e.to,
		})
	}
	return p
}

var (
	defaultParser     *Parser
	defaultParserOnce sync.Once
)

func std() *Parser {
	defaultParserOnce.Do(func() { defaultParser = NewParser() })
	return defaultParser
}

// Split splits text after '.', '!' or '?' when followed by whitespace.
// Empty segments are dropped.
func Split(s string) []string { return std().Split(s) }

// Normalize expands common contractions.
func Normalize(s string) string { return std().Normalize(s) }

// PlainText strips HTML and inline markdown from s.
func PlainText(s string) string { return std().PlainText(s) }

// StripImplicationMarker removes the leading 💡 marker and the whitespace
// after it.
func StripImplicationMarker(s string) string { return std().StripImplicationMarker(s) }

// Speakable is PlainText followed by Normalize.
func Speakable(s string) string { return std().Speakable(s) }

// Split splits text after sentence-ending punctuation that is followed by
// whitespace.
func (p *Parser) Split(s string) []string {
	var (
		out   []string
		runes = []rune(s)
		start = 0
	)

	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
		default:
			continue
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}

		out = appendTrimmed(out, string(runes[start:i+1]))

		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}

	if start < len(runes) {
		out = appendTrimmed(out, string(runes[start:]))
	}
	return out
}

func appendTrimmed(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}

// Normalize expands the contraction table in s.
func (p *Parser) Normalize(s string) string {
	for _, c := range p.contractions {
		s = c.re.ReplaceAllString(s, c.replacement)
	}
	return s
}

// PlainText converts lesson markup into plain text. HTML tags are removed
// and entities decoded, inline markdown is reduced to its text, the result
// is NFC-normalized and typographic apostrophes are folded to ASCII.
func (p *Parser) PlainText(s string) string {
	if strings.ContainsRune(s, '<') {
		s = html.UnescapeString(p.policy.Sanitize(s))
	} else if strings.ContainsRune(s, '&') {
		s = html.UnescapeString(s)
	}

	if p.markdownHint.MatchString(s) {
		s = p.markdownText(s)
	}

	s = norm.NFC.String(s)
	s = strings.NewReplacer("’", "'", "‘", "'").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Speakable returns the text handed to a speech engine.
func (p *Parser) Speakable(s string) string {
	return p.Normalize(p.PlainText(s))
}

// StripImplicationMarker removes a leading 💡 marker.
func (p *Parser) StripImplicationMarker(s string) string {
	return p.implicationMarker.ReplaceAllString(s, "")
}

// markdownText walks the goldmark AST and collects text segments.
func (p *Parser) markdownText(s string) string {
	src := []byte(s)
	doc := p.markdown.Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && b.Len() > 0 {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.RawHTML, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
