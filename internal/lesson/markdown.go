package lesson

import (
	"fmt"
	"strings"

	"github.com/lectio-app/lectio/tts/sentence"
)

// Markdown renders the unit as a markdown document: the article with each
// paragraph's translation and implication, then the vocabulary as a table.
func (u *Unit) Markdown() string {
	var b strings.Builder

	english, chinese := u.Article.TitleParts()
	if english == "" {
		english = u.UnitName
	}
	fmt.Fprintf(&b, "# %s\n\n", english)
	if chinese != "" {
		fmt.Fprintf(&b, "*%s*\n\n", chinese)
	}

	if u.Article != nil {
		for i, p := range u.Article.Paragraphs {
			fmt.Fprintf(&b, "## %d\n\n", i+1)
			b.WriteString(sentence.PlainText(p.English) + "\n\n")

			if tr := paragraphTranslation(p); tr != "" {
				b.WriteString(quote(tr))
			}
			if p.Implication.English != "" || p.Implication.Chinese != "" {
				var parts []string
				if s := sentence.PlainText(p.Implication.English); s != "" {
					parts = append(parts, "**"+s+"**")
				}
				if s := sentence.PlainText(p.Implication.Chinese); s != "" {
					parts = append(parts, s)
				}
				b.WriteString(quote(strings.Join(parts, "\n\n")))
			}
		}
	}

	if len(u.Vocabulary) > 0 {
		b.WriteString("## Core vocabulary\n\n")
		b.WriteString("| Word | Phonetic | Meaning |\n|---|---|---|\n")
		for _, v := range u.Vocabulary {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(v.Word), cell(v.Phonetic), cell(v.Meaning))
		}
		b.WriteString("\n")

		for _, v := range u.Vocabulary {
			if v.Example != "" {
				fmt.Fprintf(&b, "- **%s**: %s\n", cell(v.Word), sentence.PlainText(v.Example))
			}
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func paragraphTranslation(p Paragraph) string {
	if len(p.TranslationSentences) > 0 {
		return strings.Join(p.TranslationSentences, "")
	}
	return sentence.PlainText(p.Translation)
}

func quote(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight("> "+l, " ")
	}
	return strings.Join(lines, "\n") + "\n\n"
}

func cell(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "|", `\|`)
}
