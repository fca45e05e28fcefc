package sentence

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple sentences",
			input:    "Hello world. How are you? I'm fine!",
			expected: []string{"Hello world.", "How are you?", "I'm fine!"},
		},
		{
			name:     "newlines and runs of spaces",
			input:    "First.\nSecond.   Third.",
			expected: []string{"First.", "Second.", "Third."},
		},
		{
			name:     "punctuation without whitespace does not split",
			input:    "It cost 3.5 dollars.Really? Yes.",
			expected: []string{"It cost 3.5 dollars.Really?", "Yes."},
		},
		{
			name:     "trailing whitespace drops empty segment",
			input:    "Only one. ",
			expected: []string{"Only one."},
		},
		{
			name:     "no terminal punctuation",
			input:    "A fragment without an end",
			expected: []string{"A fragment without an end"},
		},
		{
			name:     "empty",
			input:    "   ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"I'm can't go, you're right.", "I am cannot go, you are right."},
		{"you've said it's fine", "you have said it is fine"},
		{"They don't, she doesn't, he didn't.", "They do not, she does not, he did not."},
		// Case sensitive: capitalised forms are left alone.
		{"Don't stop. It's late.", "Don't stop. It's late."},
		// Word boundaries: no expansion inside longer words.
		{"Wilson'sit's", "Wilson'sit's"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.expected {
			t.Errorf("Normalize(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"html tags", "<b>Fire</b> broke out in <span class=\"x\">Tai Po</span>.", "Fire broke out in Tai Po."},
		{"html entities", "Rock &amp; roll", "Rock & roll"},
		{"markdown emphasis", "A *severe* fire in **Hong Kong**.", "A severe fire in Hong Kong."},
		{"markdown link", "See [the report](https://example.com) today.", "See the report today."},
		{"typographic apostrophe", "I’m here", "I'm here"},
		{"whitespace collapse", "  many \n  spaces  ", "many spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSpeakable(t *testing.T) {
	got := Speakable("<em>I’m</em> sure you're right.")
	want := "I am sure you are right."
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestStripImplicationMarker(t *testing.T) {
	tests := map[string]string{
		"💡 The writer hints at blame.": "The writer hints at blame.",
		"💡The writer hints.":           "The writer hints.",
		"No marker 💡 here":             "No marker 💡 here",
	}
	for in, want := range tests {
		if got := StripImplicationMarker(in); got != want {
			t.Errorf("StripImplicationMarker(%q): expected %q, got %q", in, want, got)
		}
	}
}
