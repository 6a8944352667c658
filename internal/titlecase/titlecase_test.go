package titlecase

import (
	"strings"
	"testing"
)

func TestTitleDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only separators", " _- ", ""},
		{"small words stay lowercase interior", "the lord of the rings", "The Lord of the Rings"},
		{"first word capitalized despite small word", "of mice and men", "Of Mice and Men"},
		{"acronyms upper-cased", "php and html", "PHP and HTML"},
		{"acronym mid-title", "intro to sql basics", "Intro to SQL Basics"},
		{"camel-case replacement", "github integration", "GitHub Integration"},
		{"camel-case mid-title", "hosted on youtube today", "Hosted on YouTube Today"},
		{"underscore and hyphen split", "foo_bar-baz", "Foo Bar Baz"},
		{"mixed input case folded first", "ThE LoRd OF the RINGS", "The Lord of the Rings"},
		{"runs of separators collapse", "foo -- bar__baz", "Foo Bar Baz"},
		{"apostrophe splits tokens", "don't stop", "Don T Stop"},
		{"digits kept in tokens", "top 10 tips", "Top 10 Tips"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.in); got != tt.want {
				t.Errorf("Title(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTitleIdempotentOnSimpleWords(t *testing.T) {
	inputs := []string{
		"The Lord of the Rings",
		"Foo Bar Baz",
		"A Tale of Two Cities",
	}
	for _, in := range inputs {
		once := Title(in)
		twice := Title(once)
		if once != twice {
			t.Errorf("Title not stable: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestTitleAllCapsRegardlessOfPosition(t *testing.T) {
	c := New(nil)
	for word := range defaultAllCapsWords {
		out := c.Title("using " + word + " here")
		want := strings.ToUpper(word)
		if !strings.Contains(out, want) {
			t.Errorf("all-caps word %q not upper-cased in %q", word, out)
		}
	}
	// Leading position too.
	if got := Title("php rocks"); got != "PHP Rocks" {
		t.Errorf("got %q", got)
	}
}

func TestTitleFirstTokenNeverLowercase(t *testing.T) {
	c := New(nil)
	for word := range defaultLowerCaseWords {
		out := c.Title(word + " example")
		first := strings.SplitN(out, " ", 2)[0]
		if first == word {
			t.Errorf("first token %q rendered lowercase in %q", word, out)
		}
	}
}

func TestTitleCallerAdditionsAugmentDefaults(t *testing.T) {
	c := New(&Exceptions{
		LowerCaseWords: []string{"versus"},
		AllCapsWords:   []string{"nasa"},
		CamelCaseWords: map[string]string{"textkit": "TextKit"},
	})

	if got := c.Title("cats versus dogs"); got != "Cats versus Dogs" {
		t.Errorf("added lowercase word: got %q", got)
	}
	if got := c.Title("a nasa story"); got != "A NASA Story" {
		t.Errorf("added all-caps word: got %q", got)
	}
	if got := c.Title("the textkit manual"); got != "The TextKit Manual" {
		t.Errorf("added camel-case word: got %q", got)
	}
	// Defaults still present after additions.
	if got := c.Title("the lord of the rings"); got != "The Lord of the Rings" {
		t.Errorf("defaults lost: got %q", got)
	}
	if got := c.Title("github and html"); got != "GitHub and HTML" {
		t.Errorf("defaults lost: got %q", got)
	}
}

func TestTitleCamelCaseOverride(t *testing.T) {
	c := New(&Exceptions{CamelCaseWords: map[string]string{"github": "GITHUB!"}})
	// Punctuation in the replacement survives verbatim.
	if got := c.Title("on github"); got != "On GITHUB!" {
		t.Errorf("got %q", got)
	}
}

func TestTitleAllCapsWinsOverCamelCase(t *testing.T) {
	c := New(&Exceptions{
		AllCapsWords:   []string{"github"},
		CamelCaseWords: map[string]string{"github": "GitHub"},
	})
	if got := c.Title("github actions"); got != "GITHUB Actions" {
		t.Errorf("all-caps should win the cascade: got %q", got)
	}
}

func TestTitleExtraSpaceEquivalents(t *testing.T) {
	c := New(&Exceptions{SpaceEquivalents: []string{"x"}})
	if got := c.Title("axb"); got != "A B" {
		t.Errorf("got %q", got)
	}
}
