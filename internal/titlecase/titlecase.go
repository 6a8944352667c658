// Package titlecase converts arbitrary strings to Title Case while honoring
// configurable word-exception categories: small connector words kept
// lowercase mid-title, acronyms rendered fully upper-case, mixed-case brand
// spellings, and extra separator characters beyond whitespace.
package titlecase

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/textkit/internal/util/sets"
)

// Exceptions bundles caller-supplied additions to the built-in exception
// tables. Entries augment the defaults rather than replacing them; camel-case
// entries may override a default mapping for the same key.
type Exceptions struct {
	// LowerCaseWords are kept fully lowercase unless they start the title.
	LowerCaseWords []string `yaml:"lower_case_words" json:"lower_case_words,omitempty"`
	// AllCapsWords are rendered fully upper-case wherever they occur.
	AllCapsWords []string `yaml:"all_caps_words" json:"all_caps_words,omitempty"`
	// CamelCaseWords maps a lowercase token to its exact replacement,
	// e.g. "github" -> "GitHub".
	CamelCaseWords map[string]string `yaml:"camel_case_words" json:"camel_case_words,omitempty"`
	// SpaceEquivalents lists characters treated as word separators in
	// addition to whitespace and punctuation.
	SpaceEquivalents []string `yaml:"space_equivalents" json:"space_equivalents,omitempty"`
}

// Caser holds the merged exception tables for repeated use. Construction
// merges defaults with caller additions once; Title is then a pure function
// safe for concurrent use.
type Caser struct {
	lowerWords sets.Set[string]
	allCaps    sets.Set[string]
	camel      map[string]string
	seps       sets.Set[rune]
}

// New builds a Caser from the built-in defaults plus the given additions.
// A nil Exceptions yields the defaults alone.
func New(ex *Exceptions) *Caser {
	c := &Caser{
		lowerWords: defaultLowerCaseWords.Clone(),
		allCaps:    defaultAllCapsWords.Clone(),
		camel:      make(map[string]string, len(defaultCamelCaseWords)),
		seps:       defaultSpaceEquivalents.Clone(),
	}
	for k, v := range defaultCamelCaseWords {
		c.camel[k] = v
	}
	if ex == nil {
		return c
	}
	c.lowerWords.AddAll(foldAll(ex.LowerCaseWords)...)
	c.allCaps.AddAll(foldAll(ex.AllCapsWords)...)
	for k, v := range ex.CamelCaseWords {
		c.camel[strings.ToLower(k)] = v
	}
	for _, s := range ex.SpaceEquivalents {
		for _, r := range s {
			c.seps.Add(r)
		}
	}
	return c
}

// foldAll lower-cases every entry so exception lookups are exact map hits.
func foldAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}

// Title converts s to Title Case under the caser's exception tables.
//
// The input is lower-cased up front so the exception lookups are exact map
// hits, then split into tokens. Any rune that is not a letter or digit acts
// as a separator, as does every configured space equivalent: punctuation
// never fuses adjacent words, and separators do not survive into the output.
// A side effect inherited from the original behavior is that intra-word
// punctuation also splits, so "don't" becomes the two tokens "don" and "t".
func (c *Caser) Title(s string) string {
	if s == "" {
		return ""
	}

	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		if unicode.IsSpace(r) || c.seps.Has(r) {
			return true
		}
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		return ""
	}

	// cases.Caser values are stateful, so one is created per call.
	capitalize := cases.Title(language.Und)

	out := make([]string, len(tokens))
	for i, tok := range tokens {
		switch {
		case c.allCaps.Has(tok):
			out[i] = strings.ToUpper(tok)
		case c.camel[tok] != "":
			out[i] = c.camel[tok]
		case i == 0 || !c.lowerWords.Has(tok):
			out[i] = capitalize.String(tok)
		default:
			out[i] = tok
		}
	}
	return strings.Join(out, " ")
}

// defaultCaser serves the package-level convenience entry point.
var defaultCaser = New(nil)

// Title converts s to Title Case using only the built-in defaults.
func Title(s string) string {
	return defaultCaser.Title(s)
}

// TitleWith converts s to Title Case with the given additions merged over the
// defaults. Prefer constructing a Caser when calling repeatedly with the same
// exceptions.
func TitleWith(s string, ex *Exceptions) string {
	return New(ex).Title(s)
}
