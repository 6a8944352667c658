package titlecase

import "git.home.luguber.info/inful/textkit/internal/util/sets"

// Built-in exception tables. Caller-supplied entries are merged on top of
// these in New; they are never replaced wholesale.

var defaultLowerCaseWords = sets.New(
	"a", "an", "and", "as", "at", "but", "by", "en", "for", "from",
	"if", "in", "nor", "of", "on", "or", "per", "the", "to", "v",
	"via", "vs", "with",
)

var defaultAllCapsWords = sets.New(
	"api", "ascii", "cpu", "css", "csv", "dns", "faq", "gpu", "html",
	"http", "https", "id", "io", "ip", "json", "pdf", "php", "sql",
	"ssl", "tcp", "ui", "url", "xml", "yaml",
)

var defaultCamelCaseWords = map[string]string{
	"github":     "GitHub",
	"gitlab":     "GitLab",
	"ipad":       "iPad",
	"iphone":     "iPhone",
	"javascript": "JavaScript",
	"macos":      "macOS",
	"openssl":    "OpenSSL",
	"sqlite":     "SQLite",
	"wordpress":  "WordPress",
	"youtube":    "YouTube",
}

var defaultSpaceEquivalents = sets.New('_')
