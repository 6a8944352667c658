package urlcheck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractHTML(t *testing.T) {
	doc := `<html><body>
		<a href="https://example.com/a">a</a>
		<a href="/relative">rel</a>
		<a href="#fragment">frag</a>
		<a href="mailto:x@example.com">mail</a>
		<img src="https://example.com/img.png" alt="">
		<script src="/app.js"></script>
		<a href="https://example.com/a">duplicate</a>
	</body></html>`

	urls, err := ExtractHTML(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://example.com/a",
		"/relative",
		"https://example.com/img.png",
		"/app.js",
	}, urls)
}

func TestExtractHTMLLinkElement(t *testing.T) {
	doc := `<html><head><link rel="stylesheet" href="/style.css"></head><body></body></html>`
	urls, err := ExtractHTML(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, []string{"/style.css"}, urls)
}

func TestExtractMarkdown(t *testing.T) {
	body := []byte(`# Title

An [inline](https://example.com/inline) link and an image:

![alt](https://example.com/img.png)

Auto link: <https://example.com/auto>

A [reference][ref] link.

[ref]: https://example.com/ref
`)
	urls, err := ExtractMarkdown(body)
	require.NoError(t, err)
	require.Contains(t, urls, "https://example.com/inline")
	require.Contains(t, urls, "https://example.com/img.png")
	require.Contains(t, urls, "https://example.com/auto")
	require.Contains(t, urls, "https://example.com/ref")
}

func TestExtractMarkdownSkipsFragmentsAndMailto(t *testing.T) {
	body := []byte("[a](#section) [b](mailto:x@example.com) [c](https://example.com)")
	urls, err := ExtractMarkdown(body)
	require.NoError(t, err)
	require.Equal(t, []string{"https://example.com"}, urls)
}
