package urlcheck

import (
	"io"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// ExtractHTML collects candidate URLs from an HTML document: a[href],
// img[src], link[href], and script[src]. Fragment-only and non-checkable
// schemes (mailto, tel, javascript, data) are skipped. The result is
// de-duplicated and ordered by first occurrence.
func ExtractHTML(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var urls []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				if v := getAttr(n, "href"); v != "" {
					urls = append(urls, v)
				}
			case "img", "script":
				if v := getAttr(n, "src"); v != "" {
					urls = append(urls, v)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return dedupeCheckable(urls), nil
}

// ExtractMarkdown collects candidate URLs from a Markdown body: inline and
// auto links, images, and reference definitions.
func ExtractMarkdown(body []byte) ([]string, error) {
	md := goldmark.New()
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	var urls []string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			urls = append(urls, string(node.URL(body)))
		case *gmast.Image:
			urls = append(urls, string(node.Destination))
		case *gmast.Link:
			urls = append(urls, string(node.Destination))
		}
		return gmast.WalkContinue, nil
	})

	// Reference definitions live in the parse context, not the AST.
	refs := ctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	for _, ref := range refs {
		urls = append(urls, string(ref.Destination()))
	}

	return dedupeCheckable(urls), nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// dedupeCheckable drops non-checkable URLs and duplicates, preserving first
// occurrence order.
func dedupeCheckable(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if !checkable(u) {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func checkable(u string) bool {
	if u == "" || strings.HasPrefix(u, "#") {
		return false
	}
	for _, scheme := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(u, scheme) {
			return false
		}
	}
	return true
}
