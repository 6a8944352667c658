package urlpath

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "docs"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "docs", "guide.html"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestFromPathAbsolute(t *testing.T) {
	root := testRoot(t)
	sctx := &ServerContext{Host: "example.com", HTTPS: true, Prefix: "/static", DocumentRoot: root}

	got, err := FromPath(filepath.Join(root, "docs", "guide.html"), sctx, "")
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}
	if want := "https://example.com/static/docs/guide.html"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFromPathRelativeAgainstRoot(t *testing.T) {
	root := testRoot(t)
	sctx := &ServerContext{Host: "example.com", Prefix: "", DocumentRoot: root}

	got, err := FromPath("docs/guide.html", sctx, "")
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}
	if want := "http://example.com/docs/guide.html"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFromPathRelativeAgainstBase(t *testing.T) {
	root := testRoot(t)
	sctx := &ServerContext{Host: "example.com", Prefix: "/p", DocumentRoot: root}

	got, err := FromPath("guide.html", sctx, filepath.Join(root, "docs"))
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}
	if want := "http://example.com/p/docs/guide.html"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFromPathMissingContext(t *testing.T) {
	if _, err := FromPath("x", nil, ""); !errors.Is(err, ErrNoServerContext) {
		t.Errorf("nil context: got %v", err)
	}
	if _, err := FromPath("x", &ServerContext{DocumentRoot: "/tmp"}, ""); !errors.Is(err, ErrNoServerContext) {
		t.Errorf("missing host: got %v", err)
	}
	if _, err := FromPath("x", &ServerContext{Host: "h"}, ""); !errors.Is(err, ErrNoServerContext) {
		t.Errorf("missing document root: got %v", err)
	}
}

func TestFromPathNotFound(t *testing.T) {
	root := testRoot(t)
	sctx := &ServerContext{Host: "example.com", DocumentRoot: root}
	if _, err := FromPath("docs/missing.html", sctx, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v", err)
	}
}

func TestFromPathOutsideRoot(t *testing.T) {
	root := testRoot(t)
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "leak.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	sctx := &ServerContext{Host: "example.com", DocumentRoot: filepath.Join(root, "docs")}
	if _, err := FromPath(filepath.Join(outside, "leak.txt"), sctx, ""); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("got %v", err)
	}
}

func TestFromRequestValues(t *testing.T) {
	if got := FromRequestValues(nil); got != nil {
		t.Errorf("nil vars should yield nil context, got %+v", got)
	}
	sctx := FromRequestValues(map[string]string{
		"host": "example.com", "https": "on", "prefix": "/s", "document_root": "/srv/www",
	})
	if sctx.Host != "example.com" || !sctx.HTTPS || sctx.Prefix != "/s" || sctx.DocumentRoot != "/srv/www" {
		t.Errorf("unexpected context: %+v", sctx)
	}
}
