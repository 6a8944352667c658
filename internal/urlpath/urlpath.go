// Package urlpath derives public URLs from filesystem paths using the
// serving context of the running application: the document root a path lives
// under, the URL prefix that root is mounted at, and the public host.
package urlpath

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoServerContext is returned when the serving context is missing
	// or incomplete (e.g. no request context to derive a host from).
	ErrNoServerContext = errors.New("server context unavailable")
	// ErrNotFound is returned when the resolved path does not exist.
	ErrNotFound = errors.New("path does not exist")
	// ErrOutsideRoot is returned when the resolved path is not under the
	// document root.
	ErrOutsideRoot = errors.New("path outside document root")
)

// ServerContext carries the serving variables needed to map a filesystem
// path to a public URL.
type ServerContext struct {
	// Host is the public host (and optional port) serving the files.
	Host string
	// HTTPS selects the https scheme when true.
	HTTPS bool
	// Prefix is the URL path the document root is mounted at, e.g. "/static".
	Prefix string
	// DocumentRoot is the filesystem directory served under Prefix.
	DocumentRoot string
}

// FromRequestValues builds a context from loosely typed server variables,
// mirroring how a web application fills these from its request environment.
// Missing host or document root leaves the context incomplete.
func FromRequestValues(vars map[string]string) *ServerContext {
	if vars == nil {
		return nil
	}
	return &ServerContext{
		Host:         vars["host"],
		HTTPS:        vars["https"] == "on" || vars["https"] == "true" || vars["https"] == "1",
		Prefix:       vars["prefix"],
		DocumentRoot: vars["document_root"],
	}
}

// FromPath resolves path to an absolute filesystem location, verifies it
// exists, and returns the absolute URL it is served at: the document-root
// prefix replaced by the context prefix, with scheme and host prepended.
// Relative paths resolve against base when given, the document root
// otherwise.
func FromPath(path string, sctx *ServerContext, base string) (string, error) {
	if sctx == nil || sctx.Host == "" || sctx.DocumentRoot == "" {
		return "", ErrNoServerContext
	}
	if path == "" {
		return "", ErrNotFound
	}

	abs := path
	if !filepath.IsAbs(abs) {
		if base != "" {
			abs = filepath.Join(base, abs)
		} else {
			abs = filepath.Join(sctx.DocumentRoot, abs)
		}
	}
	abs = filepath.Clean(abs)

	if _, err := os.Stat(abs); err != nil {
		return "", ErrNotFound
	}

	root := filepath.Clean(sctx.DocumentRoot)
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	if rel == "." {
		rel = ""
	}

	scheme := "http"
	if sctx.HTTPS {
		scheme = "https"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   sctx.Host,
		Path:   joinURLPath(sctx.Prefix, filepath.ToSlash(rel)),
	}
	return u.String(), nil
}

// joinURLPath joins a mount prefix and a relative path into a rooted URL
// path with single slashes.
func joinURLPath(prefix, rel string) string {
	p := "/" + strings.Trim(prefix, "/")
	if rel != "" {
		if p == "/" {
			p += rel
		} else {
			p += "/" + rel
		}
	}
	return p
}
