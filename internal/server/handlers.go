package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/textkit/internal/csvload"
	tkerrors "git.home.luguber.info/inful/textkit/internal/errors"
	"git.home.luguber.info/inful/textkit/internal/overlap"
	"git.home.luguber.info/inful/textkit/internal/titlecase"
	"git.home.luguber.info/inful/textkit/internal/urlcheck"
	"git.home.luguber.info/inful/textkit/internal/urlpath"
)

const maxUploadBytes = 32 << 20

type titleRequest struct {
	Title      string                `json:"title"`
	Exceptions *titlecase.Exceptions `json:"exceptions,omitempty"`
}

type titleResponse struct {
	Result string `json:"result"`
}

func (s *Server) handleTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorAdapter.WriteError(w, tkerrors.ValidationError("invalid JSON body"))
		return
	}

	tables := s.title.Load()
	var result string
	if req.Exceptions == nil {
		result = tables.caser.Title(req.Title)
	} else {
		// Per-request additions merge over the same configuration
		// generation the caser was built from.
		merged := mergeExceptions(tables.exceptions, req.Exceptions)
		result = titlecase.TitleWith(req.Title, merged)
	}
	writeJSON(w, titleResponse{Result: result})
}

// mergeExceptions appends the request additions onto the configured ones.
func mergeExceptions(base, extra *titlecase.Exceptions) *titlecase.Exceptions {
	merged := &titlecase.Exceptions{
		LowerCaseWords:   append(append([]string{}, base.LowerCaseWords...), extra.LowerCaseWords...),
		AllCapsWords:     append(append([]string{}, base.AllCapsWords...), extra.AllCapsWords...),
		SpaceEquivalents: append(append([]string{}, base.SpaceEquivalents...), extra.SpaceEquivalents...),
		CamelCaseWords:   make(map[string]string, len(base.CamelCaseWords)+len(extra.CamelCaseWords)),
	}
	for k, v := range base.CamelCaseWords {
		merged.CamelCaseWords[k] = v
	}
	for k, v := range extra.CamelCaseWords {
		merged.CamelCaseWords[k] = v
	}
	return merged
}

type csvResponse struct {
	Header []string            `json:"header,omitempty"`
	Rows   [][]string          `json:"rows,omitempty"`
	Mapped []map[string]string `json:"mapped,omitempty"`
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorAdapter.WriteError(w, tkerrors.ValidationError("expected multipart form upload"))
		return
	}
	hasHeader := formBool(r.FormValue("header"))

	f, fh, err := r.FormFile("file")
	if err != nil {
		s.errorAdapter.WriteError(w, tkerrors.New(tkerrors.CategoryInput, tkerrors.SeverityWarning, "no file provided"))
		return
	}
	// LoadUpload opens its own handle from the header.
	_ = f.Close()

	recs, err := csvload.LoadUpload(fh, hasHeader)
	if err != nil {
		if errors.Is(err, csvload.ErrNoInput) {
			s.errorAdapter.WriteError(w, tkerrors.New(tkerrors.CategoryInput, tkerrors.SeverityWarning, "no file provided"))
			return
		}
		s.errorAdapter.WriteError(w, err)
		return
	}

	resp := csvResponse{Header: recs.Header}
	for _, row := range recs.Rows {
		resp.Rows = append(resp.Rows, row.Values)
		if recs.Header != nil {
			resp.Mapped = append(resp.Mapped, row.Map())
		}
	}
	writeJSON(w, resp)
}

type overlapResponse struct {
	Overlap string `json:"overlap"`
}

func (s *Server) handleOverlap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result := overlap.Longest(q.Get("a"), q.Get("b"), formBool(q.Get("swap")))
	writeJSON(w, overlapResponse{Overlap: result})
}

type urlforResponse struct {
	URL string `json:"url"`
}

func (s *Server) handleURLFor(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		s.errorAdapter.WriteError(w, tkerrors.ValidationError("missing path parameter"))
		return
	}

	sctx := s.serverContext(r)
	result, err := urlpath.FromPath(path, sctx, r.URL.Query().Get("base"))
	if err != nil {
		switch {
		case errors.Is(err, urlpath.ErrNoServerContext):
			s.errorAdapter.WriteError(w, tkerrors.New(tkerrors.CategoryRuntime, tkerrors.SeverityError, "server context unavailable"))
		case errors.Is(err, urlpath.ErrNotFound):
			s.errorAdapter.WriteError(w, tkerrors.New(tkerrors.CategoryFileSystem, tkerrors.SeverityWarning, "path does not exist"))
		case errors.Is(err, urlpath.ErrOutsideRoot):
			s.errorAdapter.WriteError(w, tkerrors.New(tkerrors.CategoryInput, tkerrors.SeverityWarning, "path outside document root"))
		default:
			s.errorAdapter.WriteError(w, err)
		}
		return
	}
	writeJSON(w, urlforResponse{URL: result})
}

// serverContext derives the URL mapping context from configuration and the
// live request, the way the original utilities read their server variables.
func (s *Server) serverContext(r *http.Request) *urlpath.ServerContext {
	host := s.cfg.Server.PublicHost
	if host == "" {
		host = r.Host
	}
	https := s.cfg.Server.HTTPS || r.TLS != nil
	return &urlpath.ServerContext{
		Host:         host,
		HTTPS:        https,
		Prefix:       s.cfg.Server.Prefix,
		DocumentRoot: s.cfg.Server.DocumentRoot,
	}
}

type checkRequest struct {
	URLs     []string `json:"urls,omitempty"`
	HTML     string   `json:"html,omitempty"`
	Markdown string   `json:"markdown,omitempty"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorAdapter.WriteError(w, tkerrors.ValidationError("invalid JSON body"))
		return
	}

	urls := req.URLs
	if req.HTML != "" {
		extracted, err := urlcheck.ExtractHTML(strings.NewReader(req.HTML))
		if err != nil {
			s.errorAdapter.WriteError(w, tkerrors.Wrap(err, tkerrors.CategoryInput, tkerrors.SeverityWarning, "parse HTML document"))
			return
		}
		urls = append(urls, extracted...)
	}
	if req.Markdown != "" {
		extracted, err := urlcheck.ExtractMarkdown([]byte(req.Markdown))
		if err != nil {
			s.errorAdapter.WriteError(w, tkerrors.Wrap(err, tkerrors.CategoryInput, tkerrors.SeverityWarning, "parse Markdown document"))
			return
		}
		urls = append(urls, extracted...)
	}
	if len(urls) == 0 {
		s.errorAdapter.WriteError(w, tkerrors.ValidationError("no URLs to check"))
		return
	}

	report, err := s.checker.CheckAll(r.Context(), urls)
	if err != nil {
		s.errorAdapter.WriteError(w, tkerrors.Wrap(err, tkerrors.CategoryRuntime, tkerrors.SeverityError, "check run failed"))
		return
	}
	checksTotal.Add(float64(len(report.Results)))
	checksFailedTotal.Add(float64(report.Dead))
	for _, res := range report.Results {
		if res.Cached {
			cacheHitsTotal.Inc()
		}
	}
	writeJSON(w, report)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func formBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
