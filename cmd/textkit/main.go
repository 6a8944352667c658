package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/textkit/internal/cachestore"
	"git.home.luguber.info/inful/textkit/internal/config"
	"git.home.luguber.info/inful/textkit/internal/csvload"
	"git.home.luguber.info/inful/textkit/internal/overlap"
	"git.home.luguber.info/inful/textkit/internal/server"
	"git.home.luguber.info/inful/textkit/internal/titlecase"
	"git.home.luguber.info/inful/textkit/internal/urlcheck"
	"git.home.luguber.info/inful/textkit/internal/urlpath"
	"git.home.luguber.info/inful/textkit/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"textkit.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Title struct {
		Text []string `arg:"" help:"Text to convert"`
	} `cmd:"" help:"Convert text to Title Case using the configured exception lists"`

	Overlap struct {
		A    string `arg:"" help:"First string"`
		B    string `arg:"" help:"Second string"`
		Swap bool   `help:"Retry with the arguments reversed when no overlap is found"`
	} `cmd:"" help:"Find the longest suffix of A that is a prefix of B"`

	Csv struct {
		Path   string `arg:"" help:"CSV file to load"`
		Header bool   `help:"Treat the first row as column labels"`
	} `cmd:"" help:"Load a CSV file and print its records as JSON"`

	Urlfor struct {
		Path string `arg:"" help:"Filesystem path to map"`
		Base string `help:"Base directory for relative paths"`
	} `cmd:"" help:"Derive the public URL for a filesystem path"`

	Check struct {
		Urls     []string `arg:"" optional:"" help:"URLs to check"`
		HTML     string   `help:"HTML file to extract URLs from"`
		Markdown string   `help:"Markdown file to extract URLs from"`
	} `cmd:"" help:"Check that URLs answer with a non-error HTTP status"`

	Serve struct{} `cmd:"" help:"Start the HTTP service mode"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "path", CLI.Config, "error", err)
		os.Exit(1)
	}

	switch ctx.Command() {
	case "title <text>":
		runTitle(cfg)
	case "overlap <a> <b>":
		fmt.Println(overlap.Longest(CLI.Overlap.A, CLI.Overlap.B, CLI.Overlap.Swap))
	case "csv <path>":
		runCsv()
	case "urlfor <path>":
		runUrlfor(cfg)
	case "check", "check <urls>":
		runCheck(cfg)
	case "serve":
		runServe(cfg)
	case "version":
		fmt.Printf("textkit %s (built %s, commit %s)\n", version.Version, version.BuildTime, version.GitCommit)
	default:
		slog.Error("Unknown command", "command", ctx.Command())
		os.Exit(1)
	}
}

func runTitle(cfg *config.Config) {
	caser := titlecase.New(&cfg.Title)
	fmt.Println(caser.Title(strings.Join(CLI.Title.Text, " ")))
}

func runCsv() {
	recs, err := csvload.LoadFile(CLI.Csv.Path, CLI.Csv.Header)
	if err != nil {
		slog.Error("Failed to load CSV", "path", CLI.Csv.Path, "error", err)
		os.Exit(1)
	}

	out := struct {
		Header []string   `json:"header,omitempty"`
		Rows   [][]string `json:"rows"`
	}{Header: recs.Header}
	for _, row := range recs.Rows {
		out.Rows = append(out.Rows, row.Values)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func runUrlfor(cfg *config.Config) {
	sctx := &urlpath.ServerContext{
		Host:         cfg.Server.PublicHost,
		HTTPS:        cfg.Server.HTTPS,
		Prefix:       cfg.Server.Prefix,
		DocumentRoot: cfg.Server.DocumentRoot,
	}
	u, err := urlpath.FromPath(CLI.Urlfor.Path, sctx, CLI.Urlfor.Base)
	if err != nil {
		slog.Error("Failed to derive URL", "path", CLI.Urlfor.Path, "error", err)
		os.Exit(1)
	}
	fmt.Println(u)
}

func runCheck(cfg *config.Config) {
	urls := CLI.Check.Urls
	if CLI.Check.HTML != "" {
		f, err := os.Open(CLI.Check.HTML)
		if err != nil {
			slog.Error("Failed to open HTML file", "path", CLI.Check.HTML, "error", err)
			os.Exit(1)
		}
		extracted, err := urlcheck.ExtractHTML(f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse HTML file", "path", CLI.Check.HTML, "error", err)
			os.Exit(1)
		}
		urls = append(urls, extracted...)
	}
	if CLI.Check.Markdown != "" {
		body, err := os.ReadFile(CLI.Check.Markdown)
		if err != nil {
			slog.Error("Failed to read Markdown file", "path", CLI.Check.Markdown, "error", err)
			os.Exit(1)
		}
		extracted, err := urlcheck.ExtractMarkdown(body)
		if err != nil {
			slog.Error("Failed to parse Markdown file", "path", CLI.Check.Markdown, "error", err)
			os.Exit(1)
		}
		urls = append(urls, extracted...)
	}
	if len(urls) == 0 {
		slog.Error("No URLs to check")
		os.Exit(1)
	}

	var store cachestore.Store
	if cfg.Check.CachePath != "" {
		var err error
		store, err = cachestore.NewSQLiteStore(cfg.Check.CachePath)
		if err != nil {
			slog.Error("Failed to open result cache", "path", cfg.Check.CachePath, "error", err)
			os.Exit(1)
		}
		defer func() { _ = store.Close() }()
	}

	var sink urlcheck.EventSink
	if cfg.Check.NATSURL != "" {
		var err error
		sink, err = urlcheck.NewNATSSink(cfg.Check.NATSURL, cfg.Check.Subject)
		if err != nil {
			slog.Error("Failed to connect event sink", "url", cfg.Check.NATSURL, "error", err)
			os.Exit(1)
		}
		defer func() { _ = sink.Close() }()
	}

	checker := urlcheck.NewChecker(urlcheck.Options{
		Timeout:         config.Duration(cfg.Check.RequestTimeout, 10*time.Second),
		FollowRedirects: cfg.Check.FollowRedirects,
		MaxRedirects:    cfg.Check.MaxRedirects,
		MaxConcurrent:   cfg.Check.MaxConcurrent,
		RateLimitDelay:  config.Duration(cfg.Check.RateLimitDelay, 0),
		UserAgent:       cfg.Check.UserAgent,
		CacheTTL:        config.Duration(cfg.Check.CacheTTL, 0),
	}, store, sink)

	report, err := checker.CheckAll(context.Background(), urls)
	if err != nil {
		slog.Error("Check run failed", "error", err)
		os.Exit(1)
	}

	for _, res := range report.Results {
		state := "alive"
		if !res.Alive {
			state = "dead"
		}
		fmt.Printf("%-5s %3d  %s\n", state, res.Status, res.URL)
	}
	if report.Dead > 0 {
		fmt.Printf("%d of %d URLs dead\n", report.Dead, len(report.Results))
		os.Exit(1)
	}
}

func runServe(cfg *config.Config) {
	srv, err := server.New(cfg, CLI.Config)
	if err != nil {
		slog.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}
