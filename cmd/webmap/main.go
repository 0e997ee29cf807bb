package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/webmap/crawl"
	"github.com/fwojciec/webmap/etree"
	"github.com/fwojciec/webmap/goquery"
	webmaphttp "github.com/fwojciec/webmap/http"
	"github.com/fwojciec/webmap/purell"
	webmapslog "github.com/fwojciec/webmap/slog"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("webmap"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'webmap --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel(cli.LogLevel),
	}))
	deps.Logger = logger

	engine := &crawl.Engine{
		Fetcher:    webmapslog.NewLoggingFetcher(webmaphttp.NewFetcher(), logger),
		Robots:     webmaphttp.NewRobotsService(),
		Normalizer: purell.NewNormalizer(),
		Links:      goquery.NewLinkExtractor(),
		Pacer:      crawl.NewHostLimiter(cli.PaceRPS),
	}
	deps.Crawler = webmapslog.NewLoggingCrawler(engine, logger)
	deps.Renderer = etree.NewRenderer()

	return kongCtx.Run(deps)
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
