package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/webmap"
)

// Dependencies holds the services and configuration commands run with.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Crawler  webmap.Crawler
	Renderer webmap.SitemapRenderer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	LogLevel string  `help:"Log level" enum:"debug,info,warn,error" default:"info"`
	PaceRPS  float64 `name:"pace-rps" help:"Max fetches per second per host (0 disables pacing)" default:"1"`

	Serve ServeCmd `cmd:"" help:"Run the sitemap generation API server"`
	Crawl CrawlCmd `cmd:"" help:"Crawl a site once and print the sitemap"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr           string        `help:"Listen address" default:":8080"`
	Origins        []string      `help:"CORS origin allow-list (repeatable)"`
	PreviewPattern string        `name:"preview-pattern" help:"Regex matching additional allowed preview origins"`
	CrawlTimeout   time.Duration `name:"crawl-timeout" help:"Deadline for a whole API crawl" default:"120s"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL            string  `arg:"" help:"Seed URL to crawl"`
	MaxPages       int     `short:"n" help:"Page cap for the crawl" default:"50"`
	ChangeFreq     string  `name:"change-freq" help:"changefreq value for sitemap entries" default:"weekly"`
	Priority       float64 `help:"priority value for sitemap entries" default:"0.5"`
	IncludeLastMod bool    `name:"include-lastmod" help:"Include lastmod entries"`
	Debug          bool    `short:"d" help:"Print the crawl trace to stderr"`
}
