package main

import (
	"fmt"

	"github.com/fwojciec/webmap"
)

// Run executes the crawl command: one crawl, sitemap XML on stdout.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	opts := webmap.NewRenderOptions()
	opts.ChangeFreq = webmap.ChangeFreq(c.ChangeFreq)
	opts.Priority = c.Priority
	opts.IncludeLastMod = c.IncludeLastMod
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmap.ErrorMessage(err))
		return err
	}

	result, err := deps.Crawler.Crawl(deps.Ctx, webmap.CrawlRequest{
		SeedURL:      c.URL,
		MaxPages:     c.MaxPages,
		IncludeTrace: c.Debug,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmap.ErrorMessage(err))
		return err
	}

	if c.Debug {
		for _, ev := range result.Trace {
			fmt.Fprintf(deps.Stderr, "%-20s %s\n", ev.Action, ev.URL)
		}
		fmt.Fprintf(deps.Stderr, "discovered=%d visited=%d duration=%.2fs\n",
			result.Stats.URLsDiscovered, result.Stats.URLsInSitemap, result.Stats.CrawlTimeSeconds)
	}

	xml, err := deps.Renderer.Render(result.URLs, opts)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webmap.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, xml)
	return nil
}
