package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	webmaphttp "github.com/fwojciec/webmap/http"
	"golang.org/x/sync/errgroup"
)

// Run executes the serve command. It blocks until the listener fails
// or an interrupt arrives, then shuts the server down gracefully.
func (c *ServeCmd) Run(deps *Dependencies) error {
	opts := []webmaphttp.ServerOption{
		webmaphttp.WithLogger(deps.Logger),
		webmaphttp.WithCrawlDeadline(c.CrawlTimeout),
		webmaphttp.WithAllowedOrigins(c.Origins...),
	}
	if c.PreviewPattern != "" {
		pattern, err := regexp.Compile(c.PreviewPattern)
		if err != nil {
			return fmt.Errorf("invalid preview origin pattern: %w", err)
		}
		opts = append(opts, webmaphttp.WithPreviewOriginPattern(pattern))
	}

	api := webmaphttp.NewServer(deps.Crawler, deps.Renderer, opts...)
	srv := &http.Server{
		Addr:              c.Addr,
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(deps.Ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Logger.Info("listening", "addr", c.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		deps.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
