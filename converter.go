package jaho

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Converter converts HTML content to PDF documents.
//
// A Converter manages a headless browser instance that is reused across
// multiple conversions for performance. It is safe for concurrent use; each
// conversion runs in its own browser tab, released when the call returns.
//
// Call [Converter.Close] when the Converter is no longer needed to release
// browser resources.
type Converter struct {
	cfg           converterConfig
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewConverter creates a Converter with the given options.
//
// It starts a headless browser in the background. The caller must call
// [Converter.Close] when finished.
func NewConverter(opts ...Option) (*Converter, error) {
	cfg := defaultConverterConfig()
	for _, o := range opts {
		o(&cfg)
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
	)
	if cfg.headless == "" {
		// boolean false drops the flag entirely, giving a visible window
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", cfg.headless))
	}
	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}
	for name, value := range cfg.extraFlags {
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("jaho: starting browser: %w", err)
	}

	return &Converter{
		cfg:           cfg,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases all resources held by the Converter, including the browser
// process. Close is idempotent and never fails: release is performed through
// context cancellation, which terminates the browser without a failure path
// of its own, so a conversion error can never be masked by cleanup.
func (c *Converter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.browserCancel()
	c.allocCancel()
	return nil
}

func (c *Converter) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

// Convert converts an HTML string to a PDF document. The content is set on
// the page in memory; nothing touches the filesystem. If cfg is nil the
// defaults described on [ConvertConfig] apply.
func (c *Converter) Convert(ctx context.Context, html string, cfg *ConvertConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if emptyContent(html) {
		return nil, ErrNoContent
	}
	return c.render(ctx, setContent(html), cfg)
}

// ConvertURL converts the web page at rawURL to a PDF document.
func (c *Converter) ConvertURL(ctx context.Context, rawURL string, cfg *ConvertConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("jaho: invalid URL %q: %w", rawURL, err)
	}
	return c.render(ctx, navigate(rawURL), cfg)
}

// ConvertFile converts a local HTML file to a PDF document.
func (c *Converter) ConvertFile(ctx context.Context, path string, cfg *ConvertConfig) (*Result, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("jaho: resolving path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("jaho: %w", err)
	}
	return c.render(ctx, navigate("file://"+abs), cfg)
}

// loadFunc places the document in the page, either by navigation or by
// setting its content directly.
type loadFunc func(ctx context.Context) error

// navigate loads the page from a URL.
func navigate(targetURL string) loadFunc {
	return func(ctx context.Context) error {
		_, _, errorText, err := page.Navigate(targetURL).Do(ctx)
		if err != nil {
			return err
		}
		if errorText != "" {
			return fmt.Errorf("navigating to %s: %s", targetURL, errorText)
		}
		return nil
	}
}

// setContent replaces the main frame's document with the given HTML without
// any disk or network round trip.
func setContent(html string) loadFunc {
	return func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
	}
}

// render runs the conversion pipeline in a fresh tab: configure script
// execution, load the document, wait for the configured load condition,
// run the caller hook, inject header/footer markup, and print to PDF.
// The tab is released on every exit path.
func (c *Converter) render(ctx context.Context, load loadFunc, cfg *ConvertConfig) (*Result, error) {
	rc := cfg.resolved()

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx)
	defer tabCancel()

	var buf []byte
	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		if rc.DisableJavaScript {
			if err := emulation.SetScriptExecutionDisabled(true).Do(ctx); err != nil {
				return fmt.Errorf("disabling javascript: %w", err)
			}
		}
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enabling network events: %w", err)
		}

		// The waiter must exist before the load starts, or a fast page
		// could fire its events before anyone is watching.
		waiter := newLoadWaiter(ctx)

		if err := load(ctx); err != nil {
			return fmt.Errorf("loading content: %w", err)
		}
		if err := waiter.wait(ctx, rc.WaitUntil, rc.NavigationTimeout); err != nil {
			return err
		}

		if rc.AfterLoad != nil {
			if err := rc.AfterLoad(ctx); err != nil {
				return err
			}
		}

		if script := injectionScript(rc.HeaderHTML, rc.FooterHTML); script != "" {
			if err := chromedp.Evaluate(script, nil).Do(ctx); err != nil {
				return fmt.Errorf("injecting header/footer: %w", err)
			}
		}

		var err error
		buf, _, err = rc.Page.printParams().Do(ctx)
		if err != nil {
			return fmt.Errorf("printing to PDF: %w", err)
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("jaho: conversion failed: %w", err)
	}

	return &Result{data: buf}, nil
}
