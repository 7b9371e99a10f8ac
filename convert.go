package jaho

import (
	"context"
	"strings"
	"time"
)

// DefaultNavigationTimeout bounds the page-load wait when
// [ConvertConfig.NavigationTimeout] is not set.
const DefaultNavigationTimeout = 30 * time.Second

// WaitUntil selects the load-completion condition a conversion waits for
// before rendering.
type WaitUntil int

const (
	// WaitNetworkIdle waits until no network requests have been pending for
	// a short quiet period. This is the default and the right choice for
	// documents that load remote images, fonts, or stylesheets.
	WaitNetworkIdle WaitUntil = iota

	// WaitLoad waits only for the document load event, proceeding to export
	// even while network activity is still pending.
	WaitLoad
)

// String returns the flag-style name of the condition.
func (w WaitUntil) String() string {
	if w == WaitLoad {
		return "load"
	}
	return "network-idle"
}

// PageHook is a caller-supplied procedure run against the live page after it
// has loaded and before the PDF is exported. The context carries the page's
// DevTools executor, so any chromedp action or cdproto command can be issued
// through it:
//
//	cfg.AfterLoad = func(ctx context.Context) error {
//		return chromedp.Click("#expand-all", chromedp.ByID).Do(ctx)
//	}
//
// An error returned by the hook aborts the conversion; the browser is
// released and the error is propagated to the caller unchanged.
type PageHook func(ctx context.Context) error

// ConvertConfig controls a single conversion. The zero value (or nil) means:
// JavaScript enabled, wait for network idle, 30 second navigation timeout,
// no header or footer injection, no hook, default export options.
type ConvertConfig struct {
	// Page holds the PDF export options, merged over defaults.
	Page *PageOptions

	// DisableJavaScript turns off script execution on the loaded page.
	DisableJavaScript bool

	// WaitUntil selects the load-completion condition. Defaults to
	// WaitNetworkIdle.
	WaitUntil WaitUntil

	// NavigationTimeout bounds the page-load wait only, not the whole call.
	// Defaults to DefaultNavigationTimeout.
	NavigationTimeout time.Duration

	// HeaderHTML, if non-empty, is inserted at the start of the document
	// body after the page has loaded. Unlike PageOptions.HeaderTemplate it
	// is part of the page flow, not the print chrome.
	HeaderHTML string

	// FooterHTML, if non-empty, is appended to the end of the document body
	// after the page has loaded.
	FooterHTML string

	// AfterLoad is run against the live page before export.
	AfterLoad PageHook
}

// resolved returns a copy with defaults applied.
func (cfg *ConvertConfig) resolved() ConvertConfig {
	var r ConvertConfig
	if cfg != nil {
		r = *cfg
	}
	if r.NavigationTimeout <= 0 {
		r.NavigationTimeout = DefaultNavigationTimeout
	}
	return r
}

// emptyContent reports whether s has no content worth rendering.
func emptyContent(s string) bool {
	return strings.TrimSpace(s) == ""
}

// --- Package-level convenience functions ---
//
// Each spawns a browser process scoped to the call and guarantees it is
// terminated exactly once on every exit path, success or failure. For
// repeated conversions create a [Converter] to reuse the browser.

// Convert converts an HTML string to a PDF document using a browser process
// scoped to this call. Empty input fails with [ErrNoContent] before any
// browser is started.
func Convert(ctx context.Context, html string, cfg *ConvertConfig, opts ...Option) (*Result, error) {
	if emptyContent(html) {
		return nil, ErrNoContent
	}
	conv, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.Convert(ctx, html, cfg)
}

// ConvertURL converts the web page at rawURL to a PDF document using a
// browser process scoped to this call.
func ConvertURL(ctx context.Context, rawURL string, cfg *ConvertConfig, opts ...Option) (*Result, error) {
	conv, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.ConvertURL(ctx, rawURL, cfg)
}

// ConvertFile converts a local HTML file to a PDF document using a browser
// process scoped to this call.
func ConvertFile(ctx context.Context, path string, cfg *ConvertConfig, opts ...Option) (*Result, error) {
	conv, err := NewConverter(opts...)
	if err != nil {
		return nil, err
	}
	defer conv.Close()
	return conv.ConvertFile(ctx, path, cfg)
}
