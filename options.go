package jaho

import "time"

// converterConfig holds launch-time configuration for a Converter.
type converterConfig struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     string
	autoDownload bool
	extraFlags   map[string]any
}

func defaultConverterConfig() converterConfig {
	return converterConfig{
		headless: "new",
	}
}

// Option configures the browser launch of a [Converter] or a one-shot
// conversion.
type Option func(*converterConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *converterConfig) {
		c.chromePath = path
	}
}

// WithTimeout bounds the total duration of a single conversion, from opening
// the page to receiving the PDF bytes. By default only the page-load wait is
// bounded (see [ConvertConfig.NavigationTimeout]); a zero or negative value
// here leaves the rest of the call unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *converterConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when running
// as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *converterConfig) {
		c.noSandbox = true
	}
}

// WithHeadful runs the browser with a visible window. Useful when debugging
// a conversion.
func WithHeadful() Option {
	return func(c *converterConfig) {
		c.headless = ""
	}
}

// WithAutoDownload downloads a compatible Chromium binary on first use when
// none is installed. The binary is cached under the user cache directory.
func WithAutoDownload() Option {
	return func(c *converterConfig) {
		c.autoDownload = true
	}
}

// WithBrowserFlag passes an additional command-line flag to the browser
// process, e.g. WithBrowserFlag("lang", "de-DE") or
// WithBrowserFlag("disable-web-security", true).
func WithBrowserFlag(name string, value any) Option {
	return func(c *converterConfig) {
		if c.extraFlags == nil {
			c.extraFlags = make(map[string]any)
		}
		c.extraFlags[name] = value
	}
}
