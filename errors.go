package jaho

import "errors"

// Sentinel errors returned by the library.
var (
	// ErrNoContent is returned when the HTML (or Markdown) input is empty or
	// whitespace-only. It is the only error raised before a browser process
	// has been started.
	ErrNoContent = errors.New("jaho: content is required")

	// ErrClosed is returned when attempting to use a closed [Converter].
	ErrClosed = errors.New("jaho: converter is closed")
)
