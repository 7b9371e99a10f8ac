package jaho

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
	"strings"
)

// Result holds a generated PDF and provides helpers for common output
// formats such as raw bytes, base64 encoding, and streaming readers.
//
// A Result is returned by every conversion. It is safe to call its methods
// multiple times; the underlying data is never modified.
type Result struct {
	data []byte
}

// Bytes returns the raw PDF content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Base64 returns the PDF encoded as a standard base64 string (RFC 4648),
// useful for embedding in JSON payloads.
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns a [*bytes.Reader] over the PDF content, suitable for
// streaming uploads or any API that accepts an [io.Reader].
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the PDF to the file at path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Len returns the size of the PDF in bytes.
func (r *Result) Len() int {
	return len(r.data)
}

// TextPages extracts the rendered plain text of the PDF, one string per
// page.
func (r *Result) TextPages() ([]string, error) {
	return ExtractText(r.data)
}

// Text extracts the rendered plain text of the whole PDF, pages joined by
// newlines.
func (r *Result) Text() (string, error) {
	pages, err := r.TextPages()
	if err != nil {
		return "", err
	}
	return strings.Join(pages, "\n"), nil
}
