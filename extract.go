package jaho

import (
	"fmt"

	"github.com/Lokiaa21/jaho/internal/pdf"
)

// ExtractText parses a PDF and returns its plain text, one string per page.
// It understands the subset of the PDF format that browsers emit (Flate
// compressed streams, ToUnicode CMaps, cross-reference tables and streams)
// and exists so the rendered output of a conversion can be inspected in
// tests and tooling without an external PDF reader.
func ExtractText(data []byte) ([]string, error) {
	doc, err := pdf.Load(data)
	if err != nil {
		return nil, fmt.Errorf("jaho: reading pdf: %w", err)
	}
	return pdf.NewExtractor(doc).AllPages()
}
