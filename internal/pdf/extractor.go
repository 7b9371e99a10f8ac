package pdf

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

// Extractor extracts plain text from PDF pages.
type Extractor struct {
	doc *Document
}

// NewExtractor creates a text extractor for the given document.
func NewExtractor(doc *Document) *Extractor {
	return &Extractor{doc: doc}
}

// AllPages returns the plain text of every page, one string per page.
// Pages whose content cannot be decoded come back empty rather than failing
// the whole document.
func (e *Extractor) AllPages() ([]string, error) {
	pages, err := e.doc.Pages()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(pages))
	for i, pg := range pages {
		if text, err := e.pageText(pg); err == nil {
			out[i] = text
		}
	}
	return out, nil
}

// Page returns the plain text of a single page (0-indexed).
func (e *Extractor) Page(index int) (string, error) {
	pages, err := e.doc.Pages()
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(pages) {
		return "", fmt.Errorf("page %d out of range (%d pages)", index, len(pages))
	}
	return e.pageText(pages[index])
}

func (e *Extractor) pageText(page Dict) (string, error) {
	decoders := make(map[string]*fontDecoder)
	for name, font := range e.doc.fonts(page) {
		decoders[name] = newFontDecoder(font)
	}
	content, err := e.doc.contents(page)
	if err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", nil
	}
	return runContent(content, decoders), nil
}

// span is one positioned piece of shown text.
type span struct {
	x, y float64
	size float64
	text string
}

// textState mirrors the slice of the PDF text state machine needed for
// extraction: the current font, position, and leading.
type textState struct {
	font    string
	size    float64
	leading float64
	tx, ty  float64 // text position
	lx, ly  float64 // line start
}

// runContent interprets a page content stream, collecting shown text.
func runContent(content []byte, decoders map[string]*fontDecoder) string {
	s := newScanner(content, 0)
	st := textState{size: 12}
	inText := false

	var spans []span
	var stack []*Value

	emit := func(v *Value) {
		if !inText || v == nil || v.Kind != KindString {
			return
		}
		text := decodeShown(v.Str, st.font, decoders)
		if text != "" {
			spans = append(spans, span{x: st.tx, y: st.ty, size: st.size, text: text})
		}
	}
	newline := func() {
		st.ly -= st.leading
		st.tx, st.ty = st.lx, st.ly
	}
	arg := func(i int) *Value {
		if i < len(stack) {
			return stack[i]
		}
		return nil
	}

	for s.off < len(content) {
		s.skipSpace()
		if s.off >= len(content) {
			break
		}
		c := content[s.off]

		// operand
		if c == '(' || c == '<' || c == '/' || c == '[' ||
			c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
			if v, err := s.readValue(); err == nil {
				stack = append(stack, v)
			}
			continue
		}
		if !isOperatorByte(c) {
			s.off++
			continue
		}

		switch op := s.readOperator(); op {
		case "BT":
			inText = true
			st.tx, st.ty, st.lx, st.ly = 0, 0, 0, 0
		case "ET":
			inText = false
		case "Tf":
			if len(stack) >= 2 {
				if arg(0).Kind == KindName {
					st.font = arg(0).Name
				}
				st.size = numeric(arg(1))
			}
		case "TL":
			if len(stack) >= 1 {
				st.leading = numeric(arg(0))
			}
		case "Td", "TD":
			if len(stack) >= 2 {
				dx, dy := numeric(arg(0)), numeric(arg(1))
				if op == "TD" {
					st.leading = -dy
				}
				st.lx += dx
				st.ly += dy
				st.tx, st.ty = st.lx, st.ly
			}
		case "Tm":
			if len(stack) >= 6 {
				st.tx, st.ty = numeric(arg(4)), numeric(arg(5))
				st.lx, st.ly = st.tx, st.ty
			}
		case "T*":
			newline()
		case "Tj":
			if len(stack) >= 1 {
				emit(arg(0))
			}
		case "TJ":
			if len(stack) >= 1 && arg(0).Kind == KindArray {
				var b strings.Builder
				for _, el := range arg(0).Array {
					switch el.Kind {
					case KindString:
						b.WriteString(decodeShown(el.Str, st.font, decoders))
					case KindInt, KindReal:
						// large negative adjustments stand in for spaces
						if numeric(el) < -100 {
							b.WriteByte(' ')
						}
					}
				}
				if text := b.String(); text != "" {
					spans = append(spans, span{x: st.tx, y: st.ty, size: st.size, text: text})
				}
			}
		case "'":
			newline()
			if len(stack) >= 1 {
				emit(arg(0))
			}
		case `"`:
			newline()
			if len(stack) >= 3 {
				emit(arg(2))
			}
		}
		stack = stack[:0]
	}

	return assemble(spans)
}

func isOperatorByte(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
		c == '\'' || c == '"' || c == '*'
}

// readOperator reads a content stream operator token.
func (s *scanner) readOperator() string {
	start := s.off
	for s.off < len(s.src) {
		c := s.src[s.off]
		if isSpace(c) || c == '(' || c == '<' || c == '[' || c == '/' ||
			c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
			break
		}
		s.off++
	}
	return string(s.src[start:s.off])
}

// decodeShown turns a shown string's bytes into text via the current font.
func decodeShown(data []byte, font string, decoders map[string]*fontDecoder) string {
	if d, ok := decoders[font]; ok {
		return d.decode(data)
	}
	// no font resource: best-effort Latin-1
	var b strings.Builder
	for _, c := range data {
		if c >= 32 {
			b.WriteRune(rune(c))
		}
	}
	return b.String()
}

// assemble groups spans into lines by Y position, orders them, and inserts
// whitespace from positional gaps.
func assemble(spans []span) string {
	if len(spans) == 0 {
		return ""
	}

	tol := meanSize(spans) * 0.5
	if tol < 2 {
		tol = 2
	}

	type line struct {
		y     float64
		spans []span
	}
	var lines []line
	for _, sp := range spans {
		placed := false
		for i := range lines {
			if math.Abs(lines[i].y-sp.y) < tol {
				lines[i].spans = append(lines[i].spans, sp)
				placed = true
				break
			}
		}
		if !placed {
			lines = append(lines, line{y: sp.y, spans: []span{sp}})
		}
	}

	// top of page first: PDF y grows upward
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })
	for i := range lines {
		ln := lines[i].spans
		sort.SliceStable(ln, func(a, b int) bool { return ln[a].x < ln[b].x })
	}

	var b strings.Builder
	for li, ln := range lines {
		if li > 0 {
			b.WriteByte('\n')
		}
		for si, sp := range ln.spans {
			if si > 0 {
				prev := ln.spans[si-1]
				gap := sp.x - (prev.x + approxWidth(prev))
				ref := (sp.size + prev.size) / 2
				if ref < 1 {
					ref = 12
				}
				if gap > ref*0.3 {
					b.WriteByte(' ')
				}
			}
			b.WriteString(tidy(sp.text))
		}
	}
	return strings.TrimSpace(b.String())
}

func meanSize(spans []span) float64 {
	sum := 0.0
	for _, sp := range spans {
		sum += sp.size
	}
	return sum / float64(len(spans))
}

// approxWidth estimates a span's advance as half an em per rune.
func approxWidth(sp span) float64 {
	return float64(len([]rune(sp.text))) * sp.size * 0.5
}

// tidy collapses runs of whitespace and strips control characters.
func tidy(s string) string {
	var b strings.Builder
	prevSpace := false
	for _, r := range s {
		switch {
		case r == '\r' || r == '\n' || r == '\f' || r == ' ' || r == '\t':
			if !prevSpace {
				b.WriteByte(' ')
			}
			prevSpace = true
		case unicode.IsControl(r):
			// drop
		default:
			prevSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
