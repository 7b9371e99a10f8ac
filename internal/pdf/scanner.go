package pdf

import (
	"bytes"
	"fmt"
	"strconv"
)

// maxDepth bounds object nesting so a malformed file cannot recurse forever.
const maxDepth = 100

// scanner is a recursive-descent reader for PDF object syntax.
type scanner struct {
	src   []byte
	off   int
	depth int
}

func newScanner(src []byte, off int) *scanner {
	return &scanner{src: src, off: off}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// skipSpace skips whitespace and %-comments.
func (s *scanner) skipSpace() {
	for s.off < len(s.src) {
		c := s.src[s.off]
		if c == '%' {
			for s.off < len(s.src) && s.src[s.off] != '\n' && s.src[s.off] != '\r' {
				s.off++
			}
			continue
		}
		if !isSpace(c) {
			return
		}
		s.off++
	}
}

// expect consumes the literal word if it is next in the input.
func (s *scanner) expect(word string) bool {
	end := s.off + len(word)
	if end > len(s.src) || string(s.src[s.off:end]) != word {
		return false
	}
	s.off = end
	return true
}

// token reads a run of regular (non-space, non-delimiter) characters.
func (s *scanner) token() string {
	start := s.off
	for s.off < len(s.src) && !isSpace(s.src[s.off]) && !isDelim(s.src[s.off]) {
		s.off++
	}
	return string(s.src[start:s.off])
}

// readValue reads one PDF object at the current position.
func (s *scanner) readValue() (*Value, error) {
	if s.depth > maxDepth {
		return nil, fmt.Errorf("object nesting too deep")
	}
	s.depth++
	defer func() { s.depth-- }()

	s.skipSpace()
	if s.off >= len(s.src) {
		return &Value{Kind: KindNull}, nil
	}

	switch c := s.src[s.off]; {
	case c == 'n' && s.expect("null"):
		return &Value{Kind: KindNull}, nil
	case c == 't' && s.expect("true"):
		return &Value{Kind: KindBool, Bool: true}, nil
	case c == 'f' && s.expect("false"):
		return &Value{Kind: KindBool}, nil
	case c == '(':
		return s.readLiteralString(), nil
	case c == '<' && s.off+1 < len(s.src) && s.src[s.off+1] == '<':
		return s.readDict()
	case c == '<':
		return s.readHexString(), nil
	case c == '/':
		return s.readName(), nil
	case c == '[':
		return s.readArray()
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return s.readNumberOrRef(), nil
	default:
		// Unknown token: skip one byte and report null.
		s.off++
		return &Value{Kind: KindNull}, nil
	}
}

// readLiteralString reads a (…) string with escapes and balanced parens.
func (s *scanner) readLiteralString() *Value {
	s.off++ // '('
	var buf bytes.Buffer
	depth := 1
	for s.off < len(s.src) && depth > 0 {
		c := s.src[s.off]
		switch c {
		case '\\':
			s.off++
			if s.off >= len(s.src) {
				break
			}
			esc := s.src[s.off]
			s.off++
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '(', ')', '\\':
				buf.WriteByte(esc)
			case '\r':
				// line continuation; swallow a following LF
				if s.off < len(s.src) && s.src[s.off] == '\n' {
					s.off++
				}
			case '\n':
				// line continuation
			default:
				if esc >= '0' && esc <= '7' {
					oct := int(esc - '0')
					for i := 0; i < 2 && s.off < len(s.src); i++ {
						d := s.src[s.off]
						if d < '0' || d > '7' {
							break
						}
						oct = oct*8 + int(d-'0')
						s.off++
					}
					buf.WriteByte(byte(oct))
				} else {
					buf.WriteByte(esc)
				}
			}
		case '(':
			depth++
			buf.WriteByte(c)
			s.off++
		case ')':
			depth--
			if depth > 0 {
				buf.WriteByte(c)
			}
			s.off++
		default:
			buf.WriteByte(c)
			s.off++
		}
	}
	return &Value{Kind: KindString, Str: buf.Bytes()}
}

// readHexString reads a <…> hex string. An odd final digit implies a
// trailing zero nibble.
func (s *scanner) readHexString() *Value {
	s.off++ // '<'
	var buf bytes.Buffer
	for s.off < len(s.src) && s.src[s.off] != '>' {
		s.skipSpace()
		if s.off >= len(s.src) || s.src[s.off] == '>' {
			break
		}
		hi := hexNibble(s.src[s.off])
		s.off++
		var lo byte
		if s.off < len(s.src) && s.src[s.off] != '>' {
			lo = hexNibble(s.src[s.off])
			s.off++
		}
		buf.WriteByte(hi<<4 | lo)
	}
	if s.off < len(s.src) {
		s.off++ // '>'
	}
	return &Value{Kind: KindString, Str: buf.Bytes()}
}

func hexNibble(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}

// readName reads a /Name, decoding #XX escapes.
func (s *scanner) readName() *Value {
	s.off++ // '/'
	start := s.off
	for s.off < len(s.src) && !isSpace(s.src[s.off]) && !isDelim(s.src[s.off]) {
		s.off++
	}
	return &Value{Kind: KindName, Name: decodeNameEscapes(string(s.src[start:s.off]))}
}

func decodeNameEscapes(name string) string {
	if !bytes.ContainsRune([]byte(name), '#') {
		return name
	}
	var buf bytes.Buffer
	for i := 0; i < len(name); {
		if name[i] == '#' && i+2 < len(name) {
			buf.WriteByte(hexNibble(name[i+1])<<4 | hexNibble(name[i+2]))
			i += 3
			continue
		}
		buf.WriteByte(name[i])
		i++
	}
	return buf.String()
}

// readArray reads […].
func (s *scanner) readArray() (*Value, error) {
	s.off++ // '['
	var items []*Value
	for {
		s.skipSpace()
		if s.off >= len(s.src) {
			break
		}
		if s.src[s.off] == ']' {
			s.off++
			break
		}
		v, err := s.readValue()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return &Value{Kind: KindArray, Array: items}, nil
}

// readDict reads <<…>>, and the stream body that may follow it.
func (s *scanner) readDict() (*Value, error) {
	s.off += 2 // '<<'
	d := make(Dict)
	for {
		s.skipSpace()
		if s.off >= len(s.src) {
			break
		}
		if s.off+1 < len(s.src) && s.src[s.off] == '>' && s.src[s.off+1] == '>' {
			s.off += 2
			break
		}
		if s.src[s.off] != '/' {
			// malformed entry; skip a byte and resync
			s.off++
			continue
		}
		key := s.readName()
		val, err := s.readValue()
		if err != nil {
			return nil, err
		}
		d[key.Name] = val
	}

	s.skipSpace()
	if !s.expect("stream") {
		return &Value{Kind: KindDict, Dict: d}, nil
	}
	if s.off < len(s.src) && s.src[s.off] == '\r' {
		s.off++
	}
	if s.off < len(s.src) && s.src[s.off] == '\n' {
		s.off++
	}

	start := s.off
	length := -1
	if n, ok := d.Int("Length"); ok {
		length = int(n)
	}
	var body []byte
	if length >= 0 && start+length <= len(s.src) {
		body = s.src[start : start+length]
		s.off = start + length
	} else {
		// /Length missing or indirect: fall back to scanning for endstream.
		end := bytes.Index(s.src[start:], []byte("endstream"))
		if end < 0 {
			end = len(s.src) - start
		}
		body = s.src[start : start+end]
		s.off = start + end
	}
	s.skipSpace()
	s.expect("endstream")

	return &Value{Kind: KindStream, Dict: d, Stream: body}, nil
}

// readNumberOrRef reads a number, or an indirect reference "N G R".
func (s *scanner) readNumberOrRef() *Value {
	numStr := s.token()
	n, intErr := strconv.ParseInt(numStr, 10, 64)

	if intErr == nil {
		afterNum := s.off
		s.skipSpace()
		genStr := s.token()
		if g, err := strconv.ParseInt(genStr, 10, 64); err == nil {
			s.skipSpace()
			if s.off < len(s.src) && s.src[s.off] == 'R' {
				next := s.off + 1
				if next >= len(s.src) || isSpace(s.src[next]) || isDelim(s.src[next]) {
					s.off = next
					return &Value{Kind: KindRef, Ref: Ref{Num: int(n), Gen: int(g)}}
				}
			}
		}
		s.off = afterNum
		return &Value{Kind: KindInt, Int: n}
	}

	if f, err := strconv.ParseFloat(numStr, 64); err == nil {
		return &Value{Kind: KindReal, Real: f}
	}
	return &Value{Kind: KindNull}
}
