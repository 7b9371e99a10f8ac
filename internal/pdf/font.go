package pdf

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// fontDecoder maps the glyph codes of one font to Unicode text. Decoding
// priority is ToUnicode CMap, then the font's named encoding, then Latin-1.
type fontDecoder struct {
	single [256]rune         // simple (one-byte) fonts
	multi  map[uint32]string // composite (CID) fonts, from the ToUnicode CMap
	simple bool
}

// newFontDecoder builds a decoder from a font dictionary. Browsers embed
// subset fonts with ToUnicode CMaps, which is the path that matters here;
// WinAnsi covers unembedded simple fonts.
func newFontDecoder(font *Value) *fontDecoder {
	d := &fontDecoder{simple: true, multi: make(map[uint32]string)}
	for i := range d.single {
		d.single[i] = rune(i)
	}
	if font == nil || (font.Kind != KindDict && font.Kind != KindStream) {
		return d
	}

	if enc, ok := font.Dict.Name("Encoding"); ok && enc == "WinAnsiEncoding" {
		d.applyWinAnsi()
	}
	if subtype, _ := font.Dict.Name("Subtype"); subtype == "Type0" {
		d.simple = false
	}
	if cmap, ok := font.Dict["ToUnicode"]; ok && cmap.Kind == KindStream {
		d.parseCMap(cmap.Stream)
	}
	return d
}

// decode converts a PDF string's bytes to UTF-8 text.
func (d *fontDecoder) decode(data []byte) string {
	if d.simple {
		var b strings.Builder
		for _, c := range data {
			if r := d.single[c]; r > 0 && utf8.ValidRune(r) {
				b.WriteRune(r)
			}
		}
		return b.String()
	}

	// CID font: two-byte codes first, one-byte fallback.
	var b strings.Builder
	for i := 0; i < len(data); {
		if i+1 < len(data) {
			code := uint32(data[i])<<8 | uint32(data[i+1])
			if s, ok := d.multi[code]; ok {
				b.WriteString(s)
				i += 2
				continue
			}
		}
		if s, ok := d.multi[uint32(data[i])]; ok {
			b.WriteString(s)
		} else if r := d.single[data[i]]; r > 0 && utf8.ValidRune(r) {
			b.WriteRune(r)
		}
		i++
	}
	return b.String()
}

func (d *fontDecoder) set(code uint32, text string) {
	if d.simple && code < 256 {
		if rs := []rune(text); len(rs) > 0 {
			d.single[code] = rs[0]
		}
		return
	}
	d.multi[code] = text
}

// parseCMap reads the bfchar and bfrange sections of a ToUnicode CMap.
func (d *fontDecoder) parseCMap(data []byte) {
	inChar, inRange := false, false
	for _, raw := range bytes.Split(data, []byte("\n")) {
		line := strings.TrimSpace(string(raw))
		switch {
		case strings.HasSuffix(line, "beginbfchar"):
			inChar = true
		case line == "endbfchar":
			inChar = false
		case strings.HasSuffix(line, "beginbfrange"):
			inRange = true
		case line == "endbfrange":
			inRange = false
		case inChar:
			d.parseBFChar(line)
		case inRange:
			d.parseBFRange(line)
		}
	}
}

// parseBFChar handles "<src> <dst>".
func (d *fontDecoder) parseBFChar(line string) {
	toks := cmapTokens(line)
	if len(toks) < 2 {
		return
	}
	d.set(hexCode(toks[0]), hexUTF16(toks[1]))
}

// parseBFRange handles "<low> <high> <dstStart>" and the array form
// "<low> <high> [<dst> <dst> …]".
func (d *fontDecoder) parseBFRange(line string) {
	toks := cmapTokens(line)
	if len(toks) < 3 {
		return
	}
	low, high := hexCode(toks[0]), hexCode(toks[1])
	if high < low || high-low > 0xFFFF {
		return
	}

	if strings.HasPrefix(toks[2], "[") {
		inner := strings.TrimSuffix(strings.TrimPrefix(strings.Join(toks[2:], " "), "["), "]")
		dsts := cmapTokens(inner)
		for i, code := 0, low; code <= high && i < len(dsts); code, i = code+1, i+1 {
			d.set(code, hexUTF16(dsts[i]))
		}
		return
	}

	start := []rune(hexUTF16(toks[2]))
	if len(start) == 0 {
		return
	}
	for code := low; code <= high; code++ {
		d.set(code, string(start[0]+rune(code-low)))
	}
}

// cmapTokens splits a CMap line into <hex>, [array] and bare tokens.
func cmapTokens(line string) []string {
	var toks []string
	i := 0
	for i < len(line) {
		switch {
		case line[i] == ' ' || line[i] == '\t' || line[i] == '\r':
			i++
		case line[i] == '<':
			j := strings.Index(line[i+1:], ">")
			if j < 0 {
				return toks
			}
			toks = append(toks, line[i:i+j+2])
			i += j + 2
		case line[i] == '[':
			j := strings.Index(line[i:], "]")
			if j < 0 {
				toks = append(toks, line[i:])
				return toks
			}
			toks = append(toks, line[i:i+j+1])
			i += j + 1
		default:
			j := i
			for j < len(line) && line[j] != ' ' && line[j] != '\t' {
				j++
			}
			toks = append(toks, line[i:j])
			i = j
		}
	}
	return toks
}

// hexCode parses "<XXXX>" into a glyph code.
func hexCode(tok string) uint32 {
	tok = strings.TrimSuffix(strings.TrimPrefix(tok, "<"), ">")
	n, _ := strconv.ParseUint(tok, 16, 32)
	return uint32(n)
}

// hexUTF16 parses "<XXXX…>" as big-endian UTF-16 text.
func hexUTF16(tok string) string {
	tok = strings.TrimSuffix(strings.TrimPrefix(tok, "<"), ">")
	var units []uint16
	for i := 0; i+4 <= len(tok); i += 4 {
		n, err := strconv.ParseUint(tok[i:i+4], 16, 16)
		if err != nil {
			return ""
		}
		units = append(units, uint16(n))
	}
	return string(utf16.Decode(units))
}

// applyWinAnsi overlays the CP1252 upper range; 0xA0-0xFF already matches
// Latin-1 identity.
func (d *fontDecoder) applyWinAnsi() {
	for code, r := range winAnsiHigh {
		if r != 0 {
			d.single[0x80+code] = r
		}
	}
}

// winAnsiHigh holds WinAnsiEncoding codes 0x80-0x9F (zero = unused).
var winAnsiHigh = [32]rune{
	0x20AC, 0, 0x201A, 0x0192, 0x201E, 0x2026, 0x2020, 0x2021,
	0x02C6, 0x2030, 0x0160, 0x2039, 0x0152, 0, 0x017D, 0,
	0, 0x2018, 0x2019, 0x201C, 0x201D, 0x2022, 0x2013, 0x2014,
	0x02DC, 0x2122, 0x0161, 0x203A, 0x0153, 0, 0x017E, 0x0178,
}
