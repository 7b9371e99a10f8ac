package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// xrefEntry locates one indirect object.
type xrefEntry struct {
	offset int64
	gen    int
	inUse  bool
	// set when the object lives inside an object stream (PDF 1.5+)
	inStream  bool
	streamNum int
	streamIdx int
}

// Document is a parsed PDF file.
type Document struct {
	src       []byte
	xref      map[int]xrefEntry
	trailer   Dict
	objs      map[int]*Value // resolved indirect objects
	xrefSeen  map[int64]bool // xref offsets already parsed
	resolving map[int]bool   // objects being resolved, breaks reference cycles
}

// Load parses a PDF from raw bytes.
func Load(data []byte) (*Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("not a PDF file")
	}
	doc := &Document{
		src:       data,
		xref:      make(map[int]xrefEntry),
		objs:      make(map[int]*Value),
		xrefSeen:  make(map[int64]bool),
		resolving: make(map[int]bool),
	}
	if err := doc.loadXref(); err != nil {
		return nil, fmt.Errorf("loading xref: %w", err)
	}
	return doc, nil
}

// Version returns the PDF version string from the header, e.g. "1.7".
func (doc *Document) Version() string {
	end := bytes.IndexAny(doc.src[:min(len(doc.src), 16)], "\r\n")
	if end < 5 {
		return "?"
	}
	return strings.TrimSpace(string(doc.src[5:end]))
}

func (doc *Document) loadXref() error {
	offset, err := doc.findStartXref()
	if err != nil {
		return err
	}
	return doc.loadXrefAt(offset)
}

// findStartXref scans the file tail for the startxref keyword.
func (doc *Document) findStartXref() (int64, error) {
	from := len(doc.src) - 1024
	if from < 0 {
		from = 0
	}
	idx := bytes.LastIndex(doc.src[from:], []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("startxref not found")
	}
	pos := from + idx + len("startxref")
	for pos < len(doc.src) && isSpace(doc.src[pos]) {
		pos++
	}
	end := pos
	for end < len(doc.src) && doc.src[end] >= '0' && doc.src[end] <= '9' {
		end++
	}
	if end == pos {
		return 0, fmt.Errorf("missing startxref offset")
	}
	return strconv.ParseInt(string(doc.src[pos:end]), 10, 64)
}

// loadXrefAt parses the xref section at offset, following /Prev chains.
func (doc *Document) loadXrefAt(offset int64) error {
	if offset < 0 || int(offset) >= len(doc.src) {
		return fmt.Errorf("xref offset %d out of bounds", offset)
	}
	// A malformed /Prev chain can point back at an earlier section.
	if doc.xrefSeen[offset] {
		return fmt.Errorf("xref chain loops back to offset %d", offset)
	}
	doc.xrefSeen[offset] = true
	s := newScanner(doc.src, int(offset))
	s.skipSpace()
	if s.expect("xref") {
		return doc.loadXrefTable(s)
	}
	return doc.loadXrefStream(s)
}

// loadXrefTable reads a classic xref table plus its trailer.
func (doc *Document) loadXrefTable(s *scanner) error {
	for {
		s.skipSpace()
		if s.off >= len(doc.src) {
			break
		}
		if s.expect("trailer") {
			break
		}
		first, err1 := strconv.Atoi(s.token())
		s.skipSpace()
		count, err2 := strconv.Atoi(s.token())
		if err1 != nil || err2 != nil {
			break
		}
		s.skipSpace()
		// entries are fixed-width 20-byte records
		for i := 0; i < count; i++ {
			if s.off+20 > len(doc.src) {
				break
			}
			rec := string(doc.src[s.off : s.off+20])
			s.off += 20
			off, _ := strconv.ParseInt(strings.TrimSpace(rec[:10]), 10, 64)
			gen, _ := strconv.Atoi(strings.TrimSpace(rec[11:16]))
			id := first + i
			if _, seen := doc.xref[id]; !seen {
				doc.xref[id] = xrefEntry{offset: off, gen: gen, inUse: rec[17] == 'n'}
			}
		}
	}

	s.skipSpace()
	trailer, err := s.readValue()
	if err != nil {
		return fmt.Errorf("trailer: %w", err)
	}
	if doc.trailer == nil && trailer.Kind == KindDict {
		doc.trailer = trailer.Dict
	}
	if prev, ok := trailer.Dict.Int("Prev"); ok && prev > 0 {
		return doc.loadXrefAt(prev)
	}
	return nil
}

// loadXrefStream reads a cross-reference stream (PDF 1.5+).
func (doc *Document) loadXrefStream(s *scanner) error {
	s.token() // object number
	s.skipSpace()
	s.token() // generation
	s.skipSpace()
	s.expect("obj")

	v, err := s.readValue()
	if err != nil {
		return err
	}
	if v.Kind != KindStream {
		return fmt.Errorf("xref object is not a stream")
	}
	if doc.trailer == nil {
		doc.trailer = v.Dict
	}

	data, err := decodeStream(v.Dict, v.Stream)
	if err != nil {
		return err
	}

	widths, _ := v.Dict.Items("W")
	if len(widths) < 3 {
		return fmt.Errorf("xref stream missing /W")
	}
	w1, w2, w3 := int(widths[0].Int), int(widths[1].Int), int(widths[2].Int)
	recSize := w1 + w2 + w3
	if recSize == 0 {
		return fmt.Errorf("xref stream has zero-width records")
	}

	size, _ := v.Dict.Int("Size")
	var sections [][2]int
	if idx, ok := v.Dict.Items("Index"); ok && len(idx) >= 2 {
		for i := 0; i+1 < len(idx); i += 2 {
			sections = append(sections, [2]int{int(idx[i].Int), int(idx[i+1].Int)})
		}
	} else {
		sections = [][2]int{{0, int(size)}}
	}

	pos := 0
	for _, sec := range sections {
		first, count := sec[0], sec[1]
		for i := 0; i < count; i++ {
			if pos+recSize > len(data) {
				break
			}
			// a zero-width first field defaults to type 1
			kind := 1
			if w1 > 0 {
				kind = bigEndian(data[pos:], w1)
			}
			f2 := bigEndian(data[pos+w1:], w2)
			f3 := bigEndian(data[pos+w1+w2:], w3)
			pos += recSize

			id := first + i
			if _, seen := doc.xref[id]; seen {
				continue
			}
			switch kind {
			case 0:
				doc.xref[id] = xrefEntry{gen: f3}
			case 1:
				doc.xref[id] = xrefEntry{offset: int64(f2), gen: f3, inUse: true}
			case 2:
				doc.xref[id] = xrefEntry{inUse: true, inStream: true, streamNum: f2, streamIdx: f3}
			}
		}
	}

	if prev, ok := v.Dict.Int("Prev"); ok && prev > 0 {
		return doc.loadXrefAt(prev)
	}
	return nil
}

// bigEndian reads n bytes as a big-endian integer.
func bigEndian(data []byte, n int) int {
	v := 0
	for i := 0; i < n && i < len(data); i++ {
		v = v<<8 | int(data[i])
	}
	return v
}

// resolveRef loads the object behind an indirect reference. Unknown or freed
// objects resolve to null, matching reader behavior in the wild.
func (doc *Document) resolveRef(ref Ref) *Value {
	if v, ok := doc.objs[ref.Num]; ok {
		return v
	}
	entry, ok := doc.xref[ref.Num]
	if !ok || !entry.inUse {
		return &Value{Kind: KindNull}
	}
	// Cycles reach back here before the object is cached, for example a
	// stream whose /Length is an indirect reference to itself.
	if doc.resolving[ref.Num] {
		return &Value{Kind: KindNull}
	}
	doc.resolving[ref.Num] = true
	defer delete(doc.resolving, ref.Num)

	var v *Value
	var err error
	if entry.inStream {
		v, err = doc.objFromStream(ref.Num, entry)
	} else {
		v, err = doc.objAt(entry.offset)
	}
	if err != nil || v == nil {
		v = &Value{Kind: KindNull}
	}
	doc.objs[ref.Num] = v
	return v
}

// objAt parses "N G obj … endobj" at a byte offset.
func (doc *Document) objAt(offset int64) (*Value, error) {
	if offset < 0 || int(offset) >= len(doc.src) {
		return nil, fmt.Errorf("object offset %d out of bounds", offset)
	}
	parse := func() (*Value, error) {
		s := newScanner(doc.src, int(offset))
		s.token()
		s.skipSpace()
		s.token()
		s.skipSpace()
		if !s.expect("obj") {
			return nil, fmt.Errorf("no object at offset %d", offset)
		}
		return s.readValue()
	}

	v, err := parse()
	if err != nil {
		return nil, err
	}

	// An indirect stream /Length needs resolving before the body can be
	// sliced correctly; resolve it and parse again.
	if v.Kind == KindStream {
		if lv, ok := v.Dict["Length"]; ok && lv.Kind == KindRef {
			resolved := doc.resolveRef(lv.Ref)
			if resolved.Kind == KindInt {
				v.Dict["Length"] = resolved
				return parse()
			}
		}
	}
	return v, nil
}

// objFromStream extracts an object stored inside an object stream.
func (doc *Document) objFromStream(num int, entry xrefEntry) (*Value, error) {
	container := doc.resolveRef(Ref{Num: entry.streamNum})
	if container.Kind != KindStream {
		return nil, fmt.Errorf("object stream %d missing", entry.streamNum)
	}
	data, err := decodeStream(container.Dict, container.Stream)
	if err != nil {
		return nil, err
	}

	n, _ := container.Dict.Int("N")
	first, _ := container.Dict.Int("First")

	// header: N pairs of "objnum offset"
	s := newScanner(data, 0)
	offsets := make(map[int]int, n)
	for i := 0; i < int(n); i++ {
		s.skipSpace()
		id, _ := strconv.Atoi(s.token())
		s.skipSpace()
		off, _ := strconv.Atoi(s.token())
		offsets[id] = off
	}

	off, ok := offsets[num]
	if !ok {
		return nil, fmt.Errorf("object %d not in stream %d", num, entry.streamNum)
	}
	body := newScanner(data, int(first)+off)
	return body.readValue()
}

// deref follows v if it is an indirect reference.
func (doc *Document) deref(v *Value) *Value {
	if v == nil {
		return &Value{Kind: KindNull}
	}
	if v.Kind != KindRef {
		return v
	}
	return doc.resolveRef(v.Ref)
}

// catalog returns the document catalog dictionary.
func (doc *Document) catalog() (Dict, error) {
	rootVal, ok := doc.trailer["Root"]
	if !ok {
		return nil, fmt.Errorf("no /Root in trailer")
	}
	root := doc.deref(rootVal)
	if root.Kind != KindDict {
		return nil, fmt.Errorf("catalog is not a dictionary")
	}
	return root.Dict, nil
}

// Pages returns all leaf page dictionaries in document order.
func (doc *Document) Pages() ([]Dict, error) {
	cat, err := doc.catalog()
	if err != nil {
		return nil, err
	}
	rootVal, ok := cat["Pages"]
	if !ok {
		return nil, fmt.Errorf("no /Pages in catalog")
	}
	var pages []Dict
	doc.collectPages(doc.deref(rootVal).Dict, &pages)
	return pages, nil
}

func (doc *Document) collectPages(node Dict, pages *[]Dict) {
	if node == nil {
		return
	}
	if t, _ := node.Name("Type"); t == "Page" {
		*pages = append(*pages, node)
		return
	}
	kidsVal, ok := node["Kids"]
	if !ok {
		return
	}
	kids := doc.deref(kidsVal)
	if kids.Kind != KindArray {
		return
	}
	for _, kidVal := range kids.Array {
		kid := doc.deref(kidVal)
		if kid.Kind == KindDict || kid.Kind == KindStream {
			doc.collectPages(kid.Dict, pages)
		}
	}
}

// contents returns the decoded, concatenated content streams of a page.
func (doc *Document) contents(page Dict) ([]byte, error) {
	cVal, ok := page["Contents"]
	if !ok {
		return nil, nil
	}
	c := doc.deref(cVal)
	streams := []*Value{c}
	if c.Kind == KindArray {
		streams = c.Array
	}

	var out []byte
	for _, sv := range streams {
		sv = doc.deref(sv)
		if sv.Kind != KindStream {
			continue
		}
		data, err := decodeStream(sv.Dict, sv.Stream)
		if err != nil {
			continue
		}
		out = append(out, data...)
		out = append(out, ' ')
	}
	return out, nil
}

// fonts returns the page's font resources keyed by resource name.
func (doc *Document) fonts(page Dict) map[string]*Value {
	resVal, ok := page["Resources"]
	if !ok {
		return nil
	}
	res := doc.deref(resVal)
	if res.Kind != KindDict && res.Kind != KindStream {
		return nil
	}
	fontVal, ok := res.Dict["Font"]
	if !ok {
		return nil
	}
	fontDict := doc.deref(fontVal)
	if fontDict.Kind != KindDict {
		return nil
	}
	fonts := make(map[string]*Value, len(fontDict.Dict))
	for name, v := range fontDict.Dict {
		fonts[name] = doc.deref(v)
	}
	return fonts
}

// PageSize returns a page's MediaBox dimensions in points.
func (doc *Document) PageSize(page Dict) (width, height float64) {
	mbVal, ok := page["MediaBox"]
	if !ok {
		return 0, 0
	}
	mb := doc.deref(mbVal)
	if mb.Kind != KindArray || len(mb.Array) < 4 {
		return 0, 0
	}
	x0, y0 := numeric(mb.Array[0]), numeric(mb.Array[1])
	x1, y1 := numeric(mb.Array[2]), numeric(mb.Array[3])
	return x1 - x0, y1 - y0
}
