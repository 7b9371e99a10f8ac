package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestLoadXrefPrevCycle(t *testing.T) {
	// The trailer's /Prev points back at its own xref section. Load must
	// reject the file instead of following the chain forever.
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	off1 := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	xrefOff := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 2\n0000000000 65535 f \n%010d 00000 n \n", off1)
	fmt.Fprintf(&buf, "trailer\n<< /Size 2 /Root 1 0 R /Prev %d >>\nstartxref\n%d\n%%%%EOF\n",
		xrefOff, xrefOff)

	if _, err := Load(buf.Bytes()); err == nil {
		t.Fatal("expected error for /Prev pointing at its own xref section")
	}
}

func TestSelfReferentialStreamLength(t *testing.T) {
	// Object 4's /Length is an indirect reference to object 4 itself.
	// Resolution must break the cycle and fall back to scanning for
	// endstream, still yielding the page text.
	cs := []byte("BT /F1 12 Tf 100 700 Td (Loop) Tj ET")
	var buf bytes.Buffer
	offsets := map[int]int{}

	buf.WriteString("%PDF-1.4\n")
	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	offsets[2] = buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	offsets[3] = buf.Len()
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792]" +
		" /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>\nendobj\n")
	offsets[4] = buf.Len()
	buf.WriteString("4 0 obj\n<< /Length 4 0 R >>\nstream\n")
	buf.Write(cs)
	buf.WriteString("\nendstream\nendobj\n")
	offsets[5] = buf.Len()
	buf.WriteString("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica" +
		" /Encoding /WinAnsiEncoding >>\nendobj\n")

	xrefOff := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for id := 1; id <= 5; id++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[id])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefOff)

	doc, err := Load(buf.Bytes())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	text, err := NewExtractor(doc).Page(0)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if !strings.Contains(text, "Loop") {
		t.Errorf("text = %q, want it to contain %q", text, "Loop")
	}
}
