// Package testutil builds small, valid PDF files in memory for tests.
//
// Each page gets its own content stream; the xref table is computed from the
// real byte offsets so strict readers accept the result.
package testutil

import (
	"bytes"
	"fmt"
	"strings"
)

// PDF builds a document whose pages use the given raw content streams, in
// order. Every page can refer to the font resource /F1 (Helvetica).
func PDF(contents ...string) []byte {
	return build(len(contents), contents)
}

// PDFWithCount is PDF with a page tree that claims count pages regardless of
// how many are actually present. Use it to simulate a broken page tree.
func PDFWithCount(count int, contents ...string) []byte {
	return build(count, contents)
}

func build(count int, contents []string) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	// Objects 1-3 are fixed; page i uses objects 4+2i (page) and 5+2i (content).
	kids := make([]string, len(contents))
	for i := range contents {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), count))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, content := range contents {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

// TextPage returns a content stream that shows each string with its own Tj,
// one line apart.
func TextPage(lines ...string) string {
	var sb strings.Builder
	sb.WriteString("BT\n/F1 12 Tf\n72 720 Td\n")
	for i, line := range lines {
		if i > 0 {
			sb.WriteString("0 -14 Td\n")
		}
		fmt.Fprintf(&sb, "(%s) Tj\n", Escape(line))
	}
	sb.WriteString("ET")
	return sb.String()
}

// TextPDF is shorthand for a document with one single-line page per string.
func TextPDF(pages ...string) []byte {
	contents := make([]string, len(pages))
	for i, p := range pages {
		contents[i] = TextPage(p)
	}
	return PDF(contents...)
}

// Escape escapes a string for use inside a PDF literal string.
func Escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
