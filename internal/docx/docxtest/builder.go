// Package docxtest builds small .docx packages in memory for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/a3tai/mcp-docx-filler/internal/docx"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const rels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const docHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const docTail = `<w:sectPr/></w:body></w:document>`

// P returns a paragraph with one plain run per text argument.
func P(runs ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:p>")
	for _, r := range runs {
		sb.WriteString(`<w:r><w:t xml:space="preserve">`)
		sb.WriteString(escape(r))
		sb.WriteString(`</w:t></w:r>`)
	}
	sb.WriteString("</w:p>")
	return sb.String()
}

// BoldP returns a paragraph whose single run is bold.
func BoldP(text string) string {
	return `<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` +
		escape(text) + `</w:t></w:r></w:p>`
}

// Table returns a table; each cell holds one paragraph per newline-separated line.
func Table(rows ...[]string) string {
	var sb strings.Builder
	sb.WriteString("<w:tbl>")
	for _, row := range rows {
		sb.WriteString("<w:tr>")
		for _, cell := range row {
			sb.WriteString("<w:tc>")
			for _, line := range strings.Split(cell, "\n") {
				sb.WriteString(P(line))
			}
			sb.WriteString("</w:tc>")
		}
		sb.WriteString("</w:tr>")
	}
	sb.WriteString("</w:tbl>")
	return sb.String()
}

// Build assembles body elements into .docx bytes.
func Build(body ...string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			panic(err)
		}
	}
	write("[Content_Types].xml", contentTypes)
	write("_rels/.rels", rels)
	write("word/document.xml", docHead+strings.Join(body, "")+docTail)
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Open builds the package and parses it, failing the test on error.
func Open(t testing.TB, body ...string) *docx.Document {
	t.Helper()
	doc, err := docx.Read(Build(body...))
	if err != nil {
		t.Fatalf("docxtest: %v", err)
	}
	return doc
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
