// Package docx reads, edits and writes WordprocessingML (.docx) packages.
//
// A .docx file is a ZIP archive; the body lives in word/document.xml. The
// package keeps every other part byte-for-byte and exposes the body as
// paragraphs and tables that can be rewritten in place.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
)

const documentPart = "word/document.xml"

type part struct {
	header zip.FileHeader
	data   []byte
}

// Document is an in-memory .docx package.
type Document struct {
	parts []part
	main  int
	tree  *etree.Document
	body  *etree.Element
}

// Open reads a .docx file from disk.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Read(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// Read parses a .docx package from memory. The byte slice is not retained,
// so the same source bytes can be parsed again for a fresh copy.
func Read(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	doc := &Document{main: -1}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		if f.Name == documentPart {
			doc.main = len(doc.parts)
		}
		doc.parts = append(doc.parts, part{header: f.FileHeader, data: b})
	}
	if doc.main < 0 {
		return nil, fmt.Errorf("%s not found in archive", documentPart)
	}

	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(doc.parts[doc.main].data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", documentPart, err)
	}
	root := tree.Root()
	if root == nil {
		return nil, fmt.Errorf("%s has no root element", documentPart)
	}
	body := root.SelectElement("w:body")
	if body == nil {
		return nil, fmt.Errorf("%s has no w:body", documentPart)
	}
	doc.tree = tree
	doc.body = body
	return doc, nil
}

// Paragraphs returns the top-level body paragraphs in document order.
// Paragraphs inside tables are reached through Tables.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, el := range d.body.ChildElements() {
		if isW(el, "p") {
			out = append(out, &Paragraph{el: el})
		}
	}
	return out
}

// Tables returns the top-level body tables in document order.
func (d *Document) Tables() []*Table {
	var out []*Table
	for _, el := range d.body.ChildElements() {
		if isW(el, "tbl") {
			out = append(out, &Table{el: el})
		}
	}
	return out
}

// Bytes serializes the package, including any edits made to the body.
func (d *Document) Bytes() ([]byte, error) {
	xmlData, err := d.tree.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", documentPart, err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, p := range d.parts {
		data := p.data
		if i == d.main {
			data = xmlData
		}
		hdr := p.header
		hdr.CompressedSize64 = 0
		hdr.UncompressedSize64 = 0
		hdr.CRC32 = 0
		w, err := zw.CreateHeader(&hdr)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", p.header.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write %s: %w", p.header.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the package to path.
func (d *Document) Save(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func isW(el *etree.Element, tag string) bool {
	return el.Space == "w" && el.Tag == tag
}
