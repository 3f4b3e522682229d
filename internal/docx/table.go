package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// Table is a w:tbl element.
type Table struct {
	el *etree.Element
}

// Row is a w:tr element.
type Row struct {
	el *etree.Element
}

// Cell is a w:tc element.
type Cell struct {
	el *etree.Element
}

// Rows returns the table rows in order.
func (t *Table) Rows() []*Row {
	var out []*Row
	for _, el := range t.el.ChildElements() {
		if isW(el, "tr") {
			out = append(out, &Row{el: el})
		}
	}
	return out
}

// Cell returns the cell at 0-based row r and column c, or nil when out of range.
func (t *Table) Cell(r, c int) *Cell {
	rows := t.Rows()
	if r < 0 || r >= len(rows) {
		return nil
	}
	cells := rows[r].Cells()
	if c < 0 || c >= len(cells) {
		return nil
	}
	return cells[c]
}

// Cells returns the row's cells in order. Horizontally merged cells
// (w:gridSpan) count once.
func (r *Row) Cells() []*Cell {
	var out []*Cell
	for _, el := range r.el.ChildElements() {
		if isW(el, "tc") {
			out = append(out, &Cell{el: el})
		}
	}
	return out
}

// Paragraphs returns the paragraphs directly inside the cell.
func (c *Cell) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, el := range c.el.ChildElements() {
		if isW(el, "p") {
			out = append(out, &Paragraph{el: el})
		}
	}
	return out
}

// Text returns the cell's paragraph texts joined by newlines.
func (c *Cell) Text() string {
	paras := c.Paragraphs()
	texts := make([]string, len(paras))
	for i, p := range paras {
		texts[i] = p.Text()
	}
	return strings.Join(texts, "\n")
}

// SetText collapses the cell to a single paragraph holding text. The first
// paragraph and its first run keep their formatting.
func (c *Cell) SetText(text string) {
	paras := c.Paragraphs()
	if len(paras) == 0 {
		p := &Paragraph{el: c.el.CreateElement("w:p")}
		p.SetText(text)
		return
	}
	for _, p := range paras[1:] {
		c.el.RemoveChild(p.el)
	}
	paras[0].SetText(text)
}
