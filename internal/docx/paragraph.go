package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// Containers that may wrap runs inside a paragraph.
var runContainers = map[string]bool{
	"hyperlink": true,
	"ins":       true,
	"smartTag":  true,
	"fldSimple": true,
	"customXml": true,
}

// Paragraph is a w:p element.
type Paragraph struct {
	el *etree.Element
}

// Text returns the visible text of the paragraph. Tabs and breaks are
// rendered as '\t' and '\n'.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.runs() {
		writeRunText(&sb, r)
	}
	return sb.String()
}

// RunCount reports how many runs the paragraph carries.
func (p *Paragraph) RunCount() int {
	return len(p.runs())
}

// SetText replaces the paragraph's text. The run properties of the first run
// are kept; every other run is removed.
func (p *Paragraph) SetText(text string) {
	runs := p.runs()
	var first *etree.Element
	if len(runs) > 0 {
		first = runs[0]
		for _, r := range runs[1:] {
			parent := r.Parent()
			parent.RemoveChild(r)
			if parent != p.el && len(parent.ChildElements()) == 0 {
				parent.Parent().RemoveChild(parent)
			}
		}
		for _, c := range first.ChildElements() {
			if !isW(c, "rPr") {
				first.RemoveChild(c)
			}
		}
	} else {
		first = p.el.CreateElement("w:r")
	}
	writeRunContent(first, text)
}

func (p *Paragraph) runs() []*etree.Element {
	var out []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, c := range el.ChildElements() {
			switch {
			case isW(c, "r"):
				out = append(out, c)
			case c.Space == "w" && runContainers[c.Tag]:
				walk(c)
			}
		}
	}
	walk(p.el)
	return out
}

func writeRunText(sb *strings.Builder, r *etree.Element) {
	for _, c := range r.ChildElements() {
		if c.Space != "w" {
			continue
		}
		switch c.Tag {
		case "t":
			sb.WriteString(c.Text())
		case "tab":
			sb.WriteByte('\t')
		case "br", "cr":
			sb.WriteByte('\n')
		case "noBreakHyphen":
			sb.WriteByte('-')
		}
	}
}

func writeRunContent(r *etree.Element, text string) {
	var chunk strings.Builder
	flush := func() {
		if chunk.Len() == 0 {
			return
		}
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(chunk.String())
		chunk.Reset()
	}
	for _, ch := range text {
		switch ch {
		case '\t':
			flush()
			r.CreateElement("w:tab")
		case '\n':
			flush()
			r.CreateElement("w:br")
		default:
			chunk.WriteRune(ch)
		}
	}
	flush()
	if len(r.ChildElements()) == 0 || (len(r.ChildElements()) == 1 && isW(r.ChildElements()[0], "rPr")) {
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
	}
}
