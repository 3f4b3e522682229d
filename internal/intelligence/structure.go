package intelligence

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/a3tai/mcp-docx-filler/internal/docx"
)

// cellSeparator joins the cells of one table row into a line.
const cellSeparator = " | "

var whitespaceRun = regexp.MustCompile(`[\s\x{00A0}\x{2007}\x{202F}]+`)

// Normalize collapses every whitespace run, non-breaking spaces included,
// into one ASCII space and trims the ends.
func Normalize(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Fold normalizes s and lowercases it for containment checks.
func Fold(s string) string {
	return strings.ToLower(Normalize(s))
}

// ExtractFirstPage builds the first-page view of doc: body paragraphs until
// the text budget is exceeded, then the rows of at most MaxTables tables.
// Each table contributes rows while budget remains but always its first
// non-empty row. The unit that crosses the budget is kept whole.
func ExtractFirstPage(doc *docx.Document) *PageText {
	page := &PageText{}
	if doc == nil {
		return page
	}

	used := 0
	add := func(line string) {
		page.Lines = append(page.Lines, line)
		used += utf8.RuneCountInString(line)
	}

	for _, p := range doc.Paragraphs() {
		if used > TextBudget {
			break
		}
		if t := strings.TrimSpace(p.Text()); t != "" {
			add(t)
		}
	}

	tables := doc.Tables()
	if len(tables) > MaxTables {
		tables = tables[:MaxTables]
	}
	page.Features.Tables = len(tables)
	for _, tbl := range tables {
		for _, row := range tbl.Rows() {
			line := rowLine(row)
			if line == "" {
				continue
			}
			add(line)
			if used > TextBudget {
				break
			}
		}
	}

	raw := strings.Join(page.Lines, "\n")
	page.Features.Slashes = strings.Count(raw, "/")
	page.Features.Underscores = strings.Count(raw, "_")
	page.Text = Fold(raw)
	page.Folded = make([]string, len(page.Lines))
	for i, l := range page.Lines {
		page.Folded[i] = Fold(l)
	}
	return page
}

func rowLine(row *docx.Row) string {
	cells := row.Cells()
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = strings.TrimSpace(c.Text())
	}
	return strings.TrimSpace(strings.Join(parts, cellSeparator))
}

// Contains reports whether the folded page text contains phrase.
func (p *PageText) Contains(phrase string) bool {
	needle := Fold(phrase)
	return needle != "" && strings.Contains(p.Text, needle)
}

// HasLine reports whether some folded line equals phrase exactly.
func (p *PageText) HasLine(phrase string) bool {
	needle := Fold(phrase)
	for _, l := range p.Folded {
		if l == needle {
			return true
		}
	}
	return false
}

// SameLine reports whether a and b occur together on one folded line.
func (p *PageText) SameLine(a, b string) bool {
	an, bn := Fold(a), Fold(b)
	if an == "" || bn == "" {
		return false
	}
	for _, l := range p.Folded {
		if strings.Contains(l, an) && strings.Contains(l, bn) {
			return true
		}
	}
	return false
}

// Raw joins the extracted lines without normalization.
func (p *PageText) Raw() string {
	return strings.Join(p.Lines, "\n")
}
