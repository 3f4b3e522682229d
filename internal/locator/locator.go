// Package locator finds the paragraph, segment or table cell a mapping rule
// writes to. Every call rescans the live document.
package locator

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/a3tai/mcp-docx-filler/internal/docx"
	"github.com/a3tai/mcp-docx-filler/internal/intelligence"
)

// ErrMalformed marks a strategy call whose parameters cannot be used.
var ErrMalformed = errors.New("malformed locate parameters")

// DefaultToken is the delimiter used by after-token lookups.
const DefaultToken = "/"

// maxSegmentTables caps how many tables by-number numbering walks.
const maxSegmentTables = 3

// placeholderTokens are label patterns filled like an underscore blank.
var placeholderTokens = []*regexp.Regexp{
	regexp.MustCompile(`(?i)И\.?\s*О\.?\s*Фамилия`),
}

// Segment is a fillable region of a paragraph's text. Start and End are
// byte offsets into the text the segment was found in.
type Segment struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Result identifies a write target. Paragraph targets set Paragraph; cell
// targets set Table, Cell, Row and Col (0-based).
type Result struct {
	Paragraph *docx.Paragraph
	Segment   *Segment
	Left      string
	Right     string

	Table *docx.Table
	Cell  *docx.Cell
	Row   int
	Col   int
}

// Locator resolves strategies against one document.
type Locator struct {
	doc        *docx.Document
	minLineLen int
	underline  *regexp.Regexp
}

// New creates a locator. Underscore runs shorter than minLineLen are not
// fillable; values below 1 are raised to 1.
func New(doc *docx.Document, minLineLen int) *Locator {
	minLineLen = max(minLineLen, 1)
	return &Locator{
		doc:        doc,
		minLineLen: minLineLen,
		underline:  regexp.MustCompile(fmt.Sprintf(`_{%d,}`, minLineLen)),
	}
}

// Segments returns the fillable segments of text ordered by position.
// Overlapping matches keep the leftmost one.
func (l *Locator) Segments(text string) []Segment {
	var found []Segment
	collect := func(re *regexp.Regexp) {
		for _, m := range re.FindAllStringIndex(text, -1) {
			found = append(found, Segment{Text: text[m[0]:m[1]], Start: m[0], End: m[1]})
		}
	}
	collect(l.underline)
	for _, re := range placeholderTokens {
		collect(re)
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].Start < found[j].Start })

	out := found[:0]
	end := -1
	for _, s := range found {
		if s.Start < end {
			continue
		}
		out = append(out, s)
		end = s.End
	}
	return out
}

// ByNumber returns the number-th fillable segment of the document, counting
// body paragraphs first and then the cell paragraphs of the first tables in
// row-major order.
func (l *Locator) ByNumber(number int) (*Result, error) {
	if number < 1 {
		return nil, fmt.Errorf("%w: segment number must be positive, got %d", ErrMalformed, number)
	}
	count := 0
	for _, p := range l.numberedParagraphs() {
		text := p.Text()
		for _, seg := range l.Segments(text) {
			count++
			if count == number {
				return &Result{Paragraph: p, Segment: &seg}, nil
			}
		}
	}
	return nil, nil
}

func (l *Locator) numberedParagraphs() []*docx.Paragraph {
	paras := l.doc.Paragraphs()
	tables := l.doc.Tables()
	if len(tables) > maxSegmentTables {
		tables = tables[:maxSegmentTables]
	}
	for _, tbl := range tables {
		for _, row := range tbl.Rows() {
			for _, cell := range row.Cells() {
				paras = append(paras, cell.Paragraphs()...)
			}
		}
	}
	return paras
}

// AnchorAfterColon returns the occur-th paragraph containing anchor and a
// colon.
func (l *Locator) AnchorAfterColon(anchor string, occur int) (*Result, error) {
	return l.AnchorAfterToken(anchor, ":", occur)
}

// AnchorAfterToken returns the occur-th paragraph containing both anchor
// and token. An empty token means DefaultToken.
func (l *Locator) AnchorAfterToken(anchor, token string, occur int) (*Result, error) {
	if token == "" {
		token = DefaultToken
	}
	idx, paras, err := l.findAnchor(anchor, occur, func(p *docx.Paragraph) bool {
		return strings.Contains(p.Text(), token)
	})
	if err != nil || idx < 0 {
		return nil, err
	}
	return &Result{Paragraph: paras[idx]}, nil
}

// AnchorSegment returns a fillable segment near the occur-th paragraph
// containing anchor. A positive segment index counts segments in that
// paragraph; a negative one counts them in the paragraph before it.
func (l *Locator) AnchorSegment(anchor string, segment, occur int) (*Result, error) {
	idx, paras, err := l.findAnchor(anchor, occur, nil)
	if err != nil || idx < 0 {
		return nil, err
	}

	target := paras[idx]
	if segment < 0 && idx > 0 {
		target = paras[idx-1]
	}
	k := segment
	if k < 0 {
		k = -k
	}
	if k == 0 {
		k = 1
	}
	segs := l.Segments(target.Text())
	if k > len(segs) {
		return nil, nil
	}
	seg := segs[k-1]
	return &Result{Paragraph: target, Segment: &seg}, nil
}

// AnchorPrev returns the paragraph right before the occur-th paragraph
// containing anchor. An anchor in the first paragraph has no target.
func (l *Locator) AnchorPrev(anchor string, occur int) (*Result, error) {
	idx, paras, err := l.findAnchor(anchor, occur, nil)
	if err != nil || idx <= 0 {
		return nil, err
	}
	return &Result{Paragraph: paras[idx-1]}, nil
}

// BetweenWords returns the occur-th paragraph containing the left marker
// and, when right is not empty, the right marker too.
func (l *Locator) BetweenWords(left, right string, occur int) (*Result, error) {
	rq := intelligence.Fold(right)
	idx, paras, err := l.findAnchor(left, occur, func(p *docx.Paragraph) bool {
		return rq == "" || strings.Contains(intelligence.Fold(p.Text()), rq)
	})
	if err != nil || idx < 0 {
		return nil, err
	}
	return &Result{Paragraph: paras[idx], Left: left, Right: right}, nil
}

// findAnchor returns the index of the occur-th body paragraph whose folded
// text contains anchor and which satisfies extra, or -1.
func (l *Locator) findAnchor(anchor string, occur int, extra func(*docx.Paragraph) bool) (int, []*docx.Paragraph, error) {
	a := intelligence.Fold(anchor)
	if a == "" {
		return -1, nil, fmt.Errorf("%w: anchor is empty", ErrMalformed)
	}
	occur, err := occurrence(occur)
	if err != nil {
		return -1, nil, err
	}

	paras := l.doc.Paragraphs()
	count := 0
	for i, p := range paras {
		if !strings.Contains(intelligence.Fold(p.Text()), a) {
			continue
		}
		if extra != nil && !extra(p) {
			continue
		}
		count++
		if count == occur {
			return i, paras, nil
		}
	}
	return -1, paras, nil
}

func occurrence(occur int) (int, error) {
	if occur < 0 {
		return 0, fmt.Errorf("%w: occurrence must be positive, got %d", ErrMalformed, occur)
	}
	if occur == 0 {
		return 1, nil
	}
	return occur, nil
}
