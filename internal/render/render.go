// Package render rewrites located paragraphs and cells. Writes keep the
// style of the first run and drop the other runs.
package render

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/a3tai/mcp-docx-filler/internal/docx"
	"github.com/a3tai/mcp-docx-filler/internal/locator"
	"github.com/a3tai/mcp-docx-filler/internal/templates"
)

const spaceClass = `[\s\p{Zs}]`

// SetParagraphText replaces the whole paragraph text.
func SetParagraphText(p *docx.Paragraph, text string) {
	p.SetText(text)
}

// WriteCell collapses the cell to one paragraph holding value.
func WriteCell(c *docx.Cell, value string) {
	c.SetText(value)
}

// ApplyLengthPolicy decides what replaces the blank src. Under
// replace_line the value replaces it outright. Otherwise a shorter value is
// padded with underscores to the blank's length and a longer one is kept
// whole.
func ApplyLengthPolicy(src, value, policy string) string {
	if strings.EqualFold(policy, templates.PolicyReplaceLine) {
		return value
	}
	srcLen, valLen := utf8.RuneCountInString(src), utf8.RuneCountInString(value)
	if valLen >= srcLen {
		return value
	}
	return value + strings.Repeat("_", srcLen-valLen)
}

// SegmentText returns text with seg replaced by value under policy. The
// segment's own offsets are used when they still point at it, otherwise
// its first occurrence. A space is added on each side whose neighbour is
// not whitespace.
func SegmentText(text string, seg locator.Segment, value, policy string) (string, bool) {
	start, end := seg.Start, seg.End
	if start < 0 || end > len(text) || start > end || text[start:end] != seg.Text {
		start = strings.Index(text, seg.Text)
		if start < 0 || seg.Text == "" {
			return text, false
		}
		end = start + len(seg.Text)
	}

	var leftSp, rightSp string
	if r, _ := utf8.DecodeLastRuneInString(text[:start]); start > 0 && !unicode.IsSpace(r) {
		leftSp = " "
	}
	if r, _ := utf8.DecodeRuneInString(text[end:]); end < len(text) && !unicode.IsSpace(r) {
		rightSp = " "
	}
	return text[:start] + leftSp + ApplyLengthPolicy(seg.Text, value, policy) + rightSp + text[end:], true
}

// ReplaceSegment rewrites one fillable segment of p.
func ReplaceSegment(p *docx.Paragraph, seg locator.Segment, value, policy string) bool {
	out, ok := SegmentText(p.Text(), seg, value, policy)
	if ok {
		p.SetText(out)
	}
	return ok
}

// AfterColonText keeps everything before the first colon and writes
// ": value" after it. Without a colon the value is appended.
func AfterColonText(text, value string) string {
	if before, _, ok := strings.Cut(text, ":"); ok {
		return before + ": " + value
	}
	return text + " " + value
}

// ReplaceAfterColon rewrites p so value follows its first colon.
func ReplaceAfterColon(p *docx.Paragraph, value string) {
	p.SetText(AfterColonText(p.Text(), value))
}

// AfterTokenText keeps text up to and including the first token, trims
// trailing space and appends one space and value. It reports false when
// token is absent.
func AfterTokenText(text, token, value string) (string, bool) {
	idx := strings.Index(text, token)
	if token == "" || idx < 0 {
		return text, false
	}
	before := strings.TrimRightFunc(text[:idx+len(token)], unicode.IsSpace)
	return before + " " + value, true
}

// ReplaceAfterToken rewrites what follows the first token in p.
func ReplaceAfterToken(p *docx.Paragraph, token, value string) bool {
	out, ok := AfterTokenText(p.Text(), token, value)
	if ok {
		p.SetText(out)
	}
	return ok
}

// BetweenText replaces the first span from left to right, matched case
// insensitively across line breaks, keeping both markers and padding value
// with one space on each side. An empty right replaces everything from left
// to the end of the text.
func BetweenText(text, left, right, value string) (string, bool) {
	lp := markerPattern(left)
	if lp == "" {
		return text, false
	}

	var re *regexp.Regexp
	if rp := markerPattern(right); rp != "" {
		re = regexp.MustCompile(`(?is)(` + lp + `)` + spaceClass + `*.*?` + spaceClass + `*(` + rp + `)`)
	} else {
		re = regexp.MustCompile(`(?is)(` + lp + `).*$`)
	}

	m := re.FindStringSubmatchIndex(text)
	if m == nil {
		return text, false
	}
	l := strings.TrimRightFunc(text[m[2]:m[3]], unicode.IsSpace)
	repl := l + " " + value
	if len(m) > 4 && m[4] >= 0 {
		repl += " " + strings.TrimLeftFunc(text[m[4]:m[5]], unicode.IsSpace)
	}
	return text[:m[0]] + repl + text[m[1]:], true
}

// ReplaceBetween rewrites the span between two markers in p.
func ReplaceBetween(p *docx.Paragraph, left, right, value string) bool {
	out, ok := BetweenText(p.Text(), left, right, value)
	if ok {
		p.SetText(out)
	}
	return ok
}

// markerPattern quotes a marker for a regexp and lets each whitespace run
// in it match any run of spaces, non-breaking ones included.
func markerPattern(marker string) string {
	var sb strings.Builder
	inSpace := false
	for _, r := range marker {
		if unicode.IsSpace(r) {
			if !inSpace {
				sb.WriteString(spaceClass + `+`)
				inSpace = true
			}
			continue
		}
		inSpace = false
		sb.WriteString(regexp.QuoteMeta(string(r)))
	}
	return sb.String()
}
