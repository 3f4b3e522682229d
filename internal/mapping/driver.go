package mapping

import (
	"fmt"

	"github.com/a3tai/mcp-docx-filler/internal/docx"
	"github.com/a3tai/mcp-docx-filler/internal/locator"
	"github.com/a3tai/mcp-docx-filler/internal/render"
	"github.com/a3tai/mcp-docx-filler/internal/templates"
)

const previewRunes = 10

// Apply runs rules in order against doc for one record and returns the
// trace, one line per rule. A rule that cannot be applied is logged and
// skipped. In dry run the document is left untouched but the trace is the
// same.
func Apply(doc *docx.Document, record Record, rules []templates.MappingRule, settings templates.Settings, dryRun bool) []string {
	a := &applier{
		loc:    locator.New(doc, settings.MinLineLength),
		policy: settings.LengthPolicy,
		dryRun: dryRun,
	}
	trace := make([]string, 0, len(rules))
	for i, rule := range rules {
		trace = append(trace, fmt.Sprintf("[%d] %s", i+1, a.apply(rule, record)))
	}
	return trace
}

type applier struct {
	loc    *locator.Locator
	policy string
	dryRun bool
}

// ResolveValue picks the rule's value out of record, falling back to the
// rule default, and applies its transform.
func ResolveValue(rule templates.MappingRule, record Record) string {
	raw := record[rule.Field]
	if Stringify(raw) == "" {
		raw = rule.Default
	}
	return Transform(raw, rule.Transform)
}

func (a *applier) apply(rule templates.MappingRule, record Record) string {
	method, field := rule.Strategy, rule.Field

	if !method.Known() {
		return fmt.Sprintf("UNKNOWN method '%s' (Field=%s), skipped", method, field)
	}
	if rule.Malformed != "" {
		return fmt.Sprintf("%s (Field=%s): malformed rule, skipped: %s", method, field, rule.Malformed)
	}
	if field == "" {
		return fmt.Sprintf("%s: rule has no field, skipped", method)
	}

	value := ResolveValue(rule, record)
	if !Match(rule.When, record) {
		return fmt.Sprintf("%s (Field=%s): condition '%s' not met, skipped", method, field, rule.When)
	}
	if value == "" {
		return fmt.Sprintf("%s (Field=%s): empty, skipped", method, field)
	}

	occur := rule.OccurOrFirst()
	switch method {
	case templates.StrategyByNumber:
		res, err := a.loc.ByNumber(rule.Number)
		where := fmt.Sprintf("by_number #%d", rule.Number)
		return a.writeSegment(where, field, value, res, err)

	case templates.StrategyAnchorSegment:
		res, err := a.loc.AnchorSegment(rule.Anchor, rule.Segment, occur)
		where := fmt.Sprintf("anchor_segment '%s' seg#%d (#%d)", rule.Anchor, rule.Segment, occur)
		return a.writeSegment(where, field, value, res, err)

	case templates.StrategyAnchorAfterColon:
		res, err := a.loc.AnchorAfterColon(rule.Anchor, occur)
		where := fmt.Sprintf("anchor_after_colon '%s' (#%d)", rule.Anchor, occur)
		if line, done := missing(where, field, res, err); done {
			return line
		}
		if !a.dryRun {
			render.ReplaceAfterColon(res.Paragraph, value)
		}
		return fmt.Sprintf("%s -> '%s'", where, value)

	case templates.StrategyAnchorAfterSlash, templates.StrategyAnchorAfterToken:
		token := rule.Token
		if token == "" || method == templates.StrategyAnchorAfterSlash {
			token = locator.DefaultToken
		}
		res, err := a.loc.AnchorAfterToken(rule.Anchor, token, occur)
		where := fmt.Sprintf("%s '%s' token='%s' (#%d)", method, rule.Anchor, token, occur)
		if line, done := missing(where, field, res, err); done {
			return line
		}
		out, ok := render.AfterTokenText(res.Paragraph.Text(), token, value)
		if !ok {
			return fmt.Sprintf("%s: token not in text (Field=%s)", where, field)
		}
		if !a.dryRun {
			render.SetParagraphText(res.Paragraph, out)
		}
		return fmt.Sprintf("%s -> '%s'", where, value)

	case templates.StrategyAnchorPrev:
		res, err := a.loc.AnchorPrev(rule.Anchor, occur)
		where := fmt.Sprintf("anchor_prev '%s' (#%d)", rule.Anchor, occur)
		if line, done := missing(where, field, res, err); done {
			return line
		}
		if !a.dryRun {
			render.SetParagraphText(res.Paragraph, value)
		}
		return fmt.Sprintf("%s -> '%s'", where, value)

	case templates.StrategyBetweenWords:
		res, err := a.loc.BetweenWords(rule.Anchor, rule.Right, occur)
		where := fmt.Sprintf("between_words '%s'..'%s' (#%d)", rule.Anchor, rightLabel(rule.Right), occur)
		if line, done := missing(where, field, res, err); done {
			return line
		}
		out, ok := render.BetweenText(res.Paragraph.Text(), res.Left, res.Right, value)
		if !ok {
			return fmt.Sprintf("%s: markers not matched in text (Field=%s)", where, field)
		}
		if !a.dryRun {
			render.SetParagraphText(res.Paragraph, out)
		}
		return fmt.Sprintf("%s -> '%s'", where, value)

	case templates.StrategyTableLabel:
		target := rule.Target
		if target == "" {
			target = "right(1)"
		}
		res, err := a.loc.TableLabel(rule.Anchor, target, occur)
		where := fmt.Sprintf("table_label '%s' -> %s", rule.Anchor, target)
		if line, done := missing(where, field, res, err); done {
			return line
		}
		if !a.dryRun {
			render.WriteCell(res.Cell, value)
		}
		return fmt.Sprintf("%s [r%d,c%d] -> '%s'", where, res.Row+1, res.Col+1, value)

	case templates.StrategyCellRef:
		t, r, c := orOne(rule.TableIndex), orOne(rule.Row), orOne(rule.Col)
		res, err := a.loc.CellRef(t, r, c)
		where := fmt.Sprintf("cell_ref T%dR%dC%d", t, r, c)
		if line, done := missing(where, field, res, err); done {
			return line
		}
		if !a.dryRun {
			render.WriteCell(res.Cell, value)
		}
		return fmt.Sprintf("%s -> '%s'", where, value)
	}
	return fmt.Sprintf("UNKNOWN method '%s' (Field=%s), skipped", method, field)
}

func (a *applier) writeSegment(where, field, value string, res *locator.Result, err error) string {
	if line, done := missing(where, field, res, err); done {
		return line
	}
	seg := *res.Segment
	if !a.dryRun {
		render.ReplaceSegment(res.Paragraph, seg, value, a.policy)
	}
	return fmt.Sprintf("%s: '%s...' -> '%s'", where, preview(seg.Text), value)
}

// missing turns a failed lookup into its trace line.
func missing(where, field string, res *locator.Result, err error) (string, bool) {
	if err != nil {
		return fmt.Sprintf("%s: malformed rule, skipped: %v (Field=%s)", where, err, field), true
	}
	if res == nil {
		return fmt.Sprintf("%s: NOT FOUND (Field=%s)", where, field), true
	}
	return "", false
}

func rightLabel(right string) string {
	if right == "" {
		return "EOL"
	}
	return right
}

func orOne(n int) int {
	if n == 0 {
		return 1
	}
	return n
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > previewRunes {
		r = r[:previewRunes]
	}
	return string(r)
}
