package intelligence

import (
	"fmt"
	"strings"

	"github.com/a3tai/mcp-docx-filler/internal/templates"
)

// Signal weights.
const (
	weightRequired = 5
	weightOptional = 1
	weightNegative = -6
	weightLayout   = 1
)

// gate is one disqualifying check. It returns the notes explaining a
// failure, or nil when the page passes.
type gate func(d *templates.DetectSpec, page *PageText) []string

// gates run in order; the first failure disqualifies the template.
var gates = []gate{
	hardNegativeGate,
	mustAllGate,
	anyOfGate,
	exactLineGate,
	regexGate,
	sameLineGate,
}

func hardNegativeGate(d *templates.DetectSpec, page *PageText) []string {
	for _, bad := range d.HardNegative {
		if page.Contains(bad) {
			return []string{fmt.Sprintf("-INF HARD_NEG '%s'", bad)}
		}
	}
	return nil
}

func mustAllGate(d *templates.DetectSpec, page *PageText) []string {
	var notes []string
	for _, m := range d.MustAll {
		if !page.Contains(m) {
			notes = append(notes, fmt.Sprintf("0 MUST '%s' missing", m))
		}
	}
	return notes
}

func anyOfGate(d *templates.DetectSpec, page *PageText) []string {
	for _, group := range d.AnyOf {
		found := false
		for _, phrase := range group {
			if page.Contains(phrase) {
				found = true
				break
			}
		}
		if !found {
			return []string{fmt.Sprintf("0 ANY_OF [%s] none present", strings.Join(group, ", "))}
		}
	}
	return nil
}

func exactLineGate(d *templates.DetectSpec, page *PageText) []string {
	for _, line := range d.MustExactLines {
		if !page.HasLine(line) {
			return []string{fmt.Sprintf("0 MUST_LINE '%s' no exact line", line)}
		}
	}
	return nil
}

func regexGate(d *templates.DetectSpec, page *PageText) []string {
	raw := page.Raw()
	for _, re := range d.Patterns() {
		if !re.MatchString(raw) {
			return []string{fmt.Sprintf("0 MUST_REGEX /%s/ no match", strings.TrimPrefix(re.String(), "(?im)"))}
		}
	}
	return nil
}

func sameLineGate(d *templates.DetectSpec, page *PageText) []string {
	for _, pair := range d.SameLine {
		if !page.SameLine(pair[0], pair[1]) {
			return []string{fmt.Sprintf("0 SAME_LINE '%s' + '%s' not on one line", pair[0], pair[1])}
		}
	}
	return nil
}

// Evaluate scores one template against page. A template failing any gate
// gets DisqualifiedScore and the notes of the failing gate only.
func Evaluate(spec *templates.TemplateSpec, page *PageText) (score int, notes []string, disqualified bool) {
	d := &spec.Detect
	for _, g := range gates {
		if failed := g(d, page); len(failed) > 0 {
			return DisqualifiedScore, failed, true
		}
	}

	for _, phrase := range d.Required {
		if page.Contains(phrase) {
			score += weightRequired
			notes = append(notes, fmt.Sprintf("+%d '%s'", weightRequired, phrase))
		} else {
			notes = append(notes, fmt.Sprintf("0 '%s' (required missing)", phrase))
		}
	}
	for _, phrase := range d.Optional {
		if page.Contains(phrase) {
			score += weightOptional
			notes = append(notes, fmt.Sprintf("+%d '%s'", weightOptional, phrase))
		}
	}
	for _, phrase := range d.Negative {
		if page.Contains(phrase) {
			score += weightNegative
			notes = append(notes, fmt.Sprintf("%d NEG '%s'", weightNegative, phrase))
		}
	}

	layoutScore, layoutNotes := scoreLayout(d.Layout, page.Features)
	score += layoutScore
	notes = append(notes, layoutNotes...)

	for _, phrase := range d.SoftNegative {
		if page.Contains(phrase) {
			score += weightNegative
			notes = append(notes, fmt.Sprintf("%d SOFT_NEG '%s'", weightNegative, phrase))
		}
	}
	return score, notes, false
}

func scoreLayout(layout map[string]int, f Features) (int, []string) {
	score := 0
	var notes []string
	if layout[templates.LayoutMustHaveSlash] != 0 && f.Slashes > 0 {
		score += weightLayout
		notes = append(notes, fmt.Sprintf("+%d has '/'", weightLayout))
	}
	if n, ok := layout[templates.LayoutMinTables]; ok && f.Tables >= n {
		score += weightLayout
		notes = append(notes, fmt.Sprintf("+%d tables≥%d", weightLayout, n))
	}
	if n, ok := layout[templates.LayoutMinUnderscores]; ok && f.Underscores >= n {
		score += weightLayout
		notes = append(notes, fmt.Sprintf("+%d underscores≥%d", weightLayout, n))
	}
	return score, notes
}
