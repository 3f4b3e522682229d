package filler

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/a3tai/mcp-docx-filler/internal/templates"
)

// WriteDetect prints one detection report with its notes.
func WriteDetect(w io.Writer, rep *DetectReport) {
	base := filepath.Base(rep.Path)
	if rep.Err != nil {
		writeFailure(w, base, rep.Err)
		return
	}
	score := 0
	if rep.Result != nil {
		score = rep.Result.Score
	}
	switch {
	case rep.MatchedGlob != "":
		fmt.Fprintf(w, "[DETECT] '%s' -> %s (%s), by file name %q, score=%d\n", base, rep.TemplateID, rep.TemplateName, rep.MatchedGlob, score)
	case rep.Recognized():
		fmt.Fprintf(w, "[DETECT] '%s' -> %s (%s), score=%d\n", base, rep.TemplateID, rep.TemplateName, score)
	default:
		fmt.Fprintf(w, "[DETECT] '%s' -> unrecognized (%s)\n", base, describe(rep))
	}
	if rep.Result != nil {
		for _, n := range rep.Result.Notes {
			fmt.Fprintf(w, "  - %s\n", n)
		}
	}
}

// WriteSuggest prints anchor suggestions followed by a detect skeleton
// ready to paste into a YAML catalog.
func WriteSuggest(w io.Writer, rep *SuggestReport) {
	base := filepath.Base(rep.Path)
	if rep.Err != nil {
		writeFailure(w, base, rep.Err)
		return
	}
	s := rep.Suggestions
	fmt.Fprintf(w, "[SUGGEST] %s\n", base)
	for _, group := range []struct {
		name  string
		lines []string
	}{
		{"top_lines", s.TopLines},
		{"with_colon", s.WithColon},
		{"uppercase", s.Uppercase},
		{"keywords", s.Keywords},
	} {
		fmt.Fprintf(w, "  %s:\n", group.name)
		for _, l := range group.lines {
			fmt.Fprintf(w, "   * %s\n", l)
		}
	}
	fmt.Fprintln(w, "  --- detect skeleton ---")
	writeList(w, "required", s.Required)
	writeList(w, "optional", s.Optional)
}

func writeList(w io.Writer, key string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(w, "  %s: []\n", key)
		return
	}
	fmt.Fprintf(w, "  %s:\n", key)
	for _, it := range items {
		fmt.Fprintf(w, "    - %q\n", it)
	}
}

// WriteRun prints every item of a fill run and a closing summary line.
func WriteRun(w io.Writer, report *RunReport) {
	for _, it := range report.Items {
		base := filepath.Base(it.Path)
		tag := it.TemplateID
		if tag == "" {
			tag = "FILL"
		}
		switch {
		case it.Err != nil && TypeOf(it.Err) == ErrorTypeUnrecognized:
			fmt.Fprintf(w, "[AUTO] '%s' -> skipped (unrecognized)\n", base)
		case it.Err != nil && it.Output == "":
			writeFailure(w, base, it.Err)
			continue
		case report.DryRun:
			fmt.Fprintf(w, "[%s] preview #%d '%s':\n", tag, it.Record, filepath.Base(it.Output))
		default:
			fmt.Fprintf(w, "[%s] fill #%d '%s':\n", tag, it.Record, filepath.Base(it.Output))
		}
		for _, line := range it.Log {
			fmt.Fprintf(w, "  - %s\n", line)
		}
		switch {
		case it.Err != nil && TypeOf(it.Err) != ErrorTypeUnrecognized:
			fmt.Fprintf(w, "  !! %v\n", it.Err)
		case it.Err == nil && !report.DryRun:
			fmt.Fprintf(w, "  -> saved: %s\n", it.Output)
		}
	}
	fmt.Fprintf(w, "run %s: %d item(s), %d failed\n", report.ID, len(report.Items), report.Failed())
}

// WriteTemplates lists the registry in iteration order.
func WriteTemplates(w io.Writer, reg *templates.Registry) {
	for _, spec := range reg.All() {
		settings := templates.ParseSettings(spec.Settings)
		fmt.Fprintf(w, "%s - %s (threshold=%d, rules=%d, mask=%s)\n",
			spec.ID, spec.Name, spec.Detect.Threshold, len(spec.Mapping), settings.FilenameMask)
	}
}

func writeFailure(w io.Writer, base string, err error) {
	if TypeOf(err) == ErrorTypeConversion {
		fmt.Fprintf(w, "[CONVERT-ERROR] %s: %v\n", base, err)
		return
	}
	fmt.Fprintf(w, "[ERROR] %s: %v\n", base, err)
}
