package filler

import (
	"time"

	"github.com/a3tai/mcp-docx-filler/internal/intelligence"
)

// Options control a fill run.
type Options struct {
	// OutDir receives the filled documents.
	OutDir string
	// Row selects one 1-based record; zero means every record.
	Row int
	// DryRun computes the traces without writing anything.
	DryRun bool
	// Workers bounds how many documents are processed at once.
	Workers int
}

// DetectReport is the classification outcome for one input file.
type DetectReport struct {
	Path string `json:"path"`
	// TemplateID is the selected template, by content or by file name.
	TemplateID   string                       `json:"template_id,omitempty"`
	TemplateName string                       `json:"template_name,omitempty"`
	MatchedGlob  string                       `json:"matched_glob,omitempty"`
	Result       *intelligence.DetectionResult `json:"result,omitempty"`
	Err          error                        `json:"-"`
}

// Recognized reports whether a template was selected.
func (r *DetectReport) Recognized() bool {
	return r.TemplateID != ""
}

// SuggestReport carries anchor suggestions for one input file.
type SuggestReport struct {
	Path        string                    `json:"path"`
	Suggestions *intelligence.Suggestions `json:"suggestions,omitempty"`
	Err         error                     `json:"-"`
}

// ItemReport is the outcome of filling one document with one record.
type ItemReport struct {
	Path       string   `json:"path"`
	TemplateID string   `json:"template_id,omitempty"`
	Record     int      `json:"record,omitempty"`
	Output     string   `json:"output,omitempty"`
	Log        []string `json:"log"`
	Err        error    `json:"-"`
}

// RunReport collects the items of one fill run in input order.
type RunReport struct {
	ID      string       `json:"id"`
	Started time.Time    `json:"started"`
	DryRun  bool         `json:"dry_run"`
	Items   []ItemReport `json:"items"`
}

// Failed counts the items that carry an error.
func (r *RunReport) Failed() int {
	n := 0
	for _, it := range r.Items {
		if it.Err != nil {
			n++
		}
	}
	return n
}
