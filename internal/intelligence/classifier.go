package intelligence

import (
	"context"
	"fmt"
	"log"

	"github.com/a3tai/mcp-docx-filler/internal/docx"
	"github.com/a3tai/mcp-docx-filler/internal/templates"
)

// TemplateClassifier picks the registered template a document matches.
type TemplateClassifier struct {
	registry *templates.Registry
	debug    bool
}

// NewTemplateClassifier creates a classifier over the given registry.
func NewTemplateClassifier(registry *templates.Registry) *TemplateClassifier {
	return &TemplateClassifier{registry: registry}
}

// SetDebug enables per-template score logging.
func (tc *TemplateClassifier) SetDebug(debug bool) {
	tc.debug = debug
}

// Classify extracts the first page of doc and classifies it.
func (tc *TemplateClassifier) Classify(ctx context.Context, doc *docx.Document) (*DetectionResult, error) {
	if doc == nil {
		return nil, fmt.Errorf("document cannot be nil")
	}
	return tc.ClassifyPage(ctx, ExtractFirstPage(doc))
}

// ClassifyPage scores every template in registration order and keeps the
// first one reaching the maximum. The winner is selected only when it was
// not disqualified and its score reaches its own threshold.
func (tc *TemplateClassifier) ClassifyPage(ctx context.Context, page *PageText) (*DetectionResult, error) {
	if page == nil {
		page = &PageText{}
	}

	var (
		best      *templates.TemplateSpec
		bestScore = NoTemplateScore
		bestNotes []string
		bestDisq  bool
	)
	for _, spec := range tc.registry.All() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		score, notes, disq := Evaluate(spec, page)
		if tc.debug {
			log.Printf("[DEBUG] template %s scored %d", spec.ID, score)
		}
		if score > bestScore {
			best, bestScore, bestNotes, bestDisq = spec, score, notes, disq
		}
	}

	if best == nil {
		return &DetectionResult{Score: NoTemplateScore, Notes: []string{}}, nil
	}

	result := &DetectionResult{
		Candidate: best.ID,
		Score:     bestScore,
		Threshold: best.Detect.Threshold,
		Notes:     bestNotes,
	}
	if result.Notes == nil {
		result.Notes = []string{}
	}
	if !bestDisq && bestScore >= best.Detect.Threshold {
		result.TemplateID = best.ID
	}
	return result, nil
}
