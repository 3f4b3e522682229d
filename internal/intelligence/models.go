package intelligence

// Score sentinels. A disqualified template scores DisqualifiedScore; when
// no template was evaluated at all the result carries NoTemplateScore.
const (
	DisqualifiedScore = -1_000_000
	NoTemplateScore   = -1_000_000_000
)

// Extraction limits for the first-page view of a document.
const (
	TextBudget = 2000 // runes
	MaxTables  = 3
)

// Features are the structural counts taken over the raw extracted lines.
type Features struct {
	Slashes     int `json:"slashes"`
	Underscores int `json:"underscores"`
	Tables      int `json:"tables"`
}

// PageText is the bounded first-page view a document is classified on.
type PageText struct {
	// Lines are the trimmed, non-empty extracted lines in document order.
	Lines []string `json:"lines"`
	// Folded holds Lines normalized and lowercased, index for index.
	Folded []string `json:"-"`
	// Text is the whole extract normalized and lowercased as one string.
	Text     string   `json:"text"`
	Features Features `json:"features"`
}

// DetectionResult is the outcome of classifying one document.
type DetectionResult struct {
	// TemplateID is the selected template, empty when nothing was accepted.
	TemplateID string `json:"template_id,omitempty"`
	// Candidate is the best-scoring template even when it failed its
	// threshold or was disqualified.
	Candidate string   `json:"candidate,omitempty"`
	Score     int      `json:"score"`
	Threshold int      `json:"threshold"`
	Notes     []string `json:"notes"`
}

// Recognized reports whether a template was selected.
func (r *DetectionResult) Recognized() bool {
	return r.TemplateID != ""
}

// Suggestions are anchor hints for authoring a new detect spec.
type Suggestions struct {
	TopLines  []string `json:"top_lines"`
	WithColon []string `json:"with_colon"`
	Uppercase []string `json:"uppercase"`
	Keywords  []string `json:"keywords"`

	// Skeleton phrase lists ready to paste into a catalog.
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}
