// Package templates holds the template catalog: how each known form is
// recognized and how its fields are filled.
package templates

import "regexp"

// Strategy names how a mapping rule finds its write target.
type Strategy string

const (
	StrategyByNumber         Strategy = "by_number"
	StrategyAnchorAfterColon Strategy = "anchor_after_colon"
	StrategyAnchorAfterSlash Strategy = "anchor_after_slash"
	StrategyAnchorAfterToken Strategy = "anchor_after_token"
	StrategyAnchorSegment    Strategy = "anchor_segment"
	StrategyAnchorPrev       Strategy = "anchor_prev"
	StrategyBetweenWords     Strategy = "between_words"
	StrategyTableLabel       Strategy = "table_label"
	StrategyCellRef          Strategy = "cell_ref"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{
	StrategyByNumber,
	StrategyAnchorAfterColon,
	StrategyAnchorAfterSlash,
	StrategyAnchorAfterToken,
	StrategyAnchorSegment,
	StrategyAnchorPrev,
	StrategyBetweenWords,
	StrategyTableLabel,
	StrategyCellRef,
}

// Known reports whether s is one of the supported strategies.
func (s Strategy) Known() bool {
	for _, k := range Strategies {
		if s == k {
			return true
		}
	}
	return false
}

// Layout feature keys understood by DetectSpec.Layout.
const (
	LayoutMustHaveSlash  = "must_have_slash"
	LayoutMinTables      = "min_tables"
	LayoutMinUnderscores = "min_underscores"
)

// DetectSpec is the classification contract of one template.
type DetectSpec struct {
	Required []string `yaml:"required,omitempty" json:"required,omitempty"`
	Optional []string `yaml:"optional,omitempty" json:"optional,omitempty"`

	// Negative is the legacy penalty list. The registry folds it into
	// SoftNegative when the catalog is built.
	Negative     []string `yaml:"negative,omitempty" json:"negative,omitempty"`
	SoftNegative []string `yaml:"negative_soft,omitempty" json:"negative_soft,omitempty"`
	HardNegative []string `yaml:"negative_hard,omitempty" json:"negative_hard,omitempty"`

	MustAll        []string    `yaml:"must_all,omitempty" json:"must_all,omitempty"`
	AnyOf          [][]string  `yaml:"any_of,omitempty" json:"any_of,omitempty"`
	MustExactLines []string    `yaml:"must_exact_lines,omitempty" json:"must_exact_lines,omitempty"`
	MustRegex      []string    `yaml:"must_regex,omitempty" json:"must_regex,omitempty"`
	SameLine       [][2]string `yaml:"require_same_line,omitempty" json:"require_same_line,omitempty"`

	Layout    map[string]int `yaml:"layout,omitempty" json:"layout,omitempty"`
	Threshold int            `yaml:"threshold" json:"threshold"`

	compiled []*regexp.Regexp
}

// Patterns returns the compiled MustRegex patterns, in order. It is only
// populated for specs that came out of a Registry.
func (d *DetectSpec) Patterns() []*regexp.Regexp {
	return d.compiled
}

// MappingRule is one field-filling instruction.
type MappingRule struct {
	Field    string   `yaml:"field" json:"field"`
	Strategy Strategy `yaml:"method" json:"method"`

	// Anchor is the anchor phrase, the table label or the left marker.
	Anchor string `yaml:"anchor,omitempty" json:"anchor,omitempty"`
	// Right is the right marker of between_words; empty means end of line.
	Right string `yaml:"right,omitempty" json:"right,omitempty"`
	// Token is the delimiter of anchor_after_token.
	Token string `yaml:"token,omitempty" json:"token,omitempty"`

	Number     int    `yaml:"number,omitempty" json:"number,omitempty"`
	Segment    int    `yaml:"segment,omitempty" json:"segment,omitempty"`
	Occur      int    `yaml:"occur,omitempty" json:"occur,omitempty"`
	TableIndex int    `yaml:"table,omitempty" json:"table,omitempty"`
	Row        int    `yaml:"row,omitempty" json:"row,omitempty"`
	Col        int    `yaml:"col,omitempty" json:"col,omitempty"`
	Target     string `yaml:"target,omitempty" json:"target,omitempty"`

	Transform string `yaml:"transform,omitempty" json:"transform,omitempty"`
	When      string `yaml:"when,omitempty" json:"when,omitempty"`
	Default   string `yaml:"default,omitempty" json:"default,omitempty"`

	// Malformed describes a parameter that could not be parsed when the rule
	// was loaded. Such rules are reported and skipped, never applied.
	Malformed string `yaml:"-" json:"malformed,omitempty"`
}

// OccurOrFirst returns the 1-based occurrence index, defaulting to 1.
func (r MappingRule) OccurOrFirst() int {
	if r.Occur == 0 {
		return 1
	}
	return r.Occur
}

// TemplateSpec identifies one known document shape.
type TemplateSpec struct {
	ID       string            `yaml:"id" json:"id"`
	Name     string            `yaml:"name" json:"name"`
	Detect   DetectSpec        `yaml:"detect" json:"detect"`
	Settings map[string]string `yaml:"settings,omitempty" json:"settings,omitempty"`
	Mapping  []MappingRule     `yaml:"mapping,omitempty" json:"mapping,omitempty"`
}
