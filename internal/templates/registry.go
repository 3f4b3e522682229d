package templates

import (
	"fmt"
	"regexp"
	"strings"
)

// Registry is the immutable set of known templates, in registration order.
type Registry struct {
	specs []*TemplateSpec
	byID  map[string]*TemplateSpec
}

// Builder collects template specs and produces a Registry once.
type Builder struct {
	specs []TemplateSpec
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add queues specs for registration. Order is kept.
func (b *Builder) Add(specs ...TemplateSpec) *Builder {
	b.specs = append(b.specs, specs...)
	return b
}

// Build validates the queued specs and returns the finished registry.
func (b *Builder) Build() (*Registry, error) {
	reg := &Registry{byID: make(map[string]*TemplateSpec, len(b.specs))}
	for i := range b.specs {
		spec, err := prepare(b.specs[i])
		if err != nil {
			return nil, err
		}
		if _, dup := reg.byID[spec.ID]; dup {
			return nil, fmt.Errorf("template %q registered twice", spec.ID)
		}
		reg.byID[spec.ID] = spec
		reg.specs = append(reg.specs, spec)
	}
	return reg, nil
}

// Get looks a template up by id.
func (r *Registry) Get(id string) (*TemplateSpec, bool) {
	spec, ok := r.byID[id]
	return spec, ok
}

// All returns the templates in registration order. Callers must not modify
// the returned specs.
func (r *Registry) All() []*TemplateSpec {
	out := make([]*TemplateSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Len returns the number of templates.
func (r *Registry) Len() int {
	return len(r.specs)
}

// prepare deep-copies a spec so the registry never shares slices with the
// caller, then applies the one-time migrations.
func prepare(in TemplateSpec) (*TemplateSpec, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("template with empty id (name %q)", in.Name)
	}

	spec := &TemplateSpec{
		ID:       id,
		Name:     in.Name,
		Detect:   copyDetect(in.Detect),
		Settings: make(map[string]string, len(in.Settings)),
		Mapping:  make([]MappingRule, len(in.Mapping)),
	}
	for k, v := range in.Settings {
		spec.Settings[k] = v
	}
	for i, rule := range in.Mapping {
		spec.Mapping[i] = CanonicalRule(rule)
	}

	d := &spec.Detect
	d.SoftNegative = mergeUnique(d.SoftNegative, d.Negative)
	d.Negative = nil

	for _, pattern := range d.MustRegex {
		re, err := regexp.Compile("(?im)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("template %s: must_regex %q: %w", id, pattern, err)
		}
		d.compiled = append(d.compiled, re)
	}
	return spec, nil
}

// CanonicalRule trims the free-text parameters and maps the "EOL" right
// marker to an empty one.
func CanonicalRule(r MappingRule) MappingRule {
	r.Field = strings.TrimSpace(r.Field)
	r.Strategy = Strategy(strings.TrimSpace(string(r.Strategy)))
	r.Transform = strings.TrimSpace(r.Transform)
	r.Target = strings.TrimSpace(r.Target)
	if strings.EqualFold(strings.TrimSpace(r.Right), "EOL") {
		r.Right = ""
	}
	return r
}

func copyDetect(d DetectSpec) DetectSpec {
	out := DetectSpec{
		Required:       cloneStrings(d.Required),
		Optional:       cloneStrings(d.Optional),
		Negative:       cloneStrings(d.Negative),
		SoftNegative:   cloneStrings(d.SoftNegative),
		HardNegative:   cloneStrings(d.HardNegative),
		MustAll:        cloneStrings(d.MustAll),
		MustExactLines: cloneStrings(d.MustExactLines),
		MustRegex:      cloneStrings(d.MustRegex),
		Threshold:      d.Threshold,
	}
	for _, grp := range d.AnyOf {
		out.AnyOf = append(out.AnyOf, cloneStrings(grp))
	}
	out.SameLine = append(out.SameLine, d.SameLine...)
	if d.Layout != nil {
		out.Layout = make(map[string]int, len(d.Layout))
		for k, v := range d.Layout {
			out.Layout[k] = v
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func mergeUnique(base, extra []string) []string {
	if len(extra) == 0 {
		return base
	}
	seen := make(map[string]bool, len(base)+len(extra))
	var out []string
	for _, s := range append(cloneStrings(base), extra...) {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
