// Package filler runs detection, suggestion and filling over batches of
// input documents.
package filler

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/a3tai/mcp-docx-filler/internal/docx"
	"github.com/a3tai/mcp-docx-filler/internal/intelligence"
	"github.com/a3tai/mcp-docx-filler/internal/templates"
)

// Converter turns an input path into a readable .docx path.
type Converter interface {
	ToDocx(ctx context.Context, path string) (string, error)
}

// Service orchestrates the registry, classifier and converter.
type Service struct {
	registry   *templates.Registry
	classifier *intelligence.TemplateClassifier
	converter  Converter
	validator  *docx.Validator
}

// NewService creates a service. maxFileSize limits input files in bytes;
// zero disables the limit.
func NewService(registry *templates.Registry, converter Converter, maxFileSize int64) *Service {
	return &Service{
		registry:   registry,
		classifier: intelligence.NewTemplateClassifier(registry),
		converter:  converter,
		validator:  docx.NewValidator(maxFileSize),
	}
}

// Registry returns the template registry in use.
func (s *Service) Registry() *templates.Registry {
	return s.registry
}

// SetDebug toggles classifier note logging.
func (s *Service) SetDebug(debug bool) {
	s.classifier.SetDebug(debug)
}

// ResolveInputs returns the documents to process: doc when input is empty,
// otherwise the .docx/.doc files directly inside the input directory or
// matching the input glob, sorted. Word lock files are skipped.
func ResolveInputs(doc, input string) ([]string, error) {
	if input == "" {
		if doc == "" {
			return nil, newError(ErrorTypeInvalidInput, "", "specify a document or an input directory", nil)
		}
		return []string{doc}, nil
	}

	base, pattern := input, "*"
	if info, err := os.Stat(input); err != nil || !info.IsDir() {
		base, pattern = doublestar.SplitPattern(filepath.ToSlash(input))
		base = filepath.FromSlash(base)
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, newError(ErrorTypeInvalidInput, input, "invalid input pattern", nil)
	}

	matches, err := doublestar.Glob(os.DirFS(base), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, newError(ErrorTypeIO, input, "failed to list inputs", err)
	}
	var out []string
	for _, m := range matches {
		name := filepath.Base(m)
		if strings.HasPrefix(name, "~$") || !docx.IsSupported(name) {
			continue
		}
		out = append(out, filepath.Join(base, filepath.FromSlash(m)))
	}
	sort.Strings(out)
	return out, nil
}

// load validates, converts and reads one input file.
func (s *Service) load(ctx context.Context, path string) ([]byte, *docx.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, newError(ErrorTypeIO, path, "cannot access file", err)
	}
	if err := s.validator.CheckFileInfo(path, info); err != nil {
		return nil, nil, newError(ErrorTypeInvalidInput, path, "rejected", err)
	}

	src, err := s.converter.ToDocx(ctx, path)
	if err != nil {
		log.Printf("conversion failed for %s: %v", path, err)
		return nil, nil, newError(ErrorTypeConversion, path, "conversion failed", err)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, nil, newError(ErrorTypeIO, path, "failed to read document", err)
	}
	doc, err := docx.Read(data)
	if err != nil {
		return nil, nil, newError(ErrorTypeInvalidInput, path, "not a readable .docx", err)
	}
	return data, doc, nil
}

// Detect classifies one input file.
func (s *Service) Detect(ctx context.Context, path string) *DetectReport {
	_, doc, err := s.load(ctx, path)
	if err != nil {
		return &DetectReport{Path: path, Err: err}
	}
	return s.detectDocument(ctx, path, doc)
}

// DetectAll classifies every path in order.
func (s *Service) DetectAll(ctx context.Context, paths []string) []*DetectReport {
	out := make([]*DetectReport, 0, len(paths))
	for _, p := range paths {
		out = append(out, s.Detect(ctx, p))
	}
	return out
}

func (s *Service) detectDocument(ctx context.Context, path string, doc *docx.Document) *DetectReport {
	rep := &DetectReport{Path: path}
	res, err := s.classifier.Classify(ctx, doc)
	if err != nil {
		rep.Err = newError(ErrorTypeUnknown, path, "classification failed", err)
		return rep
	}
	rep.Result = res
	if res.Recognized() {
		rep.TemplateID = res.TemplateID
	} else if id, glob := s.matchFilename(path); id != "" {
		rep.TemplateID, rep.MatchedGlob = id, glob
	}
	if spec, ok := s.registry.Get(rep.TemplateID); ok {
		rep.TemplateName = spec.Name
	}
	return rep
}

// matchFilename returns the first template whose filename_globs setting
// matches the base name of path, compared case-insensitively.
func (s *Service) matchFilename(path string) (string, string) {
	name := strings.ToLower(filepath.Base(path))
	for _, spec := range s.registry.All() {
		for _, glob := range templates.ParseSettings(spec.Settings).FilenameGlobs {
			if ok, err := doublestar.Match(strings.ToLower(glob), name); err == nil && ok {
				return spec.ID, glob
			}
		}
	}
	return "", ""
}

// Suggest extracts anchor suggestions from one input file.
func (s *Service) Suggest(ctx context.Context, path string) *SuggestReport {
	_, doc, err := s.load(ctx, path)
	if err != nil {
		return &SuggestReport{Path: path, Err: err}
	}
	return &SuggestReport{Path: path, Suggestions: intelligence.Suggest(intelligence.ExtractFirstPage(doc))}
}

// Validate checks that path can be read as an input document.
func (s *Service) Validate(path string) *docx.ValidationResult {
	return s.validator.ValidateFile(path)
}

func describe(rep *DetectReport) string {
	if rep.Result == nil {
		return "no result"
	}
	return fmt.Sprintf("score=%d threshold=%d candidate=%s", rep.Result.Score, rep.Result.Threshold, rep.Result.Candidate)
}
