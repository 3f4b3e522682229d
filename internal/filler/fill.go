package filler

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/a3tai/mcp-docx-filler/internal/docx"
	"github.com/a3tai/mcp-docx-filler/internal/ingest"
	"github.com/a3tai/mcp-docx-filler/internal/mapping"
	"github.com/a3tai/mcp-docx-filler/internal/templates"
)

const fallbackOutputName = "output.docx"

type numbered struct {
	index  int
	record mapping.Record
}

// selectRecords applies the 1-based row filter.
func selectRecords(records []mapping.Record, row int) ([]numbered, error) {
	if row < 0 || row > len(records) {
		return nil, newError(ErrorTypeInvalidInput, "", fmt.Sprintf("row %d is out of range 1..%d", row, len(records)), nil)
	}
	if row > 0 {
		return []numbered{{index: row, record: records[row-1]}}, nil
	}
	out := make([]numbered, len(records))
	for i, r := range records {
		out[i] = numbered{index: i + 1, record: r}
	}
	return out, nil
}

// AutoFill classifies every document and fills it with each selected
// record using the recognized template's own mapping and settings.
func (s *Service) AutoFill(ctx context.Context, paths []string, records []mapping.Record, opts Options) (*RunReport, error) {
	recs, err := selectRecords(records, opts.Row)
	if err != nil {
		return nil, err
	}
	claims := newOutputClaims()
	return s.run(ctx, paths, opts, func(ctx context.Context, path string) []ItemReport {
		data, doc, err := s.load(ctx, path)
		if err != nil {
			return []ItemReport{{Path: path, Err: err}}
		}
		det := s.detectDocument(ctx, path, doc)
		if det.Err != nil {
			return []ItemReport{{Path: path, Err: det.Err}}
		}
		if !det.Recognized() {
			return []ItemReport{{
				Path: path,
				Log:  det.Result.Notes,
				Err:  newError(ErrorTypeUnrecognized, path, "no template recognized ("+describe(det)+")", nil),
			}}
		}
		spec, _ := s.registry.Get(det.TemplateID)
		settings := templates.ParseSettings(spec.Settings)
		return s.fillRecords(ctx, path, data, spec.ID, spec.Mapping, settings, recs, opts, claims)
	})
}

// FillWithWorkbook fills every document with the workbook's own mapping
// and settings, skipping classification.
func (s *Service) FillWithWorkbook(ctx context.Context, paths []string, wb *ingest.Workbook, opts Options) (*RunReport, error) {
	if wb == nil {
		return nil, newError(ErrorTypeInvalidInput, "", "workbook is required", nil)
	}
	recs, err := selectRecords(wb.Records, opts.Row)
	if err != nil {
		return nil, err
	}
	settings := templates.ParseSettings(wb.Settings)
	claims := newOutputClaims()
	return s.run(ctx, paths, opts, func(ctx context.Context, path string) []ItemReport {
		data, _, err := s.load(ctx, path)
		if err != nil {
			return []ItemReport{{Path: path, Err: err}}
		}
		return s.fillRecords(ctx, path, data, "", wb.Rules, settings, recs, opts, claims)
	})
}

// run processes paths with at most opts.Workers documents in flight and
// returns their items in input order.
func (s *Service) run(ctx context.Context, paths []string, opts Options, job func(context.Context, string) []ItemReport) (*RunReport, error) {
	report := &RunReport{ID: uuid.NewString(), Started: time.Now(), DryRun: opts.DryRun}
	workers := max(opts.Workers, 1)

	results := make([][]ItemReport, len(paths))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = job(ctx, path)
		}(i, path)
	}
	wg.Wait()

	for _, items := range results {
		report.Items = append(report.Items, items...)
	}
	log.Printf("run %s: %d item(s), %d failed", report.ID, len(report.Items), report.Failed())
	return report, ctx.Err()
}

// fillRecords applies rules to a fresh copy of the source document for
// each record and persists the result unless running dry.
func (s *Service) fillRecords(ctx context.Context, path string, data []byte, templateID string,
	rules []templates.MappingRule, settings templates.Settings, recs []numbered, opts Options, claims *outputClaims,
) []ItemReport {
	items := make([]ItemReport, 0, len(recs))
	for _, rec := range recs {
		item := ItemReport{Path: path, TemplateID: templateID, Record: rec.index}
		if err := ctx.Err(); err != nil {
			item.Err = err
			items = append(items, item)
			continue
		}

		doc, err := docx.Read(data)
		if err != nil {
			item.Err = newError(ErrorTypeInvalidInput, path, "not a readable .docx", err)
			items = append(items, item)
			continue
		}
		item.Log = mapping.Apply(doc, rec.record, rules, settings, opts.DryRun)
		item.Output = claims.claim(filepath.Join(opts.OutDir, outputName(settings.FilenameMask, rec.record)), path)
		if !opts.DryRun {
			if err := persist(doc, item.Output); err != nil {
				item.Err = newError(ErrorTypePersist, path, "failed to save "+item.Output, err)
			}
		}
		items = append(items, item)
	}
	return items
}

// outputClaims hands out distinct output paths within one run.
type outputClaims struct {
	mu   sync.Mutex
	used map[string]bool
}

func newOutputClaims() *outputClaims {
	return &outputClaims{used: make(map[string]bool)}
}

// claim reserves dst for source. When another item of the run already
// holds dst, the source file name is appended to the stem, then a counter.
func (c *outputClaims) claim(dst, source string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ext := filepath.Ext(dst)
	stem := strings.TrimSuffix(dst, ext)
	src := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))

	candidate := dst
	for n := 1; c.used[strings.ToLower(candidate)]; n++ {
		if n == 1 {
			candidate = stem + "_" + src + ext
		} else {
			candidate = fmt.Sprintf("%s_%s_%d%s", stem, src, n, ext)
		}
	}
	c.used[strings.ToLower(candidate)] = true
	return candidate
}

func outputName(mask string, record mapping.Record) string {
	name := mapping.RenderMask(mask, record)
	if name == ".docx" {
		return fallbackOutputName
	}
	return name
}

// persist writes doc to a temporary file next to dst and renames it into
// place.
func persist(doc *docx.Document, dst string) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	data, err := doc.Bytes()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".fill-*.docx")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
