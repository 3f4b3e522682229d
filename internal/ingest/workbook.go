// Package ingest reads the master workbook: the data records, the mapping
// rules of single-document mode and the settings sheet.
package ingest

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/a3tai/mcp-docx-filler/internal/intelligence"
	"github.com/a3tai/mcp-docx-filler/internal/mapping"
	"github.com/a3tai/mcp-docx-filler/internal/templates"
)

// Sheet names.
const (
	SheetData     = "data"
	SheetMapping  = "mapping"
	SheetSettings = "settings"
)

// RequiredMappingColumns must all be present in the mapping sheet header.
var RequiredMappingColumns = []string{
	"Field", "Method", "Number", "Anchor", "Label", "Segment", "TableIndex",
	"Row", "Col", "Target", "Occur", "Default", "Transform",
}

var (
	kvKeyHeaders   = []string{"key", "ключ", "поле"}
	kvValueHeaders = []string{"value", "значение"}
)

// Workbook is the parsed content of a master workbook.
type Workbook struct {
	Records  []mapping.Record
	Rules    []templates.MappingRule
	Settings map[string]string
}

// LoadWorkbook reads data, mapping and settings from the workbook at path.
// The mapping sheet is mandatory here; settings is optional.
func LoadWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadWorkbook(f)
}

// LoadRecords reads only the data sheet of the workbook at path.
func LoadRecords(path string) ([]mapping.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return readRecords(f)
}

// ReadWorkbook parses an already opened workbook.
func ReadWorkbook(f *excelize.File) (*Workbook, error) {
	records, err := readRecords(f)
	if err != nil {
		return nil, err
	}
	rules, err := readRules(f)
	if err != nil {
		return nil, err
	}
	settings, err := readSettings(f)
	if err != nil {
		return nil, err
	}
	return &Workbook{Records: records, Rules: rules, Settings: settings}, nil
}

// sheetRows returns the rows of the named sheet, matched case
// insensitively, and whether the sheet exists.
func sheetRows(f *excelize.File, name string) ([][]string, bool, error) {
	for _, sheet := range f.GetSheetList() {
		if !strings.EqualFold(sheet, name) {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, true, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		return rows, true, nil
	}
	return nil, false, nil
}

func readRecords(f *excelize.File) ([]mapping.Record, error) {
	rows, ok, err := sheetRows(f, SheetData)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("workbook has no %q sheet", SheetData)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := normalizeHeaders(rows[0])
	if isKeyValue(headers) {
		rec := mapping.Record{}
		for _, row := range rows[1:] {
			key := intelligence.Normalize(cellVal(row, 0))
			if key != "" {
				rec[key] = cellVal(row, 1)
			}
		}
		return []mapping.Record{rec}, nil
	}

	var records []mapping.Record
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := mapping.Record{}
		for i, h := range headers {
			if h != "" {
				rec[h] = cellVal(row, i)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// isKeyValue reports whether the data header describes the two-column
// key/value layout.
func isKeyValue(headers []string) bool {
	var used []string
	for _, h := range headers {
		if h != "" {
			used = append(used, strings.ToLower(h))
		}
	}
	return len(used) == 2 && slices.Contains(kvKeyHeaders, used[0]) && slices.Contains(kvValueHeaders, used[1])
}

func readRules(f *excelize.File) ([]templates.MappingRule, error) {
	rows, ok, err := sheetRows(f, SheetMapping)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("workbook has no %q sheet", SheetMapping)
	}
	var headers []string
	if len(rows) > 0 {
		headers = normalizeHeaders(rows[0])
	}
	col := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, dup := col[h]; !dup && h != "" {
			col[h] = i
		}
	}
	var missing []string
	for _, name := range RequiredMappingColumns {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("mapping sheet is missing columns: %s", strings.Join(missing, ", "))
	}

	var rules []templates.MappingRule
	if len(rows) < 2 {
		return rules, nil
	}
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		get := func(name string) string {
			i, ok := col[name]
			if !ok {
				return ""
			}
			return strings.TrimSpace(cellVal(row, i))
		}
		rules = append(rules, parseRule(get))
	}
	return rules, nil
}

// parseRule builds one canonical rule from a mapping row, resolving the
// column synonyms of older workbooks.
func parseRule(get func(string) string) templates.MappingRule {
	r := templates.MappingRule{
		Field:     get("Field"),
		Strategy:  templates.Strategy(get("Method")),
		Anchor:    get("Anchor"),
		Right:     get("To"),
		Token:     get("Token"),
		Target:    get("Target"),
		Transform: get("Transform"),
		When:      get("When"),
		Default:   get("Default"),
	}
	if r.Anchor == "" {
		r.Anchor = get("From")
	}

	var problems []string
	ints := []struct {
		column string
		dst    *int
	}{
		{"Number", &r.Number},
		{"Segment", &r.Segment},
		{"TableIndex", &r.TableIndex},
		{"Row", &r.Row},
		{"Col", &r.Col},
		{"Occur", &r.Occur},
	}
	for _, it := range ints {
		n, err := parseInt(get(it.column))
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", it.column, err))
			continue
		}
		*it.dst = n
	}
	if r.Occur < 0 {
		problems = append(problems, fmt.Sprintf("Occur: must be positive, got %d", r.Occur))
	}
	r.Malformed = strings.Join(problems, "; ")

	if label := get("Label"); label != "" {
		switch templates.Strategy(strings.TrimSpace(string(r.Strategy))) {
		case templates.StrategyBetweenWords:
			if r.Right == "" {
				r.Right = label
			}
		case templates.StrategyAnchorAfterToken:
			if r.Token == "" {
				r.Token = label
			}
		case templates.StrategyTableLabel:
			if r.Anchor == "" {
				r.Anchor = label
			}
		}
	}
	return templates.CanonicalRule(r)
}

func readSettings(f *excelize.File) (map[string]string, error) {
	rows, ok, err := sheetRows(f, SheetSettings)
	if err != nil || !ok {
		return map[string]string{}, err
	}
	settings := make(map[string]string)
	if len(rows) < 2 {
		return settings, nil
	}
	for _, row := range rows[1:] {
		key := intelligence.Normalize(cellVal(row, 0))
		if key != "" {
			settings[key] = strings.TrimSpace(cellVal(row, 1))
		}
	}
	return settings, nil
}

// parseInt reads an integer cell. Empty cells are zero and whole floats
// such as "3.0" are accepted.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

func normalizeHeaders(row []string) []string {
	out := make([]string, len(row))
	for i, h := range row {
		out[i] = intelligence.Normalize(h)
	}
	return out
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
