package templates

import (
	"strconv"
	"strings"
)

// Recognized settings keys. The Russian names are the ones used in the
// organization's workbooks; the English aliases are accepted as well.
const (
	KeyFilenameMask   = "маска_имени_файла"
	KeyMinLineLength  = "минимальная_длина_линии"
	KeyLengthPolicy   = "политика_длины_значения"
	KeyFilenameGlobs  = "filename_globs"
	aliasFilenameMask = "filename_mask"
	aliasMinLine      = "min_line_length"
	aliasLengthPolicy = "length_policy"
)

// Length policies for segment replacement.
const (
	PolicyReplaceLine       = "replace_line"
	PolicyUnderlineKeepLine = "underline_and_keep_line"
)

// Defaults applied when a key is absent or unusable.
const (
	DefaultFilenameMask  = "{{ФИО}}.docx"
	DefaultMinLineLength = 5
	DefaultLengthPolicy  = PolicyUnderlineKeepLine
)

// Settings is the typed view of a template's free-form settings map.
type Settings struct {
	FilenameMask  string   `json:"filename_mask"`
	MinLineLength int      `json:"min_line_length"`
	LengthPolicy  string   `json:"length_policy"`
	FilenameGlobs []string `json:"filename_globs,omitempty"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		FilenameMask:  DefaultFilenameMask,
		MinLineLength: DefaultMinLineLength,
		LengthPolicy:  DefaultLengthPolicy,
	}
}

// ParseSettings reads the recognized keys out of raw, applying defaults.
func ParseSettings(raw map[string]string) Settings {
	s := DefaultSettings()

	if v := lookup(raw, KeyFilenameMask, aliasFilenameMask); v != "" {
		s.FilenameMask = v
	}
	if v := lookup(raw, KeyMinLineLength, aliasMinLine); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.MinLineLength = max(n, 1)
		} else if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.MinLineLength = max(int(f), 1)
		}
	}
	if v := lookup(raw, KeyLengthPolicy, aliasLengthPolicy); v != "" {
		s.LengthPolicy = strings.ToLower(v)
	}
	if v := lookup(raw, KeyFilenameGlobs); v != "" {
		s.FilenameGlobs = SplitList(v)
	}
	return s
}

// Merge overlays the non-empty values of override on top of base.
func Merge(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}
	return out
}

// SplitList splits a comma or semicolon separated list, dropping blanks.
func SplitList(v string) []string {
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' })
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lookup(raw map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
