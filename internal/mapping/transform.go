// Package mapping applies a template's mapping rules to one document for
// one data record.
package mapping

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/ncruces/go-strftime"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Record is one row of input data keyed by column name. Values are
// strings, numbers, time.Time or nil.
type Record map[string]any

// Transform names.
const (
	TransformAsIs            = "AsIs"
	TransformTrim            = "trim"
	TransformUpper           = "UPPER"
	TransformLower           = "lower"
	TransformTitle           = "Title"
	TransformInitialsSurname = "FIO_INITIALS_SURNAME"
	TransformInitials        = "Initials"
	TransformSurnameInitials = "SURNAME_INITIALS"
	TransformDateDDMMYYYY    = "DateDDMMYYYY"
	datePrefix               = "date:"
)

var (
	dateMaskPattern = regexp.MustCompile(`(?i)^date\((.+?)\)$`)
	defaultPattern  = regexp.MustCompile(`^default\("(.*)"\)$`)
	titleCaser      = cases.Title(language.Russian)
)

// day-first layouts tried before falling back to dateparse
var dateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02.01.2006 15:04",
	"02.01.2006 15:04:05",
}

// Stringify renders a record value as text. Nil and the "none"/"nan"
// markers left by spreadsheet tools read as empty.
func Stringify(v any) string {
	var s string
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		s = x
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case time.Time:
		s = x.Format("02.01.2006")
	case bool:
		s = strconv.FormatBool(x)
	default:
		return ""
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "nan":
		return ""
	}
	return s
}

// Transform applies the named value transform. Unknown names leave the
// value unchanged, as do dates that cannot be parsed.
func Transform(value any, name string) string {
	s := Stringify(value)
	name = strings.TrimSpace(name)

	switch name {
	case "", TransformAsIs:
		return s
	case TransformTrim:
		return strings.TrimSpace(s)
	case TransformUpper:
		return strings.ToUpper(s)
	case TransformLower:
		return strings.ToLower(s)
	case TransformTitle:
		return titleCaser.String(s)
	case TransformInitialsSurname, TransformInitials:
		return InitialsSurname(s)
	case TransformSurnameInitials:
		return SurnameInitials(s)
	case TransformDateDDMMYYYY:
		return formatDate(value, s, "%d.%m.%Y")
	}

	if layout, ok := strings.CutPrefix(name, datePrefix); ok {
		return formatDate(value, s, layout)
	}
	if m := dateMaskPattern.FindStringSubmatch(name); m != nil {
		return formatDate(value, s, maskToStrftime(m[1]))
	}
	if m := defaultPattern.FindStringSubmatch(name); m != nil {
		if strings.TrimSpace(s) == "" {
			return m[1]
		}
		return s
	}

	switch strings.ToLower(name) {
	case "upper":
		return strings.ToUpper(s)
	case "initials":
		return SurnameInitials(s)
	}
	return s
}

// InitialsSurname turns "Иванов Иван Иванович" into "И.И. Иванов".
func InitialsSurname(s string) string {
	parts := strings.Fields(s)
	switch len(parts) {
	case 0:
		return s
	case 1:
		return parts[0]
	}
	return initials(parts[1:min(len(parts), 3)]) + " " + parts[0]
}

// SurnameInitials turns "Иванов Иван Иванович" into "Иванов И.И.".
func SurnameInitials(s string) string {
	parts := strings.Fields(s)
	switch len(parts) {
	case 0:
		return s
	case 1:
		return parts[0]
	}
	return parts[0] + " " + initials(parts[1:min(len(parts), 3)])
}

func initials(names []string) string {
	var sb strings.Builder
	for _, n := range names {
		r := []rune(n)
		sb.WriteRune(r[0])
		sb.WriteByte('.')
	}
	return sb.String()
}

// maskToStrftime converts a spreadsheet style mask such as DD.MM.YYYY.
func maskToStrftime(mask string) string {
	r := strings.NewReplacer("YYYY", "%Y", "YY", "%y", "DD", "%d", "MM", "%m")
	return r.Replace(mask)
}

func formatDate(value any, s, layout string) string {
	if t, ok := value.(time.Time); ok {
		return strftime.Format(layout, t)
	}
	if t, ok := ParseDate(s); ok {
		return strftime.Format(layout, t)
	}
	return s
}

// ParseDate reads a date, trying day-first layouts before the generic
// parser.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	t, err := dateparse.ParseLocal(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
