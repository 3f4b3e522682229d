package mapping

import (
	"regexp"
	"strings"
)

var (
	maskPlaceholder = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)
	unsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|]`)
)

// RenderMask substitutes {{ key }} placeholders with record values and
// returns a file name safe for any platform, always ending in .docx.
// Unknown keys render as empty strings.
func RenderMask(mask string, record Record) string {
	name := maskPlaceholder.ReplaceAllStringFunc(mask, func(m string) string {
		key := maskPlaceholder.FindStringSubmatch(m)[1]
		return Stringify(record[key])
	})
	name = strings.TrimSpace(unsafeFileChars.ReplaceAllString(name, "_"))
	if !strings.HasSuffix(strings.ToLower(name), ".docx") {
		name += ".docx"
	}
	return name
}
