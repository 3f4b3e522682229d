package intelligence

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Suggestion limits.
const (
	maxTopLines  = 10
	maxWithColon = 20
	maxUppercase = 10
	maxKeywords  = 20
	minUpperLen  = 4
)

// keywordStems mark lines that usually carry a form's identity.
var keywordStems = []string{
	"студент", "руковод", "кафедр", "группа", "курс",
	"направлен", "специальн", "тема", "практик", "вкр",
	"заявлен", "согласован", "эбс", "каникул", "лист",
}

// Suggest collects anchor candidates from the first page so a template
// author can write a detect spec for an unknown form.
func Suggest(page *PageText) *Suggestions {
	s := &Suggestions{
		TopLines:  []string{},
		WithColon: []string{},
		Uppercase: []string{},
		Keywords:  []string{},
	}
	if page == nil {
		return s
	}

	norm := make([]string, len(page.Lines))
	for i, l := range page.Lines {
		norm[i] = Normalize(l)
	}

	for i := 0; i < len(norm) && i < maxTopLines; i++ {
		s.TopLines = append(s.TopLines, norm[i])
	}

	seen := make(map[string]bool)
	for _, l := range norm {
		if len(s.WithColon) >= maxWithColon {
			break
		}
		if strings.Contains(l, ":") && !seen[l] {
			s.WithColon = append(s.WithColon, l)
			seen[l] = true
		}
	}

	for _, l := range norm {
		if len(s.Uppercase) >= maxUppercase {
			break
		}
		if isUppercaseLine(l) {
			s.Uppercase = append(s.Uppercase, l)
		}
	}

	seen = make(map[string]bool)
	for _, l := range norm {
		if len(s.Keywords) >= maxKeywords {
			break
		}
		if seen[l] || !hasKeyword(l) {
			continue
		}
		seen[l] = true
		s.Keywords = append(s.Keywords, l)
	}

	s.Required = appendUpTo(s.Required, s.Uppercase, 0, 2)
	s.Required = appendUpTo(s.Required, s.WithColon, 0, 3)
	s.Required = appendUpTo(s.Required, s.Keywords, 0, 1)
	s.Optional = appendUpTo(s.Optional, s.WithColon, 3, 6)
	s.Optional = appendUpTo(s.Optional, s.TopLines, 2, 4)
	return s
}

func isUppercaseLine(l string) bool {
	if utf8.RuneCountInString(l) < minUpperLen || l != strings.ToUpper(l) {
		return false
	}
	for _, r := range l {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func hasKeyword(l string) bool {
	low := strings.ToLower(l)
	for _, k := range keywordStems {
		if strings.Contains(low, k) {
			return true
		}
	}
	return false
}

func appendUpTo(dst, src []string, from, to int) []string {
	if from >= len(src) {
		return dst
	}
	return append(dst, src[from:min(to, len(src))]...)
}
