package mapping

import "strings"

// Match evaluates a rule's applicability condition against record.
// Conditions are "Key=V", "Key!=V" and "Key like P" clauses joined by
// " and ", where P may start and/or end with "*". Clauses it cannot parse
// are treated as satisfied.
func Match(expr string, record Record) bool {
	if strings.TrimSpace(expr) == "" {
		return true
	}
	for _, clause := range strings.Split(expr, " and ") {
		clause = strings.TrimSpace(clause)
		switch {
		case strings.Contains(clause, " like "):
			key, pattern, _ := strings.Cut(clause, " like ")
			if !like(strings.TrimSpace(pattern), Stringify(record[strings.TrimSpace(key)])) {
				return false
			}
		case strings.Contains(clause, "!="):
			key, val, _ := strings.Cut(clause, "!=")
			if Stringify(record[strings.TrimSpace(key)]) == strings.TrimSpace(val) {
				return false
			}
		case strings.Contains(clause, "="):
			key, val, _ := strings.Cut(clause, "=")
			if Stringify(record[strings.TrimSpace(key)]) != strings.TrimSpace(val) {
				return false
			}
		}
	}
	return true
}

func like(pattern, value string) bool {
	prefix := strings.HasPrefix(pattern, "*")
	suffix := strings.HasSuffix(pattern, "*")
	switch {
	case prefix && suffix:
		return strings.Contains(value, strings.Trim(pattern, "*"))
	case prefix:
		return strings.HasSuffix(value, pattern[1:])
	case suffix:
		return strings.HasPrefix(value, pattern[:len(pattern)-1])
	}
	return value == pattern
}
