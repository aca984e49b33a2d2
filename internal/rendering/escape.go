package rendering

import "strings"

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;")

// EscapeAttr escapes a value for a double-quoted attribute. URLs that are already
// entity-encoded are left alone so that re-export keeps their original text.
func EscapeAttr(value string) string {
	if !strings.ContainsAny(value, `&"`) {
		return value
	}
	if !strings.Contains(value, `"`) && looksEscaped(value) {
		return value
	}
	return attrEscaper.Replace(value)
}

var textEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")

// EscapeText escapes folder names, which come from the classifier as plain text.
func EscapeText(text string) string {
	if text == "" {
		return ""
	}
	return textEscaper.Replace(text)
}

// looksEscaped reports whether every '&' in s starts an entity reference.
func looksEscaped(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			continue
		}
		end := strings.IndexByte(s[i:], ';')
		if end < 2 || end > 10 {
			return false
		}
		for _, c := range s[i+1 : i+end] {
			if !(c == '#' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
				return false
			}
		}
		i += end
	}
	return true
}
