package wikipedia

import (
	"regexp"
	"strings"
)

var (
	reComment = regexp.MustCompile(`(?s)<!--.*?-->`)
	reInfobox = regexp.MustCompile(`(?i)\{\{\s*infobox`)
)

// InfoboxField returns the value of parameter name in the first infobox of
// wikitext that has it. Parameter names are compared ignoring case, and
// spaces and underscores are treated alike.
func InfoboxField(wikitext, name string) (string, bool) {
	text := reComment.ReplaceAllString(wikitext, "")
	want := normalizeParam(name)

	for _, loc := range reInfobox.FindAllStringIndex(text, -1) {
		body, ok := templateBody(text[loc[0]:])
		if !ok {
			continue
		}
		for _, param := range SplitParams(body)[1:] {
			key, value, found := strings.Cut(param, "=")
			if !found {
				continue
			}
			if normalizeParam(key) == want {
				return strings.TrimSpace(value), true
			}
		}
	}
	return "", false
}

// templateBody returns the text between the opening "{{" at the start of s
// and its matching "}}".
func templateBody(s string) (string, bool) {
	depth := 0
	for i := 0; i < len(s)-1; i++ {
		switch {
		case s[i] == '{' && s[i+1] == '{':
			depth++
			i++
		case s[i] == '}' && s[i+1] == '}':
			depth--
			i++
			if depth == 0 {
				return s[2 : i-1], true
			}
		}
	}
	return "", false
}

// SplitParams splits a template body on the '|' characters that are not
// nested inside another template or a wiki link. The first element is the
// template name.
func SplitParams(body string) []string {
	parts := make([]string, 0)
	braces, brackets := 0, 0
	start := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			braces++
		case '}':
			if braces > 0 {
				braces--
			}
		case '[':
			brackets++
		case ']':
			if brackets > 0 {
				brackets--
			}
		case '|':
			if braces == 0 && brackets == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, body[start:])
}

func normalizeParam(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "_")
}
