package jsonextract

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// patterns caches compiled per-field expressions.
var patterns sync.Map // map[string]*regexp.Regexp

func pattern(expr string) *regexp.Regexp {
	if re, ok := patterns.Load(expr); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(expr)
	patterns.Store(expr, re)
	return re
}

func stringField(name string) *regexp.Regexp {
	return pattern(`"` + regexp.QuoteMeta(name) + `"\s*:\s*"([^"]*?)"`)
}

// RescueStrings returns every "name": "value" string found in text, in
// order, with \" unescaped. A value ends at the first quote character.
func RescueStrings(text, name string) []string {
	var out []string
	for _, m := range stringField(name).FindAllStringSubmatch(text, -1) {
		out = append(out, unescape(m[1]))
	}
	return out
}

// RescueString returns the first "name": "value" in text.
func RescueString(text, name string) (string, bool) {
	m := stringField(name).FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return unescape(m[1]), true
}

// RescueNumber returns the first "name": <number> in text. Quoted numbers
// are accepted.
func RescueNumber(text, name string) (float64, bool) {
	m := pattern(`"` + regexp.QuoteMeta(name) + `"\s*:\s*"?(-?\d+(?:\.\d+)?)`).FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var quoted = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)

// RescueStringList returns the quoted strings of the first "name": [ ... ]
// array in text. A missing closing bracket ends the list at the end of
// text.
func RescueStringList(text, name string) ([]string, bool) {
	m := pattern(`"` + regexp.QuoteMeta(name) + `"\s*:\s*\[([^\]]*)\]?`).FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	var out []string
	for _, q := range quoted.FindAllStringSubmatch(m[1], -1) {
		out = append(out, unescape(q[1]))
	}
	return out, true
}

// Objects returns the innermost {...} spans of text in order. Braces
// inside strings are ignored. For a reply like {"items":[{..},{..}]} this
// yields the list items. An unterminated trailing object is returned as
// is so a truncated reply still yields its last item.
func Objects(text string) []string {
	var (
		out      []string
		start    = -1
		inString bool
		escaped  bool
	)
	for i, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{':
			start = i
		case '}':
			if start >= 0 {
				out = append(out, text[start:i+1])
				start = -1
			}
		}
	}
	if start >= 0 {
		out = append(out, text[start:])
	}
	return out
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `\"`, `"`)
}
