// Package jsonextract recovers JSON payloads from free-text model replies.
//
// Replies arrive wrapped in prose, in code fences, truncated or with
// stray trailing commentary. Candidate narrows the text to the most
// plausible JSON literal; Decode parses it strictly; the Rescue helpers
// pull individual fields out of text that does not parse at all.
package jsonextract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnparseable is returned when no structure can be recovered.
var ErrUnparseable = errors.New("unparseable model reply")

// ParseError is a display-ready parse failure. It matches ErrUnparseable
// under errors.Is.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return e.Message }

func (e *ParseError) Unwrap() error { return ErrUnparseable }

// Shape is the top-level JSON kind a caller expects.
type Shape int

const (
	// ShapeArray expects a list of objects.
	ShapeArray Shape = iota
	// ShapeObject expects a single object with string keys.
	ShapeObject
)

func (s Shape) String() string {
	if s == ShapeObject {
		return "object"
	}
	return "array"
}

var (
	jsonFence = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")
	anyFence  = regexp.MustCompile("```\\s*([\\s\\S]*?)\\s*```")

	arrayLiteral  = regexp.MustCompile(`\[\s*\{[\s\S]*\}\s*\]`)
	objectLiteral = regexp.MustCompile(`\{\s*"[\s\S]*"\s*:\s*[\s\S]*\}`)

	leadingNoise  = regexp.MustCompile(`^[^\[{]*`)
	trailingNoise = regexp.MustCompile(`[^\]}]*$`)
)

// Candidate narrows text to the substring most likely to be the JSON
// payload. Each step only runs when the previous one found nothing:
//
//  1. the interior of the first ```json fence, then of any ``` fence
//  2. the widest bounded literal of the expected shape
//  3. the whole trimmed text
//
// The result is then stripped of anything before the first [ or { and
// after the last ] or }.
func Candidate(text string, shape Shape) string {
	var c string
	switch {
	case fenced(text, jsonFence, &c), fenced(text, anyFence, &c):
	default:
		lit := arrayLiteral
		if shape == ShapeObject {
			lit = objectLiteral
		}
		if m := lit.FindString(text); m != "" {
			c = m
		} else {
			c = strings.TrimSpace(text)
		}
	}

	c = leadingNoise.ReplaceAllString(c, "")
	c = trailingNoise.ReplaceAllString(c, "")
	return c
}

func fenced(text string, re *regexp.Regexp, out *string) bool {
	m := re.FindStringSubmatch(text)
	if m == nil || m[1] == "" {
		return false
	}
	*out = strings.TrimSpace(m[1])
	return true
}

// Decode extracts the candidate for shape and strictly unmarshals it into v.
// The candidate is returned even on failure so callers can attempt a rescue.
func Decode(text string, shape Shape, v any) (string, error) {
	c := Candidate(text, shape)
	if c == "" {
		return c, fmt.Errorf("%w: no %s literal found", ErrUnparseable, shape)
	}
	if err := json.Unmarshal([]byte(c), v); err != nil {
		return c, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return c, nil
}
