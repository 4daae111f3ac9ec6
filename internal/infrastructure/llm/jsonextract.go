package llm

import (
	"errors"
	"strings"
)

// ErrNoJSONObject is returned when no JSON object can be located in a
// model reply.
var ErrNoJSONObject = errors.New("no JSON object found in text")

// ExtractJSONObject locates the first JSON object inside free text. Models
// routinely wrap their output in Markdown code fences, so the fallback
// order is: fenced block, then bare braces, then failure.
func ExtractJSONObject(text string) (string, error) {
	if fenced := fencedBlock(text); fenced != "" {
		if obj := balancedObject(fenced); obj != "" {
			return obj, nil
		}
	}

	if obj := balancedObject(text); obj != "" {
		return obj, nil
	}

	return "", ErrNoJSONObject
}

// fencedBlock returns the body of the first ``` fence, with an optional
// language tag stripped.
func fencedBlock(text string) string {
	start := strings.Index(text, "```")
	if start < 0 {
		return ""
	}

	rest := text[start+3:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return ""
	}
	block := rest[:end]

	// Drop a language tag such as "json" on the opening fence line.
	if nl := strings.IndexByte(block, '\n'); nl >= 0 {
		first := strings.TrimSpace(block[:nl])
		if first != "" && !strings.ContainsAny(first, "{}") {
			block = block[nl+1:]
		}
	}

	return block
}

// balancedObject scans for the first '{' and returns the substring up to
// its matching '}', honoring JSON string literals and escapes.
func balancedObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	return ""
}
