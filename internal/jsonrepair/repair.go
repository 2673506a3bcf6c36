// Package jsonrepair recovers truncated or malformed structured output
// returned by language-model providers. The primary repair is purely
// structural: it balances quotes and brackets so that output cut off
// mid-stream still parses. It never attempts semantic fixes.
package jsonrepair

import (
	"encoding/json"
	"strings"

	extrepair "github.com/RealAlexandreAI/json-repair"
)

// Repair strips markdown code fences and structurally balances the input.
// One linear scan tracks whether the cursor is inside a quoted string
// (honoring backslash escapes) and keeps a stack of unmatched openers; at
// the end a dangling string is closed, then open brackets are closed in
// reverse order. Repairing already-valid JSON returns it unchanged.
func Repair(s string) string {
	s = StripFences(s)

	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if n := len(stack); n > 0 && stack[n-1] == '{' {
				stack = stack[:n-1]
			}
		case ']':
			if n := len(stack); n > 0 && stack[n-1] == '[' {
				stack = stack[:n-1]
			}
		}
	}

	// A cut right after a backslash would turn the closing quote we append
	// into an escape; drop the dangling backslash first.
	if inString && escaped {
		s = s[:len(s)-1]
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

// StripFences removes a surrounding markdown code fence (``` or ```json),
// the same cleanup the strict-JSON prompt contract asks providers to avoid
// but which they emit anyway.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	} else {
		return strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// SmartUnmarshal tries progressively more lenient strategies to decode
// provider output into v: plain parse, structural Repair, then the
// json-repair library as the most permissive tier.
func SmartUnmarshal(input string, v interface{}) error {
	clean := StripFences(input)
	if err := json.Unmarshal([]byte(clean), v); err == nil {
		return nil
	}

	repaired := Repair(clean)
	if err := json.Unmarshal([]byte(repaired), v); err == nil {
		return nil
	}

	ext, err := extrepair.RepairJSON(clean)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(ext), v)
}
