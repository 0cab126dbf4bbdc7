package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DoneMarker is the completion trailer the planner prompts ask the model to
// emit after its JSON reply.
const DoneMarker = "[[DONE]]"

// SchemaValidator checks a decoded reply before it is handed to the caller.
type SchemaValidator[T any] func(T) error

// ExtractJSON pulls the first JSON object out of a model reply and decodes it
// into T. Markdown fences, prose around the object and the DoneMarker are
// ignored. Comments, trailing commas and numbers such as ".5" are repaired
// before decoding. Every failure wraps ErrInvalidOutput so the retry loop
// treats it as retryable.
func ExtractJSON[T any](raw string, validate SchemaValidator[T]) (T, error) {
	var zero, out T

	text := dropFenceLines(strings.ReplaceAll(raw, DoneMarker, ""))
	obj, ok := firstObject(text)
	if !ok {
		return zero, fmt.Errorf("%w: reply contains no JSON object", ErrInvalidOutput)
	}

	if err := json.Unmarshal([]byte(repairJSON(obj)), &out); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if validate != nil {
		if err := validate(out); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %w", ErrInvalidOutput, err)
		}
	}
	return out, nil
}

// dropFenceLines removes ``` and ```json lines and keeps everything else.
func dropFenceLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// stringState follows JSON string literals one byte at a time.
type stringState struct {
	in, escaped bool
}

// quoted advances the state past c and reports whether c belongs to a string
// literal, quotes included.
func (st *stringState) quoted(c byte) bool {
	switch {
	case st.escaped:
		st.escaped = false
		return true
	case st.in && c == '\\':
		st.escaped = true
		return true
	case c == '"':
		st.in = !st.in
		return true
	}
	return st.in
}

// firstObject returns the first balanced {...} in s.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	var st stringState
	depth := 0
	for i := start; i < len(s); i++ {
		c := s[i]
		if st.quoted(c) {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// repairJSON fixes the malformations models commonly produce, outside of
// string literals only: // and /* */ comments are dropped, a leading "." on
// a number gets a zero and commas directly before } or ] are removed.
func repairJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	var st stringState
	for i := 0; i < len(s); i++ {
		c := s[i]
		if st.quoted(c) {
			b.WriteByte(c)
			continue
		}

		switch {
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				i = len(s)
			} else {
				i += end + 3
			}
			continue
		case c == ',' && closesAfter(s, i+1):
			continue
		case c == '.' && i+1 < len(s) && isDigit(s[i+1]) && startsValue(lastSignificant(b.String())):
			b.WriteByte('0')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// closesAfter reports whether the next significant byte from i closes an
// object or array.
func closesAfter(s string, i int) bool {
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
			continue
		case '}', ']':
			return true
		}
		return false
	}
	return false
}

func lastSignificant(s string) byte {
	s = strings.TrimRight(s, " \t\r\n")
	if s == "" {
		return 0
	}
	return s[len(s)-1]
}

// startsValue reports whether a number may begin right after c.
func startsValue(c byte) bool {
	return strings.IndexByte(":,[{-", c) >= 0 || c == 0
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }
