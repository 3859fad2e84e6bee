// Package jsonrepair salvages relation arrays from malformed LLM output.
//
// Model responses are supposed to be a bare JSON array, but in practice they
// arrive wrapped in Markdown fences, prefixed with prose, single-quoted, or
// missing the odd comma. Repair walks a fixed ladder of increasingly
// aggressive strategies and only gives up when none of them produce a valid
// JSON array.
package jsonrepair

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/knowledgegraph-backend/internal/logger"
)

// UnrecoverableFormatError is returned once every repair strategy has been
// exhausted. It carries the original text and the last parse error offset so
// the failure can be diagnosed from logs.
type UnrecoverableFormatError struct {
	Raw    string
	Offset int64
	Err    error
}

func (e *UnrecoverableFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unrecoverable response format (last error at offset %d): %v", e.Offset, e.Err)
	}
	return "unrecoverable response format"
}

func (e *UnrecoverableFormatError) Unwrap() error { return e.Err }

var (
	fenceRe    = regexp.MustCompile("```(?:json)?")
	newlineRe  = regexp.MustCompile(`\n\s*`)
	errNoArray = fmt.Errorf("no JSON array found in response")
)

// Repair parses raw model output into a JSON array, applying the repair
// ladder as needed. The result is always a []any; any other top-level JSON
// value is rejected.
func Repair(raw string, log *logger.Logger) ([]any, error) {
	// Strategy 1: strip Markdown code fences and surrounding whitespace.
	s := strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))

	// Strategy 2: isolate the array body between the first '[' and the last
	// ']' (models like to add prose around it), collapsing embedded newlines.
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return nil, &UnrecoverableFormatError{Raw: raw, Err: errNoArray}
	}
	s = s[start : end+1]
	s = newlineRe.ReplaceAllString(s, " ")

	// Strategy 3: normalize single quotes to double quotes. Best effort:
	// content containing legitimate apostrophes will be corrupted here.
	s = strings.ReplaceAll(s, "'", `"`)

	// Strategy 4: strict parse, patching the two most common model mistakes
	// (missing comma between array elements, unquoted object key) once each.
	arr, perr := parseArray(s)
	if perr == nil {
		return arr, nil
	}
	lastErr := perr
	if serr, ok := perr.(*json.SyntaxError); ok {
		if patched, ok := patchSyntax(s, serr, log); ok {
			arr, perr = parseArray(patched)
			if perr == nil {
				return arr, nil
			}
			lastErr = perr
		}
	}

	// Strategy 5: permissive literal parse (trailing commas, Python-style
	// literals, tuple brackets) re-serialized into strict JSON.
	if loose, ok := loosen(s); ok {
		arr, perr = parseArray(loose)
		if perr == nil {
			if log != nil {
				log.Info("Repaired response via permissive literal parse")
			}
			return arr, nil
		}
		lastErr = perr
	}

	var offset int64
	if serr, ok := lastErr.(*json.SyntaxError); ok {
		offset = serr.Offset
	}
	return nil, &UnrecoverableFormatError{Raw: raw, Offset: offset, Err: lastErr}
}

func parseArray(s string) ([]any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("response parsed to %T, expected a JSON array", v)
	}
	return arr, nil
}

// patchSyntax applies a single targeted edit for a known syntax error class
// and reports whether an edit was made.
func patchSyntax(s string, serr *json.SyntaxError, log *logger.Logger) (string, bool) {
	pos := int(serr.Offset) - 1 // index of the offending byte
	if pos < 0 || pos >= len(s) {
		return s, false
	}
	msg := serr.Error()

	switch {
	case strings.Contains(msg, "after array element"):
		// A comma is missing between two elements. Scan backward over
		// whitespace to the close of the previous element and insert the
		// comma right after it.
		i := pos
		for i > 0 && isSpace(s[i-1]) {
			i--
		}
		if i == 0 {
			return s, false
		}
		if log != nil {
			log.Info("Inserting missing comma", "position", i)
		}
		return s[:i] + "," + s[i:], true

	case strings.Contains(msg, "looking for beginning of object key string"):
		// An object key lost its opening quote. Insert one at the error
		// position and retry; this only rescues the simplest cases.
		if log != nil {
			log.Info("Inserting missing quote", "position", pos)
		}
		return s[:pos] + `"` + s[pos:], true
	}
	return s, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// loosen rewrites permissive literal syntax into strict JSON: Python-style
// True/False/None, tuple parentheses, and trailing commas. String contents
// are left untouched.
func loosen(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s))
	changed := false
	inString := false
	escaped := false

	flushWord := func(word string) {
		switch word {
		case "True":
			b.WriteString("true")
			changed = true
		case "False":
			b.WriteString("false")
			changed = true
		case "None":
			b.WriteString("null")
			changed = true
		default:
			b.WriteString(word)
		}
	}

	word := ""
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		if isWordChar(c) {
			word += string(c)
			continue
		}
		if word != "" {
			flushWord(word)
			word = ""
		}
		switch c {
		case '"':
			inString = true
			b.WriteByte(c)
		case '(':
			b.WriteByte('[')
			changed = true
		case ')':
			b.WriteByte(']')
			changed = true
		case ',':
			// Drop trailing commas before a closing bracket.
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == ']' || s[j] == '}' || s[j] == ')') {
				changed = true
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	if word != "" {
		flushWord(word)
	}
	return b.String(), changed
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
