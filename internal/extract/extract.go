// Package extract converts raw text-generation responses into structured
// documents, tolerating the response shapes language models actually
// produce: clean JSON, JSON wrapped in a fenced code block, or JSON buried
// inside prose with sloppy quoting.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ErrorKey is the sentinel key present in the stub document returned when
// every parse strategy fails. Callers distinguish degraded output from real
// output by checking for it.
const ErrorKey = "error"

var (
	fencedJSON = regexp.MustCompile("(?s)```(?:json|JSON)\\s*\\n(.*?)```")
	// brace-delimited substring allowing one level of nesting
	braceObject = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
)

// Parse converts a raw model response into a document. It never fails:
// strategies are attempted in order and the first success wins; when all
// fail the result is a minimal stub carrying the ErrorKey sentinel so the
// next pipeline stage keeps working on degraded input.
func Parse(raw string) map[string]any {
	if doc, ok := tryUnmarshal(raw); ok {
		return doc
	}
	if doc, ok := parseFencedBlock(raw); ok {
		return doc
	}
	if doc, ok := parseEmbeddedObject(raw); ok {
		return doc
	}
	return stubDocument(raw)
}

func tryUnmarshal(s string) (map[string]any, bool) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &doc); err != nil {
		return nil, false
	}
	if doc == nil {
		return nil, false
	}
	return doc, true
}

// parseFencedBlock extracts the inner text of a ```json fence and parses it.
func parseFencedBlock(raw string) (map[string]any, bool) {
	m := fencedJSON.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	return tryUnmarshal(m[1])
}

// parseEmbeddedObject scans for brace-delimited substrings and parses the
// first that survives a best-effort repair of common model mistakes.
func parseEmbeddedObject(raw string) (map[string]any, bool) {
	for _, candidate := range braceObject.FindAllString(raw, -1) {
		if doc, ok := tryUnmarshal(candidate); ok {
			return doc, true
		}
		if doc, ok := tryUnmarshal(RepairQuotes(candidate)); ok {
			return doc, true
		}
	}
	return nil, false
}

// RepairQuotes escapes unescaped double quotes that appear inside JSON
// string values, the most common malformation in model output. It is
// deliberately narrow: anything beyond this pattern is out of scope and
// should fail through to the stub document instead.
func RepairQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		switch c {
		case '\\':
			b.WriteByte(c)
			escaped = true
		case '"':
			if !inString {
				inString = true
				b.WriteByte(c)
				continue
			}
			// Closing quote only if what follows looks like JSON structure;
			// otherwise it is an interior quote that needs escaping.
			if isStringTerminator(s[i+1:]) {
				inString = false
				b.WriteByte(c)
			} else {
				b.WriteString(`\"`)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isStringTerminator(rest string) bool {
	trimmed := strings.TrimLeft(rest, " \t\r\n")
	if trimmed == "" {
		return true
	}
	switch trimmed[0] {
	case ',', '}', ']', ':':
		return true
	}
	return false
}

// stubDocument builds the degraded-output document. Its shape matches what
// the Engineer stage expects so a failed parse still materializes a project
// containing a diagnostic file instead of crashing.
func stubDocument(raw string) map[string]any {
	diagnostic := fmt.Sprintf("JSON parsing failed for AI response. Content length: %d", len(raw))
	return map[string]any{
		ErrorKey: diagnostic,
		"files": map[string]any{
			"error.txt": diagnostic,
		},
		"setup_instructions": "AI response could not be parsed properly",
	}
}

// IsDegraded reports whether doc is a stub produced after all parse
// strategies failed.
func IsDegraded(doc map[string]any) bool {
	_, ok := doc[ErrorKey]
	return ok
}
