// Package jsonrepair extracts a JSON object from raw LLM output that may be
// wrapped in a markdown code fence or padded with conversational text
// (spec §4.9).
//
// Grounded on original_source/src-tauri/src/agent/notes.rs's
// extract_json/extract_json_span.
package jsonrepair

import "strings"

// ExtractJSON strips a surrounding ``` fence (if present) and then narrows
// the text to the span between its first '{' and last '}'. If no such span
// exists, the trimmed input is returned unchanged — callers still attempt
// to parse it and surface the resulting error themselves.
func ExtractJSON(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		if span, ok := extractSpan(trimmed); ok {
			return span
		}
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "```") {
		return trimmed
	}
	body := lines[1:]
	if len(body) > 0 && strings.HasPrefix(strings.TrimSpace(body[len(body)-1]), "```") {
		body = body[:len(body)-1]
	}

	extracted := strings.TrimSpace(strings.Join(body, "\n"))
	if span, ok := extractSpan(extracted); ok {
		return span
	}
	return extracted
}

// extractSpan returns the substring from the first '{' to the last '}'
// (inclusive), trimmed. Reports false if no valid span exists (missing
// either brace, or the closing brace appears before the opening one).
func extractSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || start >= end {
		return "", false
	}
	return strings.TrimSpace(text[start : end+1]), true
}
