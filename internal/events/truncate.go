package events

// maxEmbeddedTextChars bounds how much tool output or LLM text an event
// payload embeds directly. Grounded on
// injectDBEventIDAndTruncate/truncateIfNeeded (pkg/events/publisher.go),
// which exists there to respect PostgreSQL's NOTIFY payload limit; here the
// motivation (spec §9 supplement C.3) is that a single oversized tool
// result should not balloon or block a slow subscriber's bounded queue.
const maxEmbeddedTextChars = 8000

// TruncateText returns s unchanged if it fits within maxEmbeddedTextChars,
// otherwise a truncated prefix plus a marker. The second return value
// reports whether truncation occurred, for payloads that carry their own
// "truncated" flag (e.g. ToolExecutionCompletedPayload).
func TruncateText(s string) (string, bool) {
	runes := []rune(s)
	if len(runes) <= maxEmbeddedTextChars {
		return s, false
	}
	return string(runes[:maxEmbeddedTextChars]) + "...(truncated)", true
}
