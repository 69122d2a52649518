package jsonrepair

import "testing"

func TestExtractJSON_PlainObject(t *testing.T) {
	got := ExtractJSON(`{"decision":"ready_to_plan"}`)
	want := `{"decision":"ready_to_plan"}`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractJSON_FencedWithLanguageHint(t *testing.T) {
	raw := "```json\n{\"decision\":\"ready_to_plan\"}\n```"
	got := ExtractJSON(raw)
	want := `{"decision":"ready_to_plan"}`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractJSON_SurroundingProse(t *testing.T) {
	raw := "Sure, here's the plan:\n{\"decision\":\"ready_to_plan\"}\nLet me know if you need anything else."
	got := ExtractJSON(raw)
	want := `{"decision":"ready_to_plan"}`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractJSON_NoBracesReturnsTrimmedInput(t *testing.T) {
	raw := "  not json at all  "
	got := ExtractJSON(raw)
	if got != "not json at all" {
		t.Fatalf("got %q", got)
	}
}
