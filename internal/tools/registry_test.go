package tools

import (
	"context"
	"testing"
)

func echoDefinition() *Definition {
	return &Definition{
		Name:        "search.rg",
		Description: "search the workspace with ripgrep",
		ArgsSchema: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{"query": map[string]any{"type": "string"}},
			"required":             []any{"query"},
			"additionalProperties": false,
		},
		RequiresApproval: false,
		ResultDelivery:   DeliverInline,
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return map[string]any{"matches": []string{}}, nil
		},
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	def := echoDefinition()
	if err := r.Register(def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := r.Get("search.rg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "search.rg" {
		t.Fatalf("got wrong definition: %+v", got)
	}
}

func TestRegistry_RegisterRejectsDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(echoDefinition()); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(echoDefinition()); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestRegistry_GetUnknownErrors(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("nope"); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestRegistry_ValidateArgsRejectsMissingRequired(t *testing.T) {
	r := NewRegistry()
	def := echoDefinition()
	if err := r.Register(def); err != nil {
		t.Fatal(err)
	}
	if err := r.ValidateArgs(def, map[string]any{}); err == nil {
		t.Fatal("expected validation error for missing required field")
	}
	if err := r.ValidateArgs(def, map[string]any{"query": "TODO"}); err != nil {
		t.Fatalf("expected valid args to pass: %v", err)
	}
}

func TestRegistry_PromptJSONIncludesRegisteredTools(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(echoDefinition()); err != nil {
		t.Fatal(err)
	}
	out, err := r.PromptJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" || out == "[]" {
		t.Fatalf("expected non-empty tool listing, got %q", out)
	}
}
