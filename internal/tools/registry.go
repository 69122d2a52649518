package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Handler executes a tool call. args has already passed ValidateArgs.
type Handler func(ctx context.Context, args map[string]any) (result any, err error)

// PreviewFunc computes a structured, non-mutating preview of what a tool
// call would do, for display alongside an approval request. Optional — a
// Definition with a nil Preview simply has no preview (spec §4.3).
type PreviewFunc func(ctx context.Context, args map[string]any) (preview any, err error)

// ResultDelivery hints how a tool's result should be surfaced once large:
// inline in the event/response, or by reference (e.g. a file path) for the
// caller to fetch separately.
type ResultDelivery string

const (
	DeliverInline ResultDelivery = "inline"
	DeliverByRef  ResultDelivery = "by_reference"
)

// Definition is a registered tool: metadata plus its handler and optional
// preview (spec §4.3). ArgsSchema and ResultSchema are raw JSON Schema
// documents (map[string]any, as decoded from JSON). ArgsSchema is compiled
// lazily on first validation and cached on the Definition; ResultSchema is
// carried as metadata only and is never compiled or checked.
type Definition struct {
	Name              string
	Description       string
	ArgsSchema        map[string]any
	ResultSchema      map[string]any
	RequiresApproval  bool
	ResultDelivery    ResultDelivery
	Handler           Handler
	Preview           PreviewFunc

	compiledOnce sync.Once
	compiledArgs *jsonschema.Schema
	compileErr   error
}

// compileArgsSchema compiles ArgsSchema exactly once per Definition,
// regardless of how many calls validate against it (spec §4.3:
// "compiles the schema once per call" governs entry into the pool of
// compilations available to a call, not a recompile per invocation — we
// cache the compiled form here since the schema document never changes
// after registration).
func (d *Definition) compileArgsSchema() (*jsonschema.Schema, error) {
	d.compiledOnce.Do(func() {
		if d.ArgsSchema == nil {
			return
		}
		raw, err := json.Marshal(d.ArgsSchema)
		if err != nil {
			d.compileErr = fmt.Errorf("marshal args schema for %s: %w", d.Name, err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(d.Name+"#args", mustDecodeSchema(raw)); err != nil {
			d.compileErr = fmt.Errorf("add schema resource for %s: %w", d.Name, err)
			return
		}
		schema, err := compiler.Compile(d.Name + "#args")
		if err != nil {
			d.compileErr = fmt.Errorf("compile args schema for %s: %w", d.Name, err)
			return
		}
		d.compiledArgs = schema
	})
	return d.compiledArgs, d.compileErr
}

func mustDecodeSchema(raw []byte) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		panic(fmt.Sprintf("tools: invalid schema document: %v", err))
	}
	return v
}

// ErrToolNotFound is returned by Get when no tool is registered under the
// requested name.
var ErrToolNotFound = fmt.Errorf("tool not found")

// ErrDuplicateTool is returned by Register when a name is already taken.
var ErrDuplicateTool = fmt.Errorf("duplicate tool name")

// ValidationError wraps a JSON Schema validation failure with the tool name
// that rejected the args, satisfying spec §4.3's "failure returns a
// structured error".
type ValidationError struct {
	ToolName string
	Cause    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tool %s: invalid arguments: %v", e.ToolName, e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// Registry holds the set of tools available to a turn (spec §4.3).
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Definition)}
}

// Register adds a tool definition. Rejects duplicate names.
func (r *Registry) Register(def *Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, def.Name)
	}
	r.tools[def.Name] = def
	return nil
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return def, nil
}

// ValidateArgs compiles def's args schema (once, cached) and validates args
// against it.
func (r *Registry) ValidateArgs(def *Definition, args map[string]any) error {
	schema, err := def.compileArgsSchema()
	if err != nil {
		return fmt.Errorf("tool %s: %w", def.Name, err)
	}
	if schema == nil {
		return nil
	}
	if err := schema.Validate(toRawAny(args)); err != nil {
		return &ValidationError{ToolName: def.Name, Cause: err}
	}
	return nil
}

func toRawAny(args map[string]any) any {
	// jsonschema/v5 validates against the decoded-JSON shape; round-trip
	// through json so numeric types match what a real tool call JSON body
	// would decode to.
	raw, err := json.Marshal(args)
	if err != nil {
		return args
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return args
	}
	return v
}

// ListMetadata returns every registered tool's metadata, for internal
// enumeration (e.g. a `tools list` CLI command).
func (r *Registry) ListMetadata() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, 0, len(r.tools))
	for _, def := range r.tools {
		out = append(out, def)
	}
	return out
}

// promptToolEntry is the shape embedded in the planning prompt's tool
// listing (spec §4.3 prompt_json, §4.8).
type promptToolEntry struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	ArgsSchema  map[string]any `json:"args_schema,omitempty"`
}

// PromptJSON serializes every registered tool into the JSON array embedded
// in the planning prompt's {tool_descriptions} placeholder.
func (r *Registry) PromptJSON() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]promptToolEntry, 0, len(r.tools))
	for _, def := range r.tools {
		entries = append(entries, promptToolEntry{
			Name:        def.Name,
			Description: def.Description,
			ArgsSchema:  def.ArgsSchema,
		})
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshal tool descriptions: %w", err)
	}
	return string(raw), nil
}
