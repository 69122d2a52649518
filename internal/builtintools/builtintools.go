// Package builtintools registers a small set of concrete tools — a
// read-only search, a read-only file read, and a modifying file write —
// so the CLI has real tools.Definitions to exercise risk classification
// and approval against (spec §4.4's ReadOnly/Modifying examples name
// exactly these tools).
package builtintools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/agentcore/orchestrator/internal/tools"
)

// Register installs search.rg, files.read, and files.write into reg.
func Register(reg *tools.Registry) error {
	for _, def := range []*tools.Definition{searchRg(), filesRead(), filesWrite()} {
		if err := reg.Register(def); err != nil {
			return fmt.Errorf("builtintools: register %s: %w", def.Name, err)
		}
	}
	return nil
}

func searchRg() *tools.Definition {
	return &tools.Definition{
		Name:             "search.rg",
		Description:      "Search file contents for a pattern using ripgrep.",
		RequiresApproval: false,
		ResultDelivery:   tools.DeliverInline,
		ArgsSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"pattern": map[string]any{"type": "string"},
				"path":    map[string]any{"type": "string"},
			},
			"required": []any{"pattern"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			pattern, _ := args["pattern"].(string)
			if pattern == "" {
				return nil, fmt.Errorf("search.rg: pattern is required")
			}
			path, _ := args["path"].(string)
			if path == "" {
				path = "."
			}
			out, err := exec.CommandContext(ctx, "rg", "--line-number", pattern, path).CombinedOutput()
			if err != nil {
				if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
					return map[string]any{"matches": ""}, nil // rg exits 1 on no matches, not an error
				}
				return nil, fmt.Errorf("search.rg: %w", err)
			}
			return map[string]any{"matches": string(out)}, nil
		},
	}
}

func filesRead() *tools.Definition {
	return &tools.Definition{
		Name:             "files.read",
		Description:      "Read the contents of a file.",
		RequiresApproval: false,
		ResultDelivery:   tools.DeliverInline,
		ArgsSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{"type": "string"},
			},
			"required": []any{"path"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			path, _ := args["path"].(string)
			if path == "" {
				return nil, fmt.Errorf("files.read: path is required")
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("files.read: %w", err)
			}
			return map[string]any{"content": string(raw)}, nil
		},
		Preview: func(ctx context.Context, args map[string]any) (any, error) {
			path, _ := args["path"].(string)
			return map[string]any{"path": path}, nil
		},
	}
}

func filesWrite() *tools.Definition {
	return &tools.Definition{
		Name:             "files.write",
		Description:      "Overwrite a file with new contents, creating it if necessary.",
		RequiresApproval: true,
		ResultDelivery:   tools.DeliverInline,
		ArgsSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":    map[string]any{"type": "string"},
				"content": map[string]any{"type": "string"},
			},
			"required": []any{"path", "content"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			path, _ := args["path"].(string)
			content, _ := args["content"].(string)
			if path == "" {
				return nil, fmt.Errorf("files.write: path is required")
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return nil, fmt.Errorf("files.write: %w", err)
			}
			return map[string]any{"bytes_written": len(content)}, nil
		},
		Preview: func(ctx context.Context, args map[string]any) (any, error) {
			path, _ := args["path"].(string)
			content, _ := args["content"].(string)
			lines := strings.Count(content, "\n") + 1
			return map[string]any{"path": path, "line_count": lines}, nil
		},
	}
}
