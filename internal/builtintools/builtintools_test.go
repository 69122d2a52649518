package builtintools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcore/orchestrator/internal/tools"
)

func TestRegister_InstallsAllThreeTools(t *testing.T) {
	reg := tools.NewRegistry()
	require.NoError(t, Register(reg))

	for _, name := range []string{"search.rg", "files.read", "files.write"} {
		_, err := reg.Get(name)
		assert.NoError(t, err, "expected %s to be registered", name)
	}
}

func TestFilesReadWrite_RoundTrip(t *testing.T) {
	reg := tools.NewRegistry()
	require.NoError(t, Register(reg))

	writeDef, err := reg.Get("files.write")
	require.NoError(t, err)
	readDef, err := reg.Get("files.read")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "notes.md")
	_, err = writeDef.Handler(context.Background(), map[string]any{"path": path, "content": "hello"})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	result, err := readDef.Handler(context.Background(), map[string]any{"path": path})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"content": "hello"}, result)
}

func TestFilesWrite_PreviewReportsLineCount(t *testing.T) {
	reg := tools.NewRegistry()
	require.NoError(t, Register(reg))

	def, err := reg.Get("files.write")
	require.NoError(t, err)
	require.NotNil(t, def.Preview)

	preview, err := def.Preview(context.Background(), map[string]any{"path": "x.txt", "content": "a\nb\nc"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"path": "x.txt", "line_count": 3}, preview)
}
