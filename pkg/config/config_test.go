package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chazu/geonodes/internal/logging"
	"github.com/chazu/geonodes/pkg/engine"
	"github.com/chazu/geonodes/pkg/graph"
	"github.com/chazu/geonodes/pkg/tree"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFull(t *testing.T) {
	src := `
log {
  level  = "debug"
  format = "json"
}

eval {
  timeout        = "250ms"
  range_encoding = "epsilon"
}

catalog = "/etc/geonodes/nodes.yaml"

resource "material" "Steel" {}
resource "object" "Target" {}
`
	cfg, err := Parse([]byte(src), "geonodes.hcl")
	require.NoError(t, err)

	want := &Config{
		Log:     Log{Level: slog.LevelDebug, Format: "json"},
		Eval:    Eval{Timeout: 250 * time.Millisecond, RangeEncoding: tree.RangeEpsilon},
		Catalog: "/etc/geonodes/nodes.yaml",
		Resources: []graph.Resource{
			{Kind: graph.ResourceMaterial, Name: "Steel"},
			{Kind: graph.ResourceObject, Name: "Target"},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	r, ok := cfg.Library().Lookup(graph.ResourceMaterial, "Steel")
	assert.True(t, ok)
	assert.Equal(t, "Steel", r.Name)
}

func TestParseEmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil, "empty.hcl")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, engine.EvalTimeout, cfg.Eval.Timeout)
	assert.Equal(t, tree.RangeAnd, cfg.Eval.RangeEncoding)
}

func TestParseRejects(t *testing.T) {
	tests := map[string]string{
		"bad level":      `log { level = "loud" }`,
		"bad format":     `log { format = "xml" }`,
		"bad timeout":    `eval { timeout = "soon" }`,
		"zero timeout":   `eval { timeout = "0s" }`,
		"bad encoding":   `eval { range_encoding = "fuzzy" }`,
		"bad kind":       `resource "texture" "Wood" {}`,
		"duplicate":      "resource \"material\" \"A\" {}\nresource \"material\" \"A\" {}",
		"unknown block":  `server { port = 1 }`,
		"syntax":         `log {`,
		"missing labels": `resource "material" {}`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src), "bad.hcl")
			assert.Error(t, err)
		})
	}
}

func TestLoadResolvesCatalogPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(`catalog = "nodes.yaml"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nodes.yaml"), cfg.Catalog)

	_, err = cfg.LoadCatalog()
	assert.Error(t, err, "the catalog file does not exist")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	assert.Error(t, err)
}

func TestEngineOptions(t *testing.T) {
	cfg, err := Parse([]byte(`
eval { range_encoding = "epsilon" }
resource "material" "Steel" {}
`), "geonodes.hcl")
	require.NoError(t, err)

	var logs bytes.Buffer
	opts, err := cfg.EngineOptions(cfg.Logger(&logs))
	require.NoError(t, err)

	out, evalErrs, err := engine.NewEngine(opts...).Evaluate(`
(def geo (geometry-input))
(set-material (select geo (span 0 3)) (material "Steel"))
`)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	m := out.Main().Host
	assert.Len(t, m.OfKind("Set Material"), 1)
	assert.Len(t, m.OfKind("Compare"), 1, "epsilon encoding uses one compare")
	assert.Contains(t, logs.String(), "evaluation finished")
}

func TestExampleScripts(t *testing.T) {
	dir := filepath.Join("..", "..", "examples", "scripts")
	cfg, err := Load(filepath.Join(dir, DefaultFile))
	require.NoError(t, err)
	opts, err := cfg.EngineOptions(logging.NewNop())
	require.NoError(t, err)

	scripts, err := filepath.Glob(filepath.Join(dir, "*.zy"))
	require.NoError(t, err)
	require.NotEmpty(t, scripts)

	for _, path := range scripts {
		t.Run(filepath.Base(path), func(t *testing.T) {
			src, err := os.ReadFile(path)
			require.NoError(t, err)
			out, evalErrs, err := engine.NewEngine(opts...).Evaluate(string(src))
			require.NoError(t, err)
			require.Empty(t, evalErrs)
			for _, b := range out.Trees {
				assert.True(t, b.Validate().OK(), "tree %s", b.Tree.Name)
			}
		})
	}
}
