// Package config loads the geonodes.hcl configuration file.
//
//	log {
//	  level  = "debug"
//	  format = "json"
//	}
//
//	eval {
//	  timeout        = "2s"
//	  range_encoding = "epsilon"
//	}
//
//	catalog = "nodes.yaml"
//
//	resource "material" "Steel" {}
//	resource "object" "Target" {}
package config

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/chazu/geonodes/internal/logging"
	"github.com/chazu/geonodes/pkg/catalog"
	"github.com/chazu/geonodes/pkg/engine"
	"github.com/chazu/geonodes/pkg/graph"
	"github.com/chazu/geonodes/pkg/tree"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// DefaultFile is the file name the CLI looks for when --config is not set.
const DefaultFile = "geonodes.hcl"

// Config is the decoded configuration with defaults applied.
type Config struct {
	Log       Log
	Eval      Eval
	Catalog   string // empty means the embedded table
	Resources []graph.Resource
}

// Log configures the slog logger.
type Log struct {
	Level  slog.Level
	Format string // "text" or "json"
}

// Eval configures script evaluation.
type Eval struct {
	Timeout       time.Duration
	RangeEncoding tree.RangeEncoding
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log:  Log{Level: slog.LevelInfo, Format: "text"},
		Eval: Eval{Timeout: engine.EvalTimeout, RangeEncoding: tree.RangeAnd},
	}
}

// hclFile is the on-disk shape of the file.
type hclFile struct {
	Log       *hclLog        `hcl:"log,block"`
	Eval      *hclEval       `hcl:"eval,block"`
	Catalog   *string        `hcl:"catalog,optional"`
	Resources []*hclResource `hcl:"resource,block"`
}

type hclLog struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type hclEval struct {
	Timeout       *string `hcl:"timeout,optional"`
	RangeEncoding *string `hcl:"range_encoding,optional"`
}

type hclResource struct {
	Kind string `hcl:"kind,label"`
	Name string `hcl:"name,label"`
}

// Load parses the HCL file at path. A relative catalog path is resolved
// against the file's directory.
func Load(path string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, diags)
	}
	cfg, err := decode(file)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.Catalog != "" && !filepath.IsAbs(cfg.Catalog) {
		cfg.Catalog = filepath.Join(filepath.Dir(path), cfg.Catalog)
	}
	return cfg, nil
}

// Parse decodes configuration source. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config %s: %w", filename, diags)
	}
	return decode(file)
}

func decode(file *hcl.File) (*Config, error) {
	var raw hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, diags
	}

	cfg := Default()
	if l := raw.Log; l != nil {
		if l.Level != nil {
			lvl, err := logging.ParseLevel(*l.Level)
			if err != nil {
				return nil, fmt.Errorf("log: %w", err)
			}
			cfg.Log.Level = lvl
		}
		if l.Format != nil {
			switch *l.Format {
			case "text", "json":
				cfg.Log.Format = *l.Format
			default:
				return nil, fmt.Errorf("log: unknown format %q (want text or json)", *l.Format)
			}
		}
	}

	if e := raw.Eval; e != nil {
		if e.Timeout != nil {
			d, err := time.ParseDuration(*e.Timeout)
			if err != nil {
				return nil, fmt.Errorf("eval: timeout: %w", err)
			}
			if d <= 0 {
				return nil, fmt.Errorf("eval: timeout must be positive, got %s", d)
			}
			cfg.Eval.Timeout = d
		}
		if e.RangeEncoding != nil {
			enc, err := tree.ParseRangeEncoding(*e.RangeEncoding)
			if err != nil {
				return nil, fmt.Errorf("eval: %w", err)
			}
			cfg.Eval.RangeEncoding = enc
		}
	}

	if raw.Catalog != nil {
		cfg.Catalog = *raw.Catalog
	}

	seen := make(map[graph.Resource]bool)
	for _, r := range raw.Resources {
		kind, err := graph.ParseResourceKind(r.Kind)
		if err != nil {
			return nil, fmt.Errorf("resource %q: %w", r.Name, err)
		}
		res := graph.Resource{Kind: kind, Name: r.Name}
		if seen[res] {
			return nil, fmt.Errorf("resource %s declared twice", res)
		}
		seen[res] = true
		cfg.Resources = append(cfg.Resources, res)
	}
	return cfg, nil
}

// Logger builds the configured logger writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return logging.New(c.Log.Level, c.Log.Format, w)
}

// Library returns the declared resources as a lookup library.
func (c *Config) Library() *graph.Library {
	return graph.NewLibrary(c.Resources...)
}

// LoadCatalog returns the configured catalog, or the embedded one.
func (c *Config) LoadCatalog() (*catalog.Catalog, error) {
	if c.Catalog == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(c.Catalog)
}

// EngineOptions returns the engine options the configuration implies.
func (c *Config) EngineOptions(log *slog.Logger) ([]engine.Option, error) {
	cat, err := c.LoadCatalog()
	if err != nil {
		return nil, err
	}
	return []engine.Option{
		engine.WithCatalog(cat),
		engine.WithResources(c.Library()),
		engine.WithRangeEncoding(c.Eval.RangeEncoding),
		engine.WithTimeout(c.Eval.Timeout),
		engine.WithLogger(log),
	}, nil
}
