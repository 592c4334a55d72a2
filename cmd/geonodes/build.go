package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chazu/geonodes/internal/logging"
	"github.com/chazu/geonodes/pkg/engine"
	"github.com/chazu/geonodes/pkg/host"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var buildCmd = &cobra.Command{
	Use:   "build <script>",
	Short: "Evaluate a script and print the trees it builds",
	Long: `Evaluates the script in a sandbox and prints every tree it built,
starting with the implicit "main" geometry tree.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		name, _ := cmd.Flags().GetString("tree")

		out, err := evaluateFile(cmd, args[0])
		if err != nil {
			return err
		}
		snaps, err := selectTrees(out, name)
		if err != nil {
			return err
		}
		return writeSnapshots(cmd.OutOrStdout(), format, snaps)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringP("format", "f", "text", "Output format: text, json or yaml")
	buildCmd.Flags().StringP("tree", "t", "", "Only print the named tree")
}

// evaluateFile runs the script at path with the configured engine. Script
// errors are printed to stderr one per line and reported as a single error.
func evaluateFile(cmd *cobra.Command, path string) (*engine.Output, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	log := logging.FromContext(cmd.Context()).With("script", path)
	opts, err := cfg.EngineOptions(log)
	if err != nil {
		return nil, err
	}

	out, evalErrs, err := engine.NewEngine(opts...).EvaluateContext(cmd.Context(), string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, e)
		}
		return nil, fmt.Errorf("%s: %d evaluation error(s)", path, len(evalErrs))
	}
	return out, nil
}

func selectTrees(out *engine.Output, name string) ([]host.Snapshot, error) {
	if name != "" {
		b := out.Find(name)
		if b == nil {
			return nil, fmt.Errorf("script built no tree named %q", name)
		}
		return []host.Snapshot{b.Snapshot()}, nil
	}
	snaps := make([]host.Snapshot, 0, len(out.Trees))
	for _, b := range out.Trees {
		snaps = append(snaps, b.Snapshot())
	}
	return snaps, nil
}

func writeSnapshots(w io.Writer, format string, snaps []host.Snapshot) error {
	switch format {
	case "text":
		for i, s := range snaps {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := s.WriteText(w); err != nil {
				return err
			}
		}
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snaps); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}
