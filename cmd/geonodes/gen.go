package main

import (
	"bytes"
	"os"

	"github.com/chazu/geonodes/internal/logging"
	"github.com/chazu/geonodes/pkg/codegen"
	"github.com/spf13/cobra"
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate typed Go constructors for the catalog's node kinds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		pkg, _ := cmd.Flags().GetString("package")
		trees, _ := cmd.Flags().GetStringSlice("tree")

		kinds, err := parseTreeKinds(trees)
		if err != nil {
			return err
		}
		cat, err := cfg.LoadCatalog()
		if err != nil {
			return err
		}
		res, err := codegen.Generate(cat, codegen.Options{Package: pkg, Trees: kinds})
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := res.Render(&buf); err != nil {
			return err
		}
		if output == "" || output == "-" {
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
			return err
		}
		logging.FromContext(cmd.Context()).Info("wrote constructors", "file", output, "kinds", len(res.Kinds))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(genCmd)

	genCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	genCmd.Flags().StringP("package", "p", "nodes", "Package name of the generated file")
	genCmd.Flags().StringSlice("tree", nil, "Only generate kinds available in these tree kinds")
}
