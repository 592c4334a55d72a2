package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <script>",
	Short: "Check the trees a script builds",
	Long: `Evaluates the script and runs the structural checks on every tree:
cycles, link types, dangling group outputs and orphan nodes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := evaluateFile(cmd, args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		failed := 0
		for _, b := range out.Trees {
			res := b.Validate()
			for _, e := range res.Errors {
				fmt.Fprintf(w, "%s: %v\n", b.Tree.Name, e)
			}
			for _, e := range res.Warnings {
				fmt.Fprintf(w, "%s: %v\n", b.Tree.Name, e)
			}
			if !res.OK() {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("validation failed for %d tree(s)", failed)
		}
		fmt.Fprintf(w, "%d tree(s) valid\n", len(out.Trees))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
