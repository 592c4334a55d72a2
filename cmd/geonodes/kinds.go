package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/chazu/geonodes/pkg/catalog"
	"github.com/chazu/geonodes/pkg/graph"
	"github.com/spf13/cobra"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the node kinds in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		trees, _ := cmd.Flags().GetStringSlice("tree")
		kinds, err := parseTreeKinds(trees)
		if err != nil {
			return err
		}
		cat, err := cfg.LoadCatalog()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tID\tINPUTS\tOUTPUTS")
		for _, k := range cat.Kinds() {
			if !anyTree(k, kinds) {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", k.Name, k.ID, socketNames(k.Inputs), socketNames(k.Outputs))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)

	kindsCmd.Flags().StringSlice("tree", nil, "Only list kinds available in these tree kinds (geometry, shader)")
}

func parseTreeKinds(names []string) ([]graph.TreeKind, error) {
	var kinds []graph.TreeKind
	for _, n := range names {
		k, err := graph.ParseTreeKind(n)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func anyTree(k *catalog.Kind, trees []graph.TreeKind) bool {
	if len(trees) == 0 {
		return true
	}
	for _, t := range trees {
		if k.InTree(t) {
			return true
		}
	}
	return false
}

func socketNames(sockets []catalog.Socket) string {
	if len(sockets) == 0 {
		return "-"
	}
	names := make([]string, len(sockets))
	for i, s := range sockets {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}
