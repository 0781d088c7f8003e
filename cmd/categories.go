package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/SaadHafeez466/qa-app/internal/testcase"
	"github.com/spf13/cobra"
)

// categoriesCmd lists the categories accepted by generate --category
var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cats"},
	Short:   "List the test case categories",
	Long: `List the test case categories in the order they are generated.

Either the full name or the alias can be passed to generate --category.
All categories are selected when none is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Alias\tCategory")
		fmt.Fprintln(w, "-----\t--------")
		for _, c := range testcase.Categories() {
			fmt.Fprintf(w, "%s\t%s\n", c.Alias(), c)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
