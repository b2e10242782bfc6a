package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/rajesh-ms/learn-lego-programming/internal/checks"
	"github.com/rajesh-ms/learn-lego-programming/internal/utils"
	"github.com/rajesh-ms/learn-lego-programming/internal/validator"

	"github.com/spf13/cobra"
)

var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "List the available checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, c := range checks.NewDefaultRegistry(validator.DefaultRules()).List() {
			fmt.Fprintf(w, "%s\t%s\n", utils.Highlight(c.Name()), c.Description())
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(checksCmd)
}
