package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newLanguagesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the selectable target languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cat, err := loadConfig(flags)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCODE")
			for _, l := range cat.Languages() {
				fmt.Fprintf(w, "%s\t%s\n", l.Name, l.Code)
			}
			return w.Flush()
		},
	}
}
