package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the mount table",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := load(cmd)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PREFIX\tPOLICY\tTARGET")
		for _, r := range a.srv.Routes() {
			fmt.Fprintf(tw, "%s%s\t%s\t%s\n", strings.Repeat("  ", r.Depth), r.Prefix, r.Policy, r.Target)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}
