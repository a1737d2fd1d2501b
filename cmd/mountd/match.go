package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match <path>",
	Short: "Show which mounts a path enters and the path each one delegates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := load(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		hits := a.srv.Trace(args[0])
		if len(hits) == 0 {
			fmt.Fprintf(out, "%s: no mount matches\n", args[0])
			return nil
		}
		for _, h := range hits {
			fmt.Fprintf(out, "%s (%s, %s) strips %q, delegates %q\n", h.Path, h.Policy, h.Target, h.Matched, h.Remaining)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
}
