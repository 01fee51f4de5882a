package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-paramconfig/pkg/codec"
)

func keysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the verbose and compact query keys of every field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := a.loadForm(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tCOMPACT")
			for _, field := range form.Fields {
				key := codec.QueryKey(field.ID, codec.Compact)
				if !field.IsSerialisable() {
					key = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", field.ID, field.Kind, key)
			}
			return tw.Flush()
		},
	}
}
