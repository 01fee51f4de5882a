package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-paramconfig/pkg/model"
	"github.com/goliatone/go-paramconfig/pkg/render"
	"github.com/goliatone/go-paramconfig/pkg/renderers/tui"
	"github.com/goliatone/go-paramconfig/pkg/store"
)

func encodeCmd(a *app) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "encode [id=value ...]",
		Short: "Print the query string for a set of field values",
		Long: `Encode applies id=value assignments on top of the defaults (or of --from)
and prints the resulting query string. Collection values are JSON arrays of
rows, for example points='[[1,2],[3,4]]'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, _, err := a.openStore(cmd.Context(), queryOf(from))
			if err != nil {
				return err
			}
			for _, arg := range args {
				if err := assign(st, arg); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), st.SerialiseToURLParams(a.serialiseOptions()...))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start from this query string or URL")
	return cmd
}

func assign(st *store.Store, arg string) error {
	id, raw, ok := strings.Cut(arg, "=")
	if !ok {
		return fmt.Errorf("expected id=value, got %q", arg)
	}
	var value any = raw
	for _, field := range st.Fields() {
		if field.ID == id && field.Kind == model.KindCollection {
			var rows [][]any
			if err := json.Unmarshal([]byte(raw), &rows); err != nil {
				return fmt.Errorf("%s: rows must be a JSON array of arrays: %w", id, err)
			}
			value = rows
		}
	}
	if err := st.SetValue(id, value); err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	return nil
}

func decodeCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "decode <query-or-url>",
		Short: "Show the field values a query string decodes to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, doc, form, err := a.openStore(cmd.Context(), queryOf(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(st.Snapshot())
			}
			body, err := tui.Summary{}.Render(cmd.Context(), doc, render.RenderOptions{
				Title: form.Title,
				Query: st.SerialiseToURLParams(a.serialiseOptions()...),
			})
			if err != nil {
				return err
			}
			_, err = out.Write(body)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the state as JSON")
	return cmd
}

// queryOf accepts a bare query, a query with a leading '?' or a full URL.
func queryOf(arg string) string {
	arg = strings.TrimSpace(arg)
	if strings.Contains(arg, "://") {
		if u, err := url.Parse(arg); err == nil {
			return u.RawQuery
		}
	}
	return strings.TrimPrefix(arg, "?")
}
