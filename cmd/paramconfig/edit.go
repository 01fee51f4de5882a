package main

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-paramconfig/pkg/clipboard"
	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/model"
	"github.com/goliatone/go-paramconfig/pkg/renderers/tui"
)

// shareButtonID is the extra button mounted when --copy is set.
const shareButtonID = "paramconfig-share"

func editCmd(a *app) *cobra.Command {
	var (
		from      string
		copyLink  bool
		forceCopy bool
	)

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the parameters interactively and print the share link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, doc, _, err := a.openStore(cmd.Context(), queryOf(from))
			if err != nil {
				return err
			}
			base, err := a.shareBase()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if copyLink {
				container, err := doc.Container(rootID)
				if err != nil {
					return err
				}
				button, err := container.Mount(control.Descriptor{
					ID:    shareButtonID,
					Kind:  model.KindButton,
					Role:  control.RoleField,
					Label: "Copy share link",
				})
				if err != nil {
					return err
				}
				board := clipboard.NewTerminal(out, clipboard.WithForce(forceCopy))
				if err := st.AddCopyToClipboardHandler(button, board, base, a.serialiseOptions()...); err != nil {
					return err
				}
			}

			editor, err := tui.New(doc,
				tui.WithPromptDriver(tui.NewSurveyDriver(out)),
				tui.WithLogger(a.logger),
				tui.WithStatus(func() string {
					if q := st.SerialiseToURLParams(a.serialiseOptions()...); q != "" {
						return "?" + q
					}
					return "(defaults)"
				}),
			)
			if err != nil {
				return err
			}
			if err := editor.Run(cmd.Context()); err != nil && !errors.Is(err, tui.ErrAborted) {
				return err
			}
			fmt.Fprintln(out, st.ShareURL(base, a.serialiseOptions()...))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start from this query string or URL")
	cmd.Flags().BoolVar(&copyLink, "copy", false, "add a button that copies the share link to the clipboard (OSC 52)")
	cmd.Flags().BoolVar(&forceCopy, "force-copy", false, "emit OSC 52 even when stdout is not a terminal")
	return cmd
}

func (a *app) shareBase() (*url.URL, error) {
	raw := a.cfg.Server.BaseURL
	if raw == "" {
		raw = "http://" + a.cfg.Server.Addr + "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	return base, nil
}
