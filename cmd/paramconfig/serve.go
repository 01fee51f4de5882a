package main

import (
	"fmt"
	"net/url"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"

	paramconfig "github.com/goliatone/go-paramconfig"
	"github.com/goliatone/go-paramconfig/internal/config"
	"github.com/goliatone/go-paramconfig/internal/server"
	"github.com/goliatone/go-paramconfig/pkg/profiler"
	"github.com/goliatone/go-paramconfig/pkg/renderers/html"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parameter form with a live websocket session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			srv, err := a.newServer(cmd)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context(), a.cfg.Server.Addr,
				a.cfg.Server.ReadHeaderTimeout.Duration,
				a.cfg.Server.ShutdownTimeout.Duration,
			)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config)")
	return cmd
}

func (a *app) newServer(cmd *cobra.Command) (*server.Server, error) {
	form, err := a.loadForm(cmd.Context())
	if err != nil {
		return nil, err
	}

	title := a.cfg.Server.Title
	if form.Title != "" {
		title = form.Title
	}
	options := []server.Option{
		server.WithTitle(title),
		server.WithShortURL(a.cfg.State.Short),
		server.WithLogger(a.logger),
		server.WithRuntimeFS(paramconfig.RuntimeAssetsFS(), paramconfig.RuntimeScript),
		server.WithTheme(themeConfig(a.cfg.Theme)),
	}
	if a.cfg.State.Extra != "" {
		options = append(options, server.WithExtra(a.cfg.State.Extra))
	}
	if a.cfg.Server.BaseURL != "" {
		base, err := url.Parse(a.cfg.Server.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("base url: %w", err)
		}
		options = append(options, server.WithBaseURL(base))
	}
	if a.cfg.Metrics.Enabled {
		options = append(options, server.WithProfiler(profiler.New(profiler.WithNamespace(a.cfg.Metrics.Namespace))))
	}
	return server.New(form.Fields, options...)
}

func themeConfig(cfg config.ThemeConfig) *theme.RendererConfig {
	if cfg.Name == "" && len(cfg.Tokens) == 0 {
		return nil
	}
	return &theme.RendererConfig{
		Theme:   cfg.Name,
		Variant: cfg.Variant,
		Tokens:  cfg.Tokens,
		CSSVars: html.CSSVarsFromTokens(cfg.Tokens),
	}
}
