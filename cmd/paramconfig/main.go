// Command paramconfig serves, encodes, decodes and edits sketch parameter
// sets described by a field configuration file.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-paramconfig/internal/config"
	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/loader"
	"github.com/goliatone/go-paramconfig/pkg/model"
	"github.com/goliatone/go-paramconfig/pkg/store"
)

// Version information set at build time.
var version = "dev"

const rootID = "params"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "paramconfig: %s\n", err)
		os.Exit(1)
	}
}

// app carries the flags shared by every command.
type app struct {
	configPath string
	fieldsPath string
	operation  string
	short      bool
	logLevel   string
	extra      string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "paramconfig",
		Short:         "Parameter sets for generative sketches",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default: ./"+config.FileName+")")
	flags.StringVarP(&a.fieldsPath, "fields", "f", "", "field configuration file or URL (yaml, json, toml, openapi)")
	flags.StringVar(&a.operation, "operation", "", "OpenAPI operation id to import fields from")
	flags.BoolVar(&a.short, "short", false, "use the compact query encoding")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.extra, "extra", "", "value for the extra query parameter")

	root.AddCommand(
		serveCmd(a),
		encodeCmd(a),
		decodeCmd(a),
		editCmd(a),
		keysCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("fields") {
		cfg.Fields.Path = a.fieldsPath
	}
	if flags.Changed("operation") {
		cfg.Fields.Operation = a.operation
	}
	if flags.Changed("short") {
		cfg.State.Short = a.short
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("extra") {
		cfg.State.Extra = a.extra
	}

	logger, err := config.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) loadForm(ctx context.Context) (model.Form, error) {
	if a.cfg.Fields.Path == "" {
		return model.Form{}, fmt.Errorf("no field configuration: pass --fields or set fields.path")
	}
	src, err := loader.ParseSource(a.cfg.Fields.Path)
	if err != nil {
		return model.Form{}, err
	}
	l := loader.New(
		loader.WithOperation(a.cfg.Fields.Operation),
		loader.WithHTTPFallback(a.cfg.Fields.HTTPTimeout.Duration),
	)
	form, err := l.Load(ctx, src)
	if err != nil {
		return model.Form{}, err
	}
	a.logger.Debug("fields loaded", "source", src.Location(), "count", len(form.Fields))
	return form, nil
}

// openStore loads the fields and mounts them on a fresh document.
func (a *app) openStore(ctx context.Context, query string) (*store.Store, *control.Document, model.Form, error) {
	form, err := a.loadForm(ctx)
	if err != nil {
		return nil, nil, model.Form{}, err
	}
	doc := control.NewDocument(rootID)
	container, err := doc.Container(rootID)
	if err != nil {
		return nil, nil, model.Form{}, err
	}
	st, err := store.New(container, form.Fields,
		store.WithQuery(query),
		store.WithShortURL(a.cfg.State.Short),
		store.WithLogger(a.logger),
	)
	if err != nil {
		return nil, nil, model.Form{}, err
	}
	return st, doc, form, nil
}

func (a *app) serialiseOptions() []store.SerialiseOption {
	if a.cfg.State.Extra == "" {
		return nil
	}
	return []store.SerialiseOption{store.WithExtra(a.cfg.State.Extra)}
}
