// Package server exposes a field configuration over HTTP: an HTML page per
// query, a JSON state endpoint and a websocket session that applies edits
// and pushes the re-serialised state back.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	theme "github.com/goliatone/go-theme"
	"github.com/gorilla/websocket"

	"github.com/goliatone/go-paramconfig/pkg/control"
	"github.com/goliatone/go-paramconfig/pkg/model"
	"github.com/goliatone/go-paramconfig/pkg/parser"
	"github.com/goliatone/go-paramconfig/pkg/profiler"
	"github.com/goliatone/go-paramconfig/pkg/render"
	"github.com/goliatone/go-paramconfig/pkg/renderers/html"
	"github.com/goliatone/go-paramconfig/pkg/renderers/tui"
	"github.com/goliatone/go-paramconfig/pkg/store"
)

// RootID is the container every session mounts its controls on.
const RootID = "params"

// Server serves one field list. Each request or websocket connection gets
// its own document and store seeded from the request query.
type Server struct {
	fields        []model.Field
	title         string
	baseURL       *url.URL
	short         bool
	extra         *string
	registry      *parser.Registry
	profiler      *profiler.Registry
	theme         *theme.RendererConfig
	runtimeFS     fs.FS
	runtimeScript string
	logger        *slog.Logger

	renderers *render.Registry
	upgrader  websocket.Upgrader
	router    chi.Router
}

// New validates fields and builds the router.
func New(fields []model.Field, options ...Option) (*Server, error) {
	s := &Server{
		fields: fields,
		logger: slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = s.logger.With("component", "server")
	if s.registry == nil {
		s.registry = parser.NewDefaultRegistry(parser.WithLogger(s.logger))
	}
	if err := model.Validate(fields, s.registry.Has); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	page, err := html.New()
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.renderers = render.NewRegistry()
	s.renderers.MustRegister(page)
	s.renderers.MustRegister(tui.Summary{})

	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handlePage)
	r.Get("/api/state", s.handleState)
	r.Get("/ws", s.handleSocket)
	if s.profiler != nil {
		r.Handle("/metrics", s.profiler.Handler())
	}
	if s.runtimeFS != nil {
		r.Handle("/runtime/*", http.StripPrefix("/runtime/", http.FileServerFS(s.runtimeFS)))
	}
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Run serves on addr until ctx is cancelled, then shuts down within
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, readHeaderTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

type session struct {
	doc   *control.Document
	store *store.Store
}

func (s *Server) newSession(rawQuery string) (*session, error) {
	doc := control.NewDocument(RootID)
	container, err := doc.Container(RootID)
	if err != nil {
		return nil, err
	}
	st, err := store.New(container, s.fields,
		store.WithQuery(rawQuery),
		store.WithShortURL(s.short),
		store.WithRegistry(s.registry),
		store.WithLogger(s.logger),
		store.WithProfiler(s.profiler),
	)
	if err != nil {
		return nil, err
	}
	return &session{doc: doc, store: st}, nil
}

func (s *Server) serialiseOptions() []store.SerialiseOption {
	if s.extra == nil {
		return nil
	}
	return []store.SerialiseOption{store.WithExtra(*s.extra)}
}

func (s *Server) shareBase(r *http.Request) *url.URL {
	if s.baseURL != nil {
		return s.baseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return &url.URL{Scheme: scheme, Host: r.Host, Path: "/"}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.newSession(r.URL.RawQuery)
	if err != nil {
		s.fail(w, err)
		return
	}

	name := html.Name
	if r.URL.Query().Get("format") == tui.SummaryName {
		name = tui.SummaryName
	}
	renderer, err := s.renderers.Get(name)
	if err != nil {
		s.fail(w, err)
		return
	}

	query := sess.store.SerialiseToURLParams(s.serialiseOptions()...)
	opts := render.RenderOptions{
		Title:     s.title,
		Query:     query,
		ShareURL:  sess.store.ShareURL(s.shareBase(r), s.serialiseOptions()...),
		SocketURL: "/ws",
		Theme:     s.theme,
	}
	if query != "" {
		opts.SocketURL += "?" + query
	}
	if s.runtimeFS != nil {
		opts.RuntimeURL = "/runtime/" + s.runtimeScript
	}

	body, err := renderer.Render(r.Context(), sess.doc, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	_, _ = w.Write(body)
}

// StateResponse is the body of /api/state and of websocket state pushes.
type StateResponse struct {
	Type    string         `json:"type,omitempty"`
	State   store.Snapshot `json:"state"`
	Updates []string       `json:"updates,omitempty"`
	Query   string         `json:"query"`
	Share   string         `json:"share"`
	HTML    string         `json:"html,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.newSession(r.URL.RawQuery)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StateResponse{
		State: sess.store.Snapshot(),
		Query: sess.store.SerialiseToURLParams(s.serialiseOptions()...),
		Share: sess.store.ShareURL(s.shareBase(r), s.serialiseOptions()...),
	})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
