// Package server serves an indexed docs tree over HTTP: rendered HTML pages
// for browsing and a small JSON API for groups, pages and search.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"

	"github.com/g5becks/apidox/internal/manifest"
	"github.com/g5becks/apidox/internal/ui"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server reads the manifest from OutputDir on every request, so a concurrent
// `apidox index --watch` is picked up without a restart.
type Server struct {
	router    chi.Router
	outputDir string
	docsDir   string
	log       *ui.Logger
}

type Options struct {
	OutputDir string
	// DocsDir overrides the docs directory recorded in the manifest.
	DocsDir string
	Logger  *ui.Logger
}

func New(opts Options) *Server {
	s := &Server{
		outputDir: opts.OutputDir,
		docsDir:   opts.DocsDir,
		log:       opts.Logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Get("/", s.handleIndex)
	r.Get("/pages/{group}/{name}", s.handlePage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/groups", s.handleGroups)
		r.Get("/groups/{group}", s.handleGroup)
		r.Get("/pages/{group}/{name}", s.handlePageJSON)
		r.Get("/search", s.handleSearch)
	})

	s.router = r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully. ready, when set, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return oops.
			Code("SERVE_ERROR").
			With("addr", addr).
			Hint("Pick another address with --addr").
			Wrapf(err, "listening on %s", addr)
	}

	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	if ready != nil {
		ready(listener.Addr())
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return oops.
			Code("SERVE_ERROR").
			With("addr", addr).
			Wrapf(err, "serving")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return oops.
				Code("SERVE_ERROR").
				Wrapf(err, "shutting down")
		}
		return nil
	}
}

func (s *Server) loadManifest() (*manifest.Manifest, error) {
	m, err := manifest.Load(s.outputDir)
	if err != nil {
		return nil, err
	}
	if s.docsDir != "" {
		m.DocsDir = s.docsDir
	}
	return m, nil
}
