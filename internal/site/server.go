// Package site serves content pages whose data is assembled by the pagedata
// loader and rendered with templ components.
package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/louisbranch/pageloader/internal/pagedata"
	"github.com/louisbranch/pageloader/internal/platform/httpx"
	"github.com/louisbranch/pageloader/internal/platform/timeouts"
	"github.com/louisbranch/pageloader/internal/site/content"
	"github.com/louisbranch/pageloader/internal/site/routepath"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// Config defines the site server settings.
type Config struct {
	HTTPAddr string
	// ErrorHandle is the handle reported for unknown page slugs.
	ErrorHandle string
	// Languages lists the supported page languages, default first.
	Languages []string
}

// Dependencies are the collaborators the site needs.
type Dependencies struct {
	Store  content.Store
	Logger zerolog.Logger
	// Registry receives loader metrics and backs /metrics. A fresh registry
	// is created when nil.
	Registry *prometheus.Registry
}

type site struct {
	store       content.Store
	logger      zerolog.Logger
	errorHandle string
	languages   []language.Tag
	matcher     language.Matcher
	load        pagedata.Loader
}

// Server hosts the site over HTTP.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	logger     zerolog.Logger
}

// NewHandler builds the site HTTP handler.
func NewHandler(cfg Config, deps Dependencies) (http.Handler, error) {
	if deps.Store == nil {
		return nil, errors.New("content store is required")
	}
	languages, err := parseLanguages(cfg.Languages)
	if err != nil {
		return nil, err
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
	}

	s := &site{
		store:       deps.Store,
		logger:      deps.Logger,
		errorHandle: strings.TrimSpace(cfg.ErrorHandle),
		languages:   languages,
		matcher:     language.NewMatcher(languages),
	}
	if s.errorHandle == "" {
		s.errorHandle = pagedata.DefaultErrorHandle
	}
	s.load = pagedata.Orchestrate(s.resolveEvents,
		pagedata.WithErrorHandle(s.errorHandle),
		pagedata.WithLogger(deps.Logger),
		pagedata.WithMetrics(pagedata.NewMetrics(registry)),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+routepath.Root+"{$}", func(w http.ResponseWriter, r *http.Request) {
		s.servePage(w, r, content.HomeSlug)
	})
	mux.HandleFunc("GET "+routepath.PagePattern, func(w http.ResponseWriter, r *http.Request) {
		s.servePage(w, r, r.PathValue("slug"))
	})
	mux.HandleFunc("GET "+routepath.APIPagePattern, func(w http.ResponseWriter, r *http.Request) {
		s.serveAPI(w, r, r.PathValue("slug"))
	})
	mux.HandleFunc("GET "+routepath.Health, func(w http.ResponseWriter, _ *http.Request) {
		_ = httpx.WriteText(w, http.StatusOK, "ok")
	})
	mux.Handle("GET "+routepath.Metrics, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc(routepath.Root, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, routepath.APIPagesPrefix) || r.URL.Path == routepath.APIRoot {
			s.serveAPI(w, r, "")
			return
		}
		s.servePage(w, r, "")
	})

	return httpx.Chain(mux,
		httpx.RecoverPanic(deps.Logger),
		httpx.RequestID(),
		httpx.AccessLog(deps.Logger),
	), nil
}

func parseLanguages(values []string) ([]language.Tag, error) {
	var tags []language.Tag
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		tag, err := language.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("parse language %q: %w", value, err)
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.English}
	}
	return tags, nil
}

// NewServer builds the HTTP server for the site.
func NewServer(cfg Config, deps Dependencies) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := NewHandler(cfg, deps)
	if err != nil {
		return nil, err
	}
	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		logger: deps.Logger,
	}, nil
}

// ListenAndServe serves HTTP until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("site server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	s.logger.Info().Str("addr", s.httpAddr).Msg("site listening")
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close stops the HTTP server immediately.
func (s *Server) Close() error {
	if s == nil || s.httpServer == nil {
		return nil
	}
	return s.httpServer.Close()
}
