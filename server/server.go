// Package server wires the HTTP surface of the documentation server.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/foomo/mddocs/mcp"
	"github.com/foomo/mddocs/render"
	"github.com/foomo/mddocs/service"
)

const (
	CreatePagePath = "/api/create-page"
	AddNewPath     = "/add-new"

	maxCreateBodySize = 10 << 20
)

type Options struct {
	Logger   *zap.Logger
	Service  service.Service
	Renderer *render.Renderer
	// StaticDir serves requests whose path carries a file extension.
	StaticDir string
	// Hidden is optional; static paths it reports are answered with 404.
	Hidden func(rel string) (bool, error)
	// Events is optional; when set /api/events streams document events.
	Events *mcp.EventServer
	// MCPHandler is optional and mounted at MCPEndpoint.
	MCPHandler  http.Handler
	MCPEndpoint string
}

type Server struct {
	logger   *zap.Logger
	service  service.Service
	renderer *render.Renderer
	static   http.Handler
	hidden   func(rel string) (bool, error)
	events   *mcp.EventServer
	mcp      http.Handler
	endpoint string
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var static http.Handler = http.NotFoundHandler()
	if opts.StaticDir != "" {
		static = http.FileServer(http.Dir(opts.StaticDir))
	}
	return &Server{
		logger:   logger,
		service:  opts.Service,
		renderer: opts.Renderer,
		static:   static,
		hidden:   opts.Hidden,
		events:   opts.Events,
		mcp:      opts.MCPHandler,
		endpoint: opts.MCPEndpoint,
	}
}

// Router returns the HTTP handler serving all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.HandleFunc(CreatePagePath, s.handleCreatePage)
	r.Get("/api/documents", s.handleListDocuments)
	if s.events != nil {
		r.With(streaming).Get("/api/events", s.events.HandleSSE)
		r.Get("/api/events/stats", s.events.HandleStats)
	}
	if s.mcp != nil && s.endpoint != "" {
		r.With(streaming).Handle(s.endpoint, s.mcp)
	}

	r.HandleFunc("/", s.handleContent)
	r.HandleFunc("/*", s.handleContent)
	r.NotFound(s.handleNotFound)

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				zap.String("requestID", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// streaming lifts the server write timeout for long lived responses.
func streaming(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
		next.ServeHTTP(w, r)
	})
}
