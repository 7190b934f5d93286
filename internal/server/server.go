package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/DjSurgeon/mern-thinkboard/internal/config"
	"github.com/DjSurgeon/mern-thinkboard/internal/server/handlers"
	servermw "github.com/DjSurgeon/mern-thinkboard/internal/server/middleware"
	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit"
)

// MaxBodyBytes limita o corpo JSON aceito.
const MaxBodyBytes = 1 << 20

type Options struct {
	Config config.ServerConfig
	Logger *zap.Logger
	Notes  handlers.NoteService

	// Distributed e Local são os dois estágios de rate limit, nessa ordem.
	// OnError vazio usa HandleError; OnReject vazio usa o corpo padrão de cada um.
	Distributed ratelimit.Options
	Local       ratelimit.Options
	Concurrency ratelimit.ConcurrencyOptions

	// Metrics, Ready e Stats ficam fora dos limiters: GET /metrics,
	// GET /readyz e GET /stats. Vazios, a rota não existe.
	Metrics http.Handler
	Ready   map[string]handlers.HealthChecker
	Stats   handlers.StatsSource
}

// ReadyCheckTimeout é o prazo de cada check em /readyz.
const ReadyCheckTimeout = 2 * time.Second

type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig
	log    *zap.Logger
}

func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	onError := HandleError(log)

	dist := stage(opts.Distributed, "redis", ratelimit.DistributedRejection, onError, log)
	local := stage(opts.Local, "local", ratelimit.LocalRejection, onError, log)
	if opts.Concurrency.Logger == nil {
		opts.Concurrency.Logger = log
	}

	r := chi.NewRouter()
	s := &Server{
		router: r,
		cfg:    opts.Config,
		log:    log,
		server: &http.Server{
			Addr:              opts.Config.Addr(),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if len(opts.Ready) > 0 {
		r.Get("/readyz", handlers.Readiness(opts.Ready, ReadyCheckTimeout))
	}
	if opts.Stats != nil {
		r.Get("/stats", handlers.Stats(opts.Stats))
	}

	r.Group(func(r chi.Router) {
		r.Use(servermw.RequestID)
		r.Use(servermw.Recovery(log))
		r.Use(ratelimit.Middleware(dist))
		r.Use(ratelimit.Middleware(local))
		r.Use(ratelimit.ConcurrencyMiddleware(opts.Concurrency))
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.Config.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			ExposedHeaders:   exposedHeaders,
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Use(middleware.AllowContentType("application/json"))
		r.Use(middleware.RequestSize(MaxBodyBytes))
		r.Use(servermw.RequestLogger(log, servermw.KeyFunc(dist.KeyFn)))

		r.NotFound(func(w http.ResponseWriter, req *http.Request) {
			onError(w, req, &handlers.HTTPError{Status: http.StatusNotFound, Message: "The requested resource was not found."})
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
			onError(w, req, &handlers.HTTPError{
				Status:  http.StatusMethodNotAllowed,
				Message: "The requested method is not allowed for this resource.",
			})
		})

		s.registerRoutes(r, opts.Notes, onError)
	})

	return s
}

var exposedHeaders = []string{
	ratelimit.HeaderPolicy,
	ratelimit.HeaderLimit,
	ratelimit.HeaderRemaining,
	ratelimit.HeaderReset,
	ratelimit.HeaderRetryAfter,
	servermw.RequestIDHeader,
}

// stage completa os defaults de um estágio de rate limit.
func stage(o ratelimit.Options, name string, reject ratelimit.RejectFunc, onError handlers.ErrorResponder, log *zap.Logger) ratelimit.Options {
	if o.Name == "" {
		o.Name = name
	}
	if o.OnReject == nil {
		o.OnReject = reject
	}
	if o.OnError == nil {
		o.OnError = ratelimit.ErrorFunc(onError)
	}
	if o.Logger == nil {
		o.Logger = log
	}
	if o.KeyFn == nil {
		o.KeyFn = ratelimit.DefaultKeyFunc(o.KeyHeader, o.TrustXForwardedFor)
	}
	return o
}

// Start bloqueia até o servidor parar. http.ErrServerClosed não é erro.
func (s *Server) Start() error {
	s.log.Info("starting HTTP server",
		zap.String("addr", s.server.Addr),
		zap.Strings("allowed_origins", s.cfg.AllowedOrigins))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler expõe o router para testes.
func (s *Server) Handler() http.Handler {
	return s.router
}
