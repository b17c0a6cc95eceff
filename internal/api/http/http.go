// Package httpapi wires the JSON API surfaces onto a chi router and runs the
// HTTP server.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"github.com/aurelab/aurelab-manager/internal/apisrv/admin"
	"github.com/aurelab/aurelab-manager/internal/apisrv/auth"
	"github.com/aurelab/aurelab-manager/internal/apisrv/frontend"
)

// Config is the configuration for the http server
type Config struct {
	Port           string   `mapstructure:"port"`
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// CheckoutRPM caps checkout requests per client IP per minute.
	CheckoutRPM int `mapstructure:"checkout_rpm"`
}

// Server is the http server
type Server struct {
	hs   *http.Server
	c    *Config
	done chan struct{}
}

// New creates a new server
func New(config *Config) *Server {
	if config.CheckoutRPM <= 0 {
		config.CheckoutRPM = 10
	}
	return &Server{
		c:    config,
		done: make(chan struct{}),
	}
}

// Done returns a channel that is closed when the server exits
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) router(adminServer *admin.Server, frontendServer *frontend.Server, authServer *auth.Server) http.Handler {
	r := chi.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins: s.c.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodOptions,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	r.Use(c.Handler)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	checkoutLimiter := httprate.Limit(
		s.c.CheckoutRPM,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)
	r.Route("/api/frontend", func(r chi.Router) {
		frontendServer.Routes(r, checkoutLimiter)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authServer.WithAuth)
		adminServer.Routes(r)
	})

	r.Route("/api/auth", func(r chi.Router) {
		authServer.Routes(r)
	})

	return r
}

// Start starts the server in the background. Done is closed once the
// listener and the shutdown watcher both exit.
func (s *Server) Start(ctx context.Context,
	adminServer *admin.Server,
	frontendServer *frontend.Server,
	authServer *auth.Server,
) error {
	listenerAddr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	s.hs = &http.Server{
		Addr:    listenerAddr,
		Handler: s.router(adminServer, frontendServer, authServer),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Default().InfoContext(ctx, "aurelab-manager listening",
			slog.String("addr", "http://"+listenerAddr),
		)
		if err := s.hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.hs.Shutdown(shutdownCtx)
	})

	go func() {
		if err := g.Wait(); err != nil {
			slog.Default().ErrorContext(ctx, "http server exited with an error",
				slog.String("err", err.Error()),
			)
		}
		close(s.done)
	}()

	return nil
}
