package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultAddr   = "127.0.0.1:8000"
	DefaultPrefix = "/api/"

	shutdownTimeout = 5 * time.Second
)

// NewRouter mounts the REST routes for store under prefix.
func NewRouter(store *Store, prefix string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{Store: store, Logger: logger.Sugar()}

	r := mux.NewRouter()
	sub := r
	if p := normalizePrefix(prefix); p != "" {
		sub = r.PathPrefix(p).Subrouter()
	}
	sub.HandleFunc("/posts", h.ListPosts).Methods(http.MethodGet)
	sub.HandleFunc("/posts", h.AddPost).Methods(http.MethodPost)
	sub.HandleFunc("/posts/{id}", h.UpdatePost).Methods(http.MethodPut)
	sub.HandleFunc("/posts/{id}", h.DeletePost).Methods(http.MethodDelete)
	sub.HandleFunc("/posts/{id}/comments", h.AddComment).Methods(http.MethodPost)
	sub.HandleFunc("/comments/{id}", h.UpdateComment).Methods(http.MethodPut)
	sub.HandleFunc("/comments/{id}", h.DeleteComment).Methods(http.MethodDelete)
	r.Use(accessLog(logger))
	return r
}

// normalizePrefix turns "api", "/api/" and "" into "/api" and "".
func normalizePrefix(prefix string) string {
	trimmed := strings.Trim(strings.TrimSpace(prefix), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func accessLog(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			started := time.Now()
			next.ServeHTTP(rec, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("elapsed", time.Since(started)),
				zap.String("request_id", requestID))
		})
	}
}

// Options configure Run.
type Options struct {
	Addr   string
	Prefix string
	Seed   bool
	Logger *zap.Logger
}

// Run serves the dev API until ctx is cancelled. If ready is non-nil it
// receives the bound address once the listener is open.
func Run(ctx context.Context, opts Options, ready chan<- string) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	addr := opts.Addr
	if strings.TrimSpace(addr) == "" {
		addr = DefaultAddr
	}

	store := NewStore()
	if opts.Seed {
		store.Seed()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           NewRouter(store, opts.Prefix, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("dev api listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("prefix", normalizePrefix(opts.Prefix)+"/"),
		zap.Bool("seeded", opts.Seed))
	if ready != nil {
		ready <- ln.Addr().String()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
