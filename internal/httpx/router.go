package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fd1az/resale-pricer/internal/apperror"
	"github.com/fd1az/resale-pricer/internal/logger"
)

// NewRouter returns a chi router with the common middleware stack.
func NewRouter(log logger.LoggerInterface, timeout time.Duration) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(r.Context(), w, apperror.NotFound(apperror.CodeNotFound, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(r.Context(), w, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(r.Method+" "+r.URL.Path),
			apperror.WithStatusCode(http.StatusMethodNotAllowed)))
	})
	return r
}

func requestLogger(log logger.LoggerInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			slot := &errorSlot{}
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), errorSlotKey{}, slot)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			}
			if status >= http.StatusInternalServerError {
				if slot.err != nil {
					args = append(args, "error", slot.err.ToLog())
				}
				log.Error(r.Context(), "request", args...)
				return
			}
			log.Debug(r.Context(), "request", args...)
		})
	}
}

type errorSlotKey struct{}

// errorSlot carries the error WriteError rendered back to requestLogger.
type errorSlot struct {
	err *apperror.AppError
}

// Server runs an HTTP handler with OTEL instrumentation.
type Server struct {
	server *http.Server
	log    logger.LoggerInterface
}

func NewServer(port int, handler http.Handler, log logger.LoggerInterface) *Server {
	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           otelhttp.NewHandler(handler, "pricer.http"),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Start listens in the background.
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.log.Info(ctx, "http server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(ctx, "http server stopped", "error", err)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
