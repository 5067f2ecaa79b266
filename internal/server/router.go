package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/quantmind-br/gitingest-go/internal/metrics"
	"github.com/quantmind-br/gitingest-go/internal/utils"
)

// routes builds the chi router
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(gzipMiddleware)

	r.Get("/health", s.handleHealth)
	if s.registry != nil {
		r.Handle("/metrics", metrics.HTTPHandler(s.registry))
	}

	if s.limiter != nil {
		r.With(s.limiter).Get("/api/v1/ingest", s.handleIngest)
	} else {
		r.Get("/api/v1/ingest", s.handleIngest)
	}
	r.Get("/api/v1/ingest/{id}/download", s.handleDownload)

	return r
}

func (s *Server) onRateLimited(r *http.Request) {
	s.metrics.IncRateLimited()
	s.logger.Warn().
		Str("client", r.RemoteAddr).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("Rate limit exceeded")
}

func gzipMiddleware(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

// LoggingMiddleware logs one line per request
func LoggingMiddleware(logger *utils.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("HTTP request")
		})
	}
}
