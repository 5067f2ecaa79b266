package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/quantmind-br/gitingest-go/internal/domain"
	"github.com/quantmind-br/gitingest-go/internal/metrics"
	"github.com/quantmind-br/gitingest-go/pkg/version"
)

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	params := r.URL.Query()

	req := domain.IngestRequest{
		URL:         params.Get("url"),
		MaxFileSize: s.cfg.Ingest.MaxFileSize,
		PatternType: domain.PatternExclude,
		Pattern:     params.Get("pattern"),
	}
	if v := params.Get("max_file_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.metrics.ObserveIngest(metrics.ResultClientError, time.Since(start))
			writeError(w, http.StatusBadRequest,
				domain.NewValidationError("max_file_size", fmt.Sprintf("not a valid integer: %s", v)).Error())
			return
		}
		req.MaxFileSize = n
	}
	if v := params.Get("pattern_type"); v != "" {
		req.PatternType = domain.PatternType(v)
	}

	res, err := s.ingestor.Process(r.Context(), req)
	if err != nil {
		logger := s.logger.With().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("url", req.URL).
			Logger()

		if domain.IsClientError(err) {
			logger.Warn().Err(err).Msg("Ingestion rejected")
			s.metrics.ObserveIngest(metrics.ResultClientError, time.Since(start))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		logger.Error().Err(err).Msg("Ingestion failed")
		s.metrics.ObserveIngest(metrics.ResultServerError, time.Since(start))
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.metrics.ObserveIngest(metrics.ResultSuccess, time.Since(start))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	f, name, err := s.artifacts.Open(id)
	if err != nil {
		switch {
		case domain.IsClientError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			s.logger.Error().Err(err).Str("ingest_id", id).Msg("Failed to open digest")
			writeDetail(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		s.logger.Warn().Err(err).Str("ingest_id", id).Msg("Digest download interrupted")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: version.Short()})
}
