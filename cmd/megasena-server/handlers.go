package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"megasena"
)

// server holds the route handlers over the lottery service
type server struct {
	service *megasena.Service
	logger  megasena.Logger
}

func newServer(service *megasena.Service, logger megasena.Logger) *server {
	return &server{service: service, logger: logger}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/estimate", s.handleEstimate)
	mux.HandleFunc("GET /api/draw/{date}", s.handleDraw)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/cache/clear", s.handleClearCache)
	return mux
}

type errorBody struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code"`
	Timestamp string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code megasena.ErrorCode, detail string) {
	writeJSON(w, status, errorBody{
		Detail:    detail,
		ErrorCode: string(code),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// writeServiceError translates domain errors into HTTP status codes
func (s *server) writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *megasena.ServiceError
	if !errors.As(err, &svcErr) {
		s.logger.Error("Unexpected error: %v", err)
		writeError(w, http.StatusInternalServerError, megasena.ErrCodeSystem, "unexpected internal error")
		return
	}

	switch {
	case errors.Is(err, megasena.ErrCircuitOpen), errors.Is(err, megasena.ErrAPIConnection):
		writeError(w, http.StatusServiceUnavailable, svcErr.Code,
			"service temporarily unavailable, try again shortly")
	case errors.Is(err, megasena.ErrDrawNotFound):
		writeError(w, http.StatusNotFound, svcErr.Code, svcErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, svcErr.Code, svcErr.Error())
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.service.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"timestamp":  time.Now().Format(time.RFC3339),
		"version":    version,
		"cache_type": stats.CacheKind,
	})
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	estimate, err := s.service.GetEstimate(r.Context())
	if err != nil {
		s.logger.Error("Estimate failed: %v", err)
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, estimate)
}

func (s *server) handleDraw(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")

	// The route rejects malformed dates up front; the service itself
	// maps unparseable dates to not-found for non-HTTP callers.
	if _, err := time.Parse(megasena.DateFormatISO, date); err != nil {
		writeError(w, http.StatusBadRequest, megasena.ErrCodeInvalidDate,
			"invalid date format, use YYYY-MM-DD")
		return
	}

	record, err := s.service.GetDrawByDate(r.Context(), date)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.service.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"cache_type":      stats.CacheKind,
		"circuit_breaker": stats.CircuitBreaker,
		"timestamp":       time.Now().Format(time.RFC3339),
	})
}

func (s *server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if !s.service.ClearCache(r.Context()) {
		writeError(w, http.StatusInternalServerError, megasena.ErrCodeCache, "failed to clear cache")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "cache cleared",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
