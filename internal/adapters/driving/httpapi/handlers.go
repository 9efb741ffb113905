package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/logger"
)

// postRequest is the body accepted by /embeddings and /recommendations.
type postRequest struct {
	BlogPath string `json:"blogPath"`
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func decodePostRequest(r *http.Request) (string, error) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput)
	}
	key := strings.TrimSpace(req.BlogPath)
	if key == "" {
		return "", fmt.Errorf("%w: blogPath is required", domain.ErrInvalidInput)
	}
	return key, nil
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	key, err := decodePostRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if _, err := s.services.Ingest.Ingest(r.Context(), key); err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "inserted embedding for %s\n", key)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	key, err := decodePostRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	recs, err := s.services.Recommend.Recommend(r.Context(), key)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, recs, http.StatusOK)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	keys, err := s.services.Ingest.ListKeys(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, keys, http.StatusOK)
}

func (s *Server) handleIndexStatus(w http.ResponseWriter, r *http.Request) {
	report, err := s.services.Index.Check(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, map[string]any{
		"records":    report.Records,
		"entries":    report.Entries,
		"missing":    report.Missing,
		"orphaned":   report.Orphaned,
		"stale":      report.Stale,
		"unembedded": report.Unembedded,
		"consistent": report.Consistent(),
	}, http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.services.Check != nil {
		if err := s.services.Check(r.Context()); err != nil {
			logger.Warn("health check failed: %v", err)
			respondJSON(w, map[string]string{"error": err.Error()}, http.StatusServiceUnavailable)
			return
		}
	}
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	setCORS(w)
	w.WriteHeader(http.StatusNoContent)
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "*")
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request %s %s failed: %v", w.Header().Get(headerRequestID), r.URL.Path, err)
	}
	respondJSON(w, errorResponse{Error: err.Error()}, status)
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Debug("encode response: %v", err)
	}
}
