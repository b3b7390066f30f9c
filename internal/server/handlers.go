package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/qbank/internal/bank"
)

const maxBodyBytes = 1 << 20

// Response helpers

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeEnvelope(w, status, apiResponse{
		Error: &apiError{Code: code, Message: message},
	})
}

func writeEnvelope(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The client may have gone away; nothing useful to do with the error.
	_ = json.NewEncoder(w).Encode(resp)
}

// errorStatus maps bank errors onto HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, bank.ErrInvalidDomain), errors.Is(err, bank.ErrInvalidCount):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, bank.ErrNoContentAvailable):
		return http.StatusNotFound, "no_content"
	case errors.Is(err, bank.ErrItemNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, bank.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, bank.ErrQuotaExhausted):
		return http.StatusPaymentRequired, "quota_exhausted"
	case errors.Is(err, bank.ErrMalformedOutput), errors.Is(err, bank.ErrGeneratorUnavailable):
		return http.StatusServiceUnavailable, "generator_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error(op+" failed", "error", err, "request_id", reqID(r))
		msg = op + " failed"
	} else {
		s.log.Warn(op+" failed", "status", status, "error", err, "request_id", reqID(r))
	}
	respondError(w, status, code, msg)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// Health

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Sampling

type sampleRequest struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

type sampleResponse struct {
	Items           []bank.Item           `json:"items"`
	Requested       int                   `json:"requested"`
	AvailableCount  int                   `json:"available_count"`
	GenerationError *bank.GenerationError `json:"generation_error,omitempty"`
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	var req sampleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	kind := kindFromContext(r.Context())

	res, err := s.bank.Sample(r.Context(), kind, strings.TrimSpace(req.Domain), req.Count)
	if err != nil {
		s.fail(w, r, "sample", err)
		return
	}

	respondJSON(w, http.StatusOK, sampleResponse{
		Items:           res.Items,
		Requested:       res.Requested,
		AvailableCount:  res.AvailableCount,
		GenerationError: res.GenerationError,
	})
}

// Seeding

type seedRequest struct {
	Domain      string `json:"domain"`
	TargetCount int    `json:"target_count"`
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if !decodeBody(w, r, &req) {
		return
	}
	kind := kindFromContext(r.Context())

	res, err := s.bank.SeedToTarget(r.Context(), kind, strings.TrimSpace(req.Domain), req.TargetCount)
	if err != nil {
		if res != nil && res.Generated > 0 {
			// Partial progress is persisted; report it alongside the failure.
			status, code := errorStatus(err)
			s.log.Warn("seed stopped early", "generated", res.Generated, "error", err, "request_id", reqID(r))
			writeEnvelope(w, status, apiResponse{
				Data:  res,
				Error: &apiError{Code: code, Message: err.Error()},
			})
			return
		}
		s.fail(w, r, "seed", err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Inventory

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	kind := kindFromContext(r.Context())
	domain := strings.TrimSpace(r.URL.Query().Get("domain"))

	inv, err := s.bank.Inventory(r.Context(), kind, domain)
	if err != nil {
		s.fail(w, r, "inventory", err)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	kind := kindFromContext(r.Context())

	domains, err := s.bank.Domains(r.Context(), kind)
	if err != nil {
		s.fail(w, r, "list domains", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"kind":    kind.Name,
		"domains": domains,
	})
}

// Grading

func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	var sub bank.Submission
	if !decodeBody(w, r, &sub) {
		return
	}
	kind := kindFromContext(r.Context())
	id := chi.URLParam(r, "id")

	res, err := s.bank.Grade(r.Context(), kind, id, sub)
	if err != nil {
		s.fail(w, r, "grade", err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func reqID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
